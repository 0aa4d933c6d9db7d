package kv

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries as plain Redis strings. All keys live under an
// optional namespace which is invisible to callers.
type RedisStore struct {
	client    redis.UniversalClient
	namespace string
}

// NewRedisStore wraps client. namespace is prepended to every key.
func NewRedisStore(client redis.UniversalClient, namespace string) *RedisStore {
	return &RedisStore{
		client:    client,
		namespace: namespace,
	}
}

func (s *RedisStore) key(k string) string {
	return s.namespace + k
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "redis get")
	}
	return value, true, nil
}

func (s *RedisStore) Put(ctx context.Context, key, value string, opts ...PutOption) error {
	var args redis.SetArgs
	if deadline := buildPutOptions(opts).deadline(time.Now()); !deadline.IsZero() {
		args.TTL = time.Until(deadline)
		if args.TTL <= 0 {
			// Already expired: the write must not become visible.
			return s.Delete(ctx, key)
		}
	}

	if err := s.client.SetArgs(ctx, s.key(key), value, args).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return errors.Wrap(err, "redis del")
	}
	return nil
}

// List performs a single SCAN step. Redis treats COUNT as a hint, so a page
// can be shorter or longer than the limit and may repeat keys across pages.
// The cursor is the decimal SCAN cursor.
func (s *RedisStore) List(ctx context.Context, opts ListOptions) (*ListPage, error) {
	var cursor uint64
	if opts.Cursor != "" {
		c, err := strconv.ParseUint(opts.Cursor, 10, 64)
		if err != nil {
			return nil, ErrInvalidCursor
		}
		cursor = c
	}

	match := escapeGlob(s.key(opts.Prefix)) + "*"
	keys, next, err := s.client.Scan(ctx, cursor, match, int64(opts.limit())).Result()
	if err != nil {
		return nil, errors.Wrap(err, "redis scan")
	}

	page := &ListPage{
		Keys:     make([]KeyInfo, len(keys)),
		Complete: next == 0,
	}
	if !page.Complete {
		page.Cursor = strconv.FormatUint(next, 10)
	}
	if len(keys) == 0 {
		return page, nil
	}

	pipe := s.client.Pipeline()
	ttls := make([]*redis.DurationCmd, len(keys))
	for i, k := range keys {
		ttls[i] = pipe.PTTL(ctx, k)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, errors.Wrap(err, "redis pttl")
	}

	now := time.Now()
	for i, k := range keys {
		page.Keys[i] = KeyInfo{Name: strings.TrimPrefix(k, s.namespace)}
		// PTTL answers -1 for no expiry and -2 for a key that vanished since SCAN.
		if ttl := ttls[i].Val(); ttl > 0 {
			exp := now.Add(ttl)
			page.Keys[i].Expiration = &exp
		}
	}
	return page, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// escapeGlob quotes the characters SCAN MATCH treats as pattern syntax.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
