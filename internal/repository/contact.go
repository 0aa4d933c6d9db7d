package repository

import (
	"context"
	"time"

	"github.com/jbeeko/contacts-worker/internal/kv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ContactRepository stores contacts as raw JSON text keyed by id.
type ContactRepository struct {
	store     kv.Store
	listLimit int
	slow      time.Duration
}

// NewContactRepository wraps store. A zero slow threshold disables slow
// call warnings.
func NewContactRepository(store kv.Store, listLimit int, slow time.Duration) *ContactRepository {
	return &ContactRepository{store: store, listLimit: listLimit, slow: slow}
}

// Get returns the stored text for id and whether it exists.
func (r *ContactRepository) Get(ctx context.Context, id string) (string, bool, error) {
	start := time.Now()
	text, ok, err := r.store.Get(ctx, id)
	r.observe(ctx, "get", id, start, err)
	if err != nil {
		return "", false, errors.Wrapf(err, "get contact %q", id)
	}
	return text, ok, nil
}

// Put stores text under id, overwriting any previous value and its expiry.
func (r *ContactRepository) Put(ctx context.Context, id, text string, opts ...kv.PutOption) error {
	start := time.Now()
	err := r.store.Put(ctx, id, text, opts...)
	r.observe(ctx, "put", id, start, err)
	return errors.Wrapf(err, "put contact %q", id)
}

// Delete removes id.
func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := r.store.Delete(ctx, id)
	r.observe(ctx, "delete", id, start, err)
	return errors.Wrapf(err, "delete contact %q", id)
}

// List returns one page of ids. Values are not fetched.
func (r *ContactRepository) List(ctx context.Context, prefix, cursor string) (*kv.ListPage, error) {
	start := time.Now()
	page, err := r.store.List(ctx, kv.ListOptions{
		Prefix: prefix,
		Cursor: cursor,
		Limit:  r.listLimit,
	})
	r.observe(ctx, "list", prefix, start, err)
	if err != nil {
		return nil, errors.Wrap(err, "list contacts")
	}
	return page, nil
}

func (r *ContactRepository) observe(ctx context.Context, op, key string, start time.Time, err error) {
	logger := zerolog.Ctx(ctx)
	elapsed := time.Since(start)

	switch {
	case err != nil:
		logger.Error().Err(err).
			Str("kv_op", op).
			Str("kv_key", key).
			Dur("duration", elapsed).
			Msg("kv call failed")
	case r.slow > 0 && elapsed > r.slow:
		logger.Warn().
			Str("kv_op", op).
			Str("kv_key", key).
			Dur("duration", elapsed).
			Msg("slow kv call")
	default:
		logger.Debug().
			Str("kv_op", op).
			Str("kv_key", key).
			Dur("duration", elapsed).
			Msg("kv call")
	}
}
