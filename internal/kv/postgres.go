package kv

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

// PostgresDB is the subset of *pgxpool.Pool the store needs.
type PostgresDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresStore keeps entries in the kv_entries table created by the
// database migrations. Expired rows are invisible to reads and are removed
// by PurgeExpired.
type PostgresStore struct {
	db PostgresDB
}

// NewPostgresStore wraps db.
func NewPostgresStore(db PostgresDB) *PostgresStore {
	return &PostgresStore{db: db}
}

const (
	pgGet = `SELECT value FROM kv_entries
WHERE key = $1 AND (expires_at IS NULL OR expires_at > now())`

	pgPut = `INSERT INTO kv_entries (key, value, expires_at, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (key) DO UPDATE
SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, updated_at = now()`

	pgDelete = `DELETE FROM kv_entries WHERE key = $1`

	pgList = `SELECT key, expires_at FROM kv_entries
WHERE key LIKE $1 ESCAPE '\' AND (NOT $2 OR key > $3)
AND (expires_at IS NULL OR expires_at > now())
ORDER BY key
LIMIT $4`

	pgPurge = `DELETE FROM kv_entries WHERE expires_at IS NOT NULL AND expires_at <= now()`
)

func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(ctx, pgGet, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "postgres get")
	}
	return value, true, nil
}

func (s *PostgresStore) Put(ctx context.Context, key, value string, opts ...PutOption) error {
	var expiresAt *time.Time
	if deadline := buildPutOptions(opts).deadline(time.Now()); !deadline.IsZero() {
		expiresAt = &deadline
	}

	if _, err := s.db.Exec(ctx, pgPut, key, value, expiresAt); err != nil {
		return errors.Wrap(err, "postgres put")
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, pgDelete, key); err != nil {
		return errors.Wrap(err, "postgres delete")
	}
	return nil
}

// List uses keyset pagination; the cursor wraps the last key of the
// previous page. One extra row is fetched to learn whether the listing is complete.
func (s *PostgresStore) List(ctx context.Context, opts ListOptions) (*ListPage, error) {
	limit := opts.limit()

	after, resume, err := decodeKeyCursor(opts.Cursor)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, pgList, escapeLike(opts.Prefix)+"%", resume, after, limit+1)
	if err != nil {
		return nil, errors.Wrap(err, "postgres list")
	}
	defer rows.Close()

	page := &ListPage{Keys: make([]KeyInfo, 0, limit)}
	for rows.Next() {
		var info KeyInfo
		if err := rows.Scan(&info.Name, &info.Expiration); err != nil {
			return nil, errors.Wrap(err, "postgres list scan")
		}
		page.Keys = append(page.Keys, info)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "postgres list")
	}

	page.Complete = len(page.Keys) <= limit
	if !page.Complete {
		page.Keys = page.Keys[:limit]
		page.Cursor = encodeKeyCursor(page.Keys[limit-1].Name)
	}
	return page, nil
}

// PurgeExpired deletes every expired row and reports how many went.
func (s *PostgresStore) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, pgPurge)
	if err != nil {
		return 0, errors.Wrap(err, "postgres purge")
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
