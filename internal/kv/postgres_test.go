package kv

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Postgres tests need a disposable database with the kv_entries migration
// applied, e.g. CONTACTS_TEST_DATABASE_URL=postgres://localhost/contacts_test.
func newPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()

	dsn := os.Getenv("CONTACTS_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("CONTACTS_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, "TRUNCATE kv_entries")
	require.NoError(t, err)

	return NewPostgresStore(pool)
}

func TestPostgresStore_Contract(t *testing.T) {
	storeContract(t, func(t *testing.T) Store {
		return newPostgresStore(t)
	})
}

func TestPostgresStore_PurgeExpired(t *testing.T) {
	ctx := context.Background()
	s := newPostgresStore(t)

	require.NoError(t, s.Put(ctx, "old", "x", WithExpiration(time.Now().Add(-time.Hour))))
	require.NoError(t, s.Put(ctx, "new", "x", WithTTL(time.Hour)))
	require.NoError(t, s.Put(ctx, "perm", "x"))

	n, err := s.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	page, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "perm"}, page.Names())
}

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `a\%b\_c\\`, escapeLike(`a%b_c\`))
}
