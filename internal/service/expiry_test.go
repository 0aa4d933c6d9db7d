package service

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/jbeeko/contacts-worker/internal/config"
	"github.com/jbeeko/contacts-worker/internal/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	future := strconv.FormatInt(now.Add(time.Hour).Unix(), 10)
	past := strconv.FormatInt(now.Add(-time.Second).Unix(), 10)

	tests := []struct {
		name    string
		query   url.Values
		wantLen int
		wantErr bool
	}{
		{"absent", url.Values{}, 0, false},
		{"ttl", url.Values{QueryExpirationTTL: {"60"}}, 1, false},
		{"absolute", url.Values{QueryExpiration: {future}}, 1, false},
		{"both", url.Values{QueryExpirationTTL: {"60"}, QueryExpiration: {future}}, 2, false},
		{"zero ttl", url.Values{QueryExpirationTTL: {"0"}}, 0, true},
		{"negative ttl", url.Values{QueryExpirationTTL: {"-5"}}, 0, true},
		{"ttl not a number", url.Values{QueryExpirationTTL: {"1m"}}, 0, true},
		{"absolute in the past", url.Values{QueryExpiration: {past}}, 0, true},
		{"absolute not a number", url.Values{QueryExpiration: {"tomorrow"}}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts, herr := ParseExpiry(tt.query, now)
			if tt.wantErr {
				require.NotNil(t, herr)
				assert.Equal(t, http.StatusBadRequest, herr.Status)
				assert.Equal(t, "BAD_REQUEST", herr.Code)
				return
			}
			require.Nil(t, herr)
			assert.Len(t, opts, tt.wantLen)
		})
	}
}

func expiryOf(t *testing.T, store kv.Store, id string) *time.Time {
	t.Helper()
	page, err := store.List(context.Background(), kv.ListOptions{Prefix: id})
	require.NoError(t, err)
	require.Len(t, page.Keys, 1)
	return page.Keys[0].Expiration
}

func TestContactService_WriteExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := kv.NewMemoryStoreWithClock(func() time.Time { return now })
	svc := newService(store, config.ContactsConfig{})
	ctx := context.Background()

	_, err := svc.Create(ctx, annBody)
	require.NoError(t, err)
	assert.Nil(t, expiryOf(t, store, "42"), "no expiry by default")

	_, err = svc.Update(ctx, "42", annBody, kv.WithTTL(time.Minute))
	require.NoError(t, err)
	exp := expiryOf(t, store, "42")
	require.NotNil(t, exp)
	assert.Equal(t, now.Add(time.Minute), *exp)

	_, err = svc.Update(ctx, "42", annBody)
	require.NoError(t, err)
	assert.Nil(t, expiryOf(t, store, "42"), "an update without expiry clears it")
}

func TestContactService_DefaultTTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := kv.NewMemoryStoreWithClock(func() time.Time { return now })
	svc := newService(store, config.ContactsConfig{DefaultTTL: time.Hour})
	ctx := context.Background()

	_, err := svc.Create(ctx, annBody)
	require.NoError(t, err)
	exp := expiryOf(t, store, "42")
	require.NotNil(t, exp)
	assert.Equal(t, now.Add(time.Hour), *exp)

	_, err = svc.Update(ctx, "42", annBody, kv.WithTTL(time.Minute))
	require.NoError(t, err)
	exp = expiryOf(t, store, "42")
	require.NotNil(t, exp)
	assert.Equal(t, now.Add(time.Minute), *exp, "explicit expiry wins over the default")
}
