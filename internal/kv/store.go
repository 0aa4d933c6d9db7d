// Package kv is the key-value backend contract and its adapters.
//
// A Store offers get/put/delete and single-page listing with an opaque
// cursor. Adapters map their backend's results onto these types and nothing
// more: no retries, no consistency repair. Backends may be eventually
// consistent; callers must tolerate stale reads and last-write-wins.
package kv

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"
)

// DefaultListLimit bounds a page when ListOptions.Limit is unset.
const DefaultListLimit = 1000

// ErrInvalidCursor is returned by List for a cursor the backend did not issue.
var ErrInvalidCursor = errors.New("kv: invalid cursor")

// Store is the backend contract.
type Store interface {
	// Get returns the value under key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Put writes value under key, replacing any previous value.
	Put(ctx context.Context, key, value string, opts ...PutOption) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns one page of keys. It never follows the cursor itself.
	List(ctx context.Context, opts ListOptions) (*ListPage, error)
}

// Pinger is implemented by stores that can check backend reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ListOptions selects a page of keys.
type ListOptions struct {
	Prefix string
	Cursor string
	Limit  int
}

func (o ListOptions) limit() int {
	if o.Limit <= 0 {
		return DefaultListLimit
	}
	return o.Limit
}

// KeyInfo describes one listed key.
type KeyInfo struct {
	Name       string
	Expiration *time.Time
}

// ListPage is one page of a listing. Cursor is empty when Complete.
type ListPage struct {
	Keys     []KeyInfo
	Complete bool
	Cursor   string
}

// Names returns the key names of the page in order.
func (p *ListPage) Names() []string {
	names := make([]string, len(p.Keys))
	for i, k := range p.Keys {
		names[i] = k.Name
	}
	return names
}

// PutOptions collects PutOption settings.
type PutOptions struct {
	TTL        time.Duration
	Expiration time.Time
}

// PutOption configures a Put.
type PutOption func(*PutOptions)

// WithTTL expires the entry d after the write.
func WithTTL(d time.Duration) PutOption {
	return func(o *PutOptions) { o.TTL = d }
}

// WithExpiration expires the entry at t.
func WithExpiration(t time.Time) PutOption {
	return func(o *PutOptions) { o.Expiration = t }
}

func buildPutOptions(opts []PutOption) PutOptions {
	var o PutOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// deadline resolves the options against now. The zero time means no expiry.
// When both are set the earlier one wins.
func (o PutOptions) deadline(now time.Time) time.Time {
	var d time.Time
	if o.TTL > 0 {
		d = now.Add(o.TTL)
	}
	if !o.Expiration.IsZero() && (d.IsZero() || o.Expiration.Before(d)) {
		d = o.Expiration
	}
	return d
}

// Ordered stores resume a listing after the last key they returned. The
// key is wrapped so that even the empty key yields a non-empty cursor.
const keyCursorPrefix = "k."

func encodeKeyCursor(key string) string {
	return keyCursorPrefix + base64.RawURLEncoding.EncodeToString([]byte(key))
}

// decodeKeyCursor returns the key to resume after. ok is false for the
// empty cursor, meaning "from the start".
func decodeKeyCursor(cursor string) (key string, ok bool, err error) {
	if cursor == "" {
		return "", false, nil
	}
	encoded, found := strings.CutPrefix(cursor, keyCursorPrefix)
	if !found {
		return "", false, ErrInvalidCursor
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", false, ErrInvalidCursor
	}
	return string(raw), true, nil
}
