package service

import (
	"net/url"
	"strconv"
	"time"

	"github.com/jbeeko/contacts-worker/internal/errs"
	"github.com/jbeeko/contacts-worker/internal/kv"
)

// Query parameters that give a create or update an expiry.
const (
	// QueryExpirationTTL is a lifetime in whole seconds from the write.
	QueryExpirationTTL = "expiration_ttl"
	// QueryExpiration is an absolute unix time in seconds.
	QueryExpiration = "expiration"
)

// ParseExpiry reads the expiration query parameters. When both are given
// the store keeps the earlier deadline. Absent parameters yield no options.
func ParseExpiry(q url.Values, now time.Time) ([]kv.PutOption, *errs.HTTPError) {
	var opts []kv.PutOption

	if raw := q.Get(QueryExpirationTTL); raw != "" {
		secs, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || secs <= 0 {
			return nil, errs.NewBadRequestError(QueryExpirationTTL+" must be a positive number of seconds", false, nil, nil)
		}
		opts = append(opts, kv.WithTTL(time.Duration(secs)*time.Second))
	}

	if raw := q.Get(QueryExpiration); raw != "" {
		secs, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errs.NewBadRequestError(QueryExpiration+" must be a unix time in seconds", false, nil, nil)
		}
		at := time.Unix(secs, 0)
		if !at.After(now) {
			return nil, errs.NewBadRequestError(QueryExpiration+" must be in the future", false, nil, nil)
		}
		opts = append(opts, kv.WithExpiration(at))
	}

	return opts, nil
}
