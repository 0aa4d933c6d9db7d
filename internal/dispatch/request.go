package dispatch

import (
	"context"
	"net/http"
	"net/url"
)

// BodyFunc yields the request body text. It may block on the transport.
type BodyFunc func(ctx context.Context) (string, error)

// Request is the transport-independent view of an incoming request.
type Request struct {
	// Verb is the normalized method; Method keeps the raw token.
	Verb   Verb
	Method string

	// Path is the raw request path, before normalization.
	Path string

	Header http.Header
	Query  url.Values

	body     BodyFunc
	text     string
	bodyRead bool
}

// NewRequest builds a Request. A nil body reads as empty text.
func NewRequest(method, path string, header http.Header, query url.Values, body BodyFunc) *Request {
	if header == nil {
		header = http.Header{}
	}
	if query == nil {
		query = url.Values{}
	}
	return &Request{
		Verb:   ParseVerb(method),
		Method: method,
		Path:   path,
		Header: header,
		Query:  query,
		body:   body,
	}
}

// Text returns the body text, reading it on first use. A Request is handled
// by one goroutine, so the cached copy needs no locking.
func (r *Request) Text(ctx context.Context) (string, error) {
	if r.bodyRead {
		return r.text, nil
	}
	if r.body != nil {
		text, err := r.body(ctx)
		if err != nil {
			return "", err
		}
		r.text = text
	}
	r.bodyRead = true
	return r.text, nil
}

// Segments returns the normalized segments of r.Path.
func (r *Request) Segments() []string {
	return Segments(r.Path)
}

// Serve dispatches req from the top of d.
func Serve(ctx context.Context, d Dispatcher, req *Request) (Response, error) {
	return d.Dispatch(ctx, req.Verb, req.Segments(), req)
}
