package dispatch

import (
	"context"
	"fmt"

	"github.com/jbeeko/contacts-worker/internal/errs"
)

// Table is an ordered route list evaluated first-match-wins.
type Table struct {
	routes   []Route
	fallback HandlerFunc
}

// New validates routes and builds a Table. A nil fallback answers with the
// fixed "no handler" envelope.
func New(fallback HandlerFunc, routes ...Route) (*Table, error) {
	for i, r := range routes {
		if err := validateRoute(r); err != nil {
			return nil, fmt.Errorf("route %d (%s): %w", i, r, err)
		}
	}
	if fallback == nil {
		fallback = NoHandler
	}
	return &Table{
		routes:   append([]Route(nil), routes...),
		fallback: fallback,
	}, nil
}

// MustNew is New for statically known tables; it panics on an invalid route.
func MustNew(fallback HandlerFunc, routes ...Route) *Table {
	t, err := New(fallback, routes...)
	if err != nil {
		panic(err)
	}
	return t
}

func validateRoute(r Route) error {
	rest := false
	for i, seg := range r.Pattern {
		if seg.kind == segmentRest {
			if i != len(r.Pattern)-1 {
				return fmt.Errorf("rest segment must be last")
			}
			rest = true
		}
	}

	switch {
	case rest && r.Sub == nil:
		return fmt.Errorf("rest pattern needs a sub dispatcher")
	case !rest && r.Handler == nil:
		return fmt.Errorf("exact pattern needs a handler")
	case r.Handler != nil && r.Sub != nil:
		return fmt.Errorf("route has both handler and sub dispatcher")
	}
	return nil
}

// Dispatch runs the first route accepting (verb, segments). Rest routes hand
// the unconsumed suffix, the original verb and req to their sub dispatcher.
func (t *Table) Dispatch(ctx context.Context, verb Verb, segments []string, req *Request) (Response, error) {
	for _, r := range t.routes {
		params, rest, ok := r.match(verb, segments)
		if !ok {
			continue
		}
		if r.Sub != nil {
			return r.Sub.Dispatch(ctx, verb, rest, req)
		}
		return r.Handler(ctx, req, params)
	}
	return t.fallback(ctx, req, nil)
}

// Routes returns a copy of the route list in evaluation order.
func (t *Table) Routes() []Route {
	return append([]Route(nil), t.routes...)
}

// NoHandler answers 400 with the fixed "no handler" envelope.
func NoHandler(context.Context, *Request, Params) (Response, error) {
	return ErrorResponse(errs.NewNoHandlerError()), nil
}
