package dispatch

import (
	"context"
)

type segmentKind int

const (
	segmentLiteral segmentKind = iota
	segmentParam
	segmentRest
)

// Segment matches one element of a path.
type Segment struct {
	kind  segmentKind
	value string
}

// Lit matches a segment equal to s. s is lower-cased to agree with Segments.
func Lit(s string) Segment {
	return Segment{kind: segmentLiteral, value: Lower(s)}
}

// Param matches any single segment and binds it under name.
func Param(name string) Segment {
	return Segment{kind: segmentParam, value: name}
}

// Rest matches whatever remains, including nothing. It must be last.
func Rest() Segment {
	return Segment{kind: segmentRest}
}

func (s Segment) String() string {
	switch s.kind {
	case segmentParam:
		return "{" + s.value + "}"
	case segmentRest:
		return "*"
	default:
		return s.value
	}
}

// Params holds the segments bound by Param matchers.
type Params map[string]string

// Get returns the value bound to name, or "".
func (p Params) Get(name string) string {
	return p[name]
}

// HandlerFunc answers a matched request.
type HandlerFunc func(ctx context.Context, req *Request, params Params) (Response, error)

// Dispatcher routes the remaining segments of a request. Tables and
// resource sub-routers implement it, so they nest freely.
type Dispatcher interface {
	Dispatch(ctx context.Context, verb Verb, segments []string, req *Request) (Response, error)
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, verb Verb, segments []string, req *Request) (Response, error)

func (f DispatcherFunc) Dispatch(ctx context.Context, verb Verb, segments []string, req *Request) (Response, error) {
	return f(ctx, verb, segments, req)
}

// Route is one entry of a Table. Exactly one of Handler and Sub is set:
// Handler for exact patterns, Sub for patterns ending in Rest.
type Route struct {
	Verb    VerbMatcher
	Pattern []Segment
	Handler HandlerFunc
	Sub     Dispatcher
}

// Handle builds an exact-match route.
func Handle(verb VerbMatcher, handler HandlerFunc, pattern ...Segment) Route {
	return Route{Verb: verb, Pattern: pattern, Handler: handler}
}

// Mount builds a prefix route delegating to sub. A trailing Rest is added
// when the pattern lacks one.
func Mount(verb VerbMatcher, sub Dispatcher, pattern ...Segment) Route {
	if len(pattern) == 0 || pattern[len(pattern)-1].kind != segmentRest {
		pattern = append(pattern[:len(pattern):len(pattern)], Rest())
	}
	return Route{Verb: verb, Pattern: pattern, Sub: sub}
}

// match tests the route against verb and segments. For Rest patterns the
// unconsumed suffix is returned.
func (r Route) match(verb Verb, segments []string) (Params, []string, bool) {
	if !r.Verb.Matches(verb) {
		return nil, nil, false
	}

	var params Params
	for i, seg := range r.Pattern {
		if seg.kind == segmentRest {
			return params, segments[i:], true
		}
		if i >= len(segments) {
			return nil, nil, false
		}
		switch seg.kind {
		case segmentLiteral:
			if segments[i] != seg.value {
				return nil, nil, false
			}
		case segmentParam:
			if params == nil {
				params = Params{}
			}
			params[seg.value] = segments[i]
		}
	}

	if len(segments) != len(r.Pattern) {
		return nil, nil, false
	}
	return params, nil, true
}

func (r Route) String() string {
	s := r.Verb.String() + " /"
	for i, seg := range r.Pattern {
		if i > 0 {
			s += "/"
		}
		s += seg.String()
	}
	return s
}
