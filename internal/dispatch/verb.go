package dispatch

import "strings"

// Verb is a normalized request method.
type Verb int

const (
	// VerbUndefined is produced for any method token we do not recognize.
	// It never matches a route.
	VerbUndefined Verb = iota
	VerbGet
	VerbHead
	VerbPost
	VerbPut
	VerbDelete
	VerbPatch
	VerbOptions
	VerbConnect
	VerbTrace
)

var verbNames = [...]string{
	VerbUndefined: "UNDEFINED",
	VerbGet:       "GET",
	VerbHead:      "HEAD",
	VerbPost:      "POST",
	VerbPut:       "PUT",
	VerbDelete:    "DELETE",
	VerbPatch:     "PATCH",
	VerbOptions:   "OPTIONS",
	VerbConnect:   "CONNECT",
	VerbTrace:     "TRACE",
}

var verbsByName = func() map[string]Verb {
	m := make(map[string]Verb, len(verbNames))
	for v, name := range verbNames {
		if Verb(v) == VerbUndefined {
			continue
		}
		m[name] = Verb(v)
	}
	return m
}()

// ParseVerb maps a method token to a Verb, ignoring case.
func ParseVerb(method string) Verb {
	if v, ok := verbsByName[strings.ToUpper(strings.TrimSpace(method))]; ok {
		return v
	}
	return VerbUndefined
}

func (v Verb) String() string {
	if v < 0 || int(v) >= len(verbNames) {
		return verbNames[VerbUndefined]
	}
	return verbNames[v]
}

// VerbMatcher decides whether a route accepts a verb.
type VerbMatcher struct {
	any  bool
	verb Verb
}

// AnyVerb accepts every defined verb.
func AnyVerb() VerbMatcher {
	return VerbMatcher{any: true}
}

// Only accepts exactly v.
func Only(v Verb) VerbMatcher {
	return VerbMatcher{verb: v}
}

// Matches reports whether m accepts v. VerbUndefined is always rejected.
func (m VerbMatcher) Matches(v Verb) bool {
	if v == VerbUndefined {
		return false
	}
	return m.any || m.verb == v
}

func (m VerbMatcher) String() string {
	if m.any {
		return "*"
	}
	return m.verb.String()
}
