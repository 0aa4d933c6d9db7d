package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reply(body string) HandlerFunc {
	return func(context.Context, *Request, Params) (Response, error) {
		return Text(http.StatusOK, body), nil
	}
}

func echoParam(name string) HandlerFunc {
	return func(_ context.Context, _ *Request, p Params) (Response, error) {
		return Text(http.StatusOK, p.Get(name)), nil
	}
}

// recorder is a Dispatcher that remembers what it was handed.
type recorder struct {
	verb     Verb
	segments []string
	calls    int
}

func (r *recorder) Dispatch(_ context.Context, verb Verb, segments []string, _ *Request) (Response, error) {
	r.verb = verb
	r.segments = segments
	r.calls++
	return Text(http.StatusOK, "sub"), nil
}

func dispatchPath(t *testing.T, d Dispatcher, method, path string) Response {
	t.Helper()
	res, err := Serve(context.Background(), d, NewRequest(method, path, nil, nil, nil))
	require.NoError(t, err)
	return res
}

func TestParseVerb(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Verb
	}{
		{"GET", VerbGet},
		{"get", VerbGet},
		{"Delete", VerbDelete},
		{" put ", VerbPut},
		{"PATCH", VerbPatch},
		{"PROPFIND", VerbUndefined},
		{"", VerbUndefined},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseVerb(tt.in), "ParseVerb(%q)", tt.in)
	}
	assert.Equal(t, "GET", VerbGet.String())
	assert.Equal(t, "UNDEFINED", Verb(99).String())
}

func TestVerbMatcher_UndefinedNeverMatches(t *testing.T) {
	t.Parallel()

	assert.False(t, AnyVerb().Matches(VerbUndefined))
	assert.False(t, Only(VerbUndefined).Matches(VerbUndefined))
	assert.True(t, AnyVerb().Matches(VerbTrace))
	assert.True(t, Only(VerbPost).Matches(VerbPost))
	assert.False(t, Only(VerbPost).Matches(VerbGet))
}

func TestSegments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want []string
	}{
		{"", []string{}},
		{"/", []string{}},
		{"/contacts", []string{"contacts"}},
		{"/contacts/", []string{"contacts"}},
		{"/Contacts/ABC", []string{"contacts", "abc"}},
		{"/a//b", []string{"a", "", "b"}},
		{"//", []string{"", ""}},
		{"/contacts//", []string{"contacts", "", ""}},
		{"/ÉTÉ", []string{"été"}},
	}

	for _, tt := range tests {
		got := Segments(tt.path)
		require.NotNil(t, got)
		assert.Equal(t, tt.want, got, "Segments(%q)", tt.path)
	}
}

func TestLower(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ann42", Lower("Ann42"))
	assert.Equal(t, "été", Lower("ÉTÉ"))
	assert.Equal(t, Lit("Contacts"), Lit(Lower("CONTACTS")))
}

func TestSegments_EmptyAndRootAreEquivalent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Segments(""), Segments("/"))
	assert.Len(t, Segments("/"), 0)

	table := MustNew(nil, Handle(Only(VerbGet), reply("root")))
	assert.Equal(t, "root", dispatchPath(t, table, "GET", "").Body)
	assert.Equal(t, "root", dispatchPath(t, table, "GET", "/").Body)
}

func TestTable_FirstMatchWins(t *testing.T) {
	t.Parallel()

	table := MustNew(nil,
		Handle(Only(VerbGet), reply("literal"), Lit("users"), Lit("me")),
		Handle(Only(VerbGet), echoParam("id"), Lit("users"), Param("id")),
		Handle(AnyVerb(), reply("any"), Lit("users"), Param("id")),
	)

	assert.Equal(t, "literal", dispatchPath(t, table, "GET", "/users/me").Body)
	assert.Equal(t, "42", dispatchPath(t, table, "GET", "/users/42").Body)
	assert.Equal(t, "any", dispatchPath(t, table, "POST", "/users/42").Body)
}

func TestTable_ExactLength(t *testing.T) {
	t.Parallel()

	table := MustNew(nil, Handle(Only(VerbGet), echoParam("id"), Param("id")))

	assert.Equal(t, http.StatusOK, dispatchPath(t, table, "GET", "/x").Status)
	assert.Equal(t, http.StatusBadRequest, dispatchPath(t, table, "GET", "/").Status)
	assert.Equal(t, http.StatusBadRequest, dispatchPath(t, table, "GET", "/x/y").Status)
}

func TestTable_RestForwardsSuffix(t *testing.T) {
	t.Parallel()

	sub := &recorder{}
	table := MustNew(nil, Mount(AnyVerb(), sub, Lit("contacts")))

	res := dispatchPath(t, table, "delete", "/contacts/42/extra")
	assert.Equal(t, "sub", res.Body)
	assert.Equal(t, VerbDelete, sub.verb)
	assert.Equal(t, []string{"42", "extra"}, sub.segments)

	dispatchPath(t, table, "GET", "/contacts")
	assert.Empty(t, sub.segments)
	assert.Equal(t, 2, sub.calls)
}

func TestTable_NestedTables(t *testing.T) {
	t.Parallel()

	inner := MustNew(nil, Handle(Only(VerbGet), echoParam("id"), Lit("items"), Param("id")))
	middle := MustNew(nil, Mount(AnyVerb(), inner, Lit("v1")))
	outer := MustNew(nil, Mount(AnyVerb(), middle, Lit("api")))

	assert.Equal(t, "7", dispatchPath(t, outer, "GET", "/api/v1/items/7").Body)
	assert.Equal(t, http.StatusBadRequest, dispatchPath(t, outer, "POST", "/api/v1/items/7").Status)
}

func TestTable_NoHandler(t *testing.T) {
	t.Parallel()

	sub := &recorder{}
	table := MustNew(nil,
		Mount(AnyVerb(), sub, Lit("contacts")),
		Handle(AnyVerb(), reply("root")),
	)

	res := dispatchPath(t, table, "PATCH", "/unknown/deep/path")
	assert.Equal(t, http.StatusBadRequest, res.Status)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Body), &envelope))
	assert.Equal(t, "NO_HANDLER", envelope["code"])
	assert.Equal(t, "no handler", envelope["message"])
	assert.Zero(t, sub.calls)
}

func TestTable_UndefinedVerbFallsThrough(t *testing.T) {
	t.Parallel()

	sub := &recorder{}
	table := MustNew(nil, Mount(AnyVerb(), sub, Lit("contacts")))

	res := dispatchPath(t, table, "BREW", "/contacts")
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Zero(t, sub.calls)
}

func TestTable_CustomFallback(t *testing.T) {
	t.Parallel()

	table := MustNew(reply("fallback"))
	assert.Equal(t, "fallback", dispatchPath(t, table, "GET", "/anything").Body)
}

func TestNew_RejectsInvalidRoutes(t *testing.T) {
	t.Parallel()

	_, err := New(nil, Route{Verb: AnyVerb(), Pattern: []Segment{Rest(), Lit("x")}, Sub: &recorder{}})
	assert.Error(t, err)

	_, err = New(nil, Route{Verb: AnyVerb(), Pattern: []Segment{Lit("x"), Rest()}})
	assert.Error(t, err)

	_, err = New(nil, Route{Verb: AnyVerb(), Pattern: []Segment{Lit("x")}})
	assert.Error(t, err)

	assert.Panics(t, func() {
		MustNew(nil, Route{Verb: AnyVerb(), Pattern: []Segment{Lit("x")}})
	})
}

func TestMount_AppendsRestOnce(t *testing.T) {
	t.Parallel()

	r := Mount(AnyVerb(), &recorder{}, Lit("a"), Rest())
	assert.Len(t, r.Pattern, 2)
	assert.Equal(t, "* /a/*", r.String())
}

func TestRequest_TextReadsOnce(t *testing.T) {
	t.Parallel()

	reads := 0
	req := NewRequest("POST", "/", nil, nil, func(context.Context) (string, error) {
		reads++
		return "body", nil
	})

	for range 2 {
		text, err := req.Text(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "body", text)
	}
	assert.Equal(t, 1, reads)
}

func TestRequest_TextError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	req := NewRequest("POST", "/", nil, nil, func(context.Context) (string, error) {
		return "", boom
	})

	_, err := req.Text(context.Background())
	assert.ErrorIs(t, err, boom)

	empty := NewRequest("POST", "/", nil, nil, nil)
	text, err := empty.Text(context.Background())
	require.NoError(t, err)
	assert.Empty(t, text)
}
