// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package route

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/web/router"
)

func okHandler(_ *http.Request) (*router.Response, error) {
	return router.NewResponse(http.StatusOK), nil
}

func request(method, path string) *http.Request {
	r := httptest.NewRequest(method, "/", nil)
	r.URL.Path = path
	return r
}

func TestPattern_Match(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		template string
		path     string
		want     map[string]string
		ok       bool
	}{
		{name: "root", template: "/", path: "/", want: map[string]string{}, ok: true},
		{name: "root empty path", template: "/", path: "", want: map[string]string{}, ok: true},
		{name: "literal", template: "posts", path: "/posts", want: map[string]string{}, ok: true},
		{name: "leading slash on template", template: "/posts", path: "posts", want: map[string]string{}, ok: true},
		{name: "trailing slash significant", template: "posts", path: "/posts/", ok: false},
		{name: "trailing slash required", template: "posts/", path: "/posts", ok: false},
		{name: "default constraint", template: "users/<name>", path: "/users/alice", want: map[string]string{"name": "alice"}, ok: true},
		{name: "default stops at slash", template: "users/<name>", path: "/users/a/b", ok: false},
		{
			name:     "regex constraint",
			template: `book/<id:\d+>/<title>`,
			path:     "book/123/this+is+sample",
			want:     map[string]string{"id": "123", "title": "this+is+sample"},
			ok:       true,
		},
		{name: "constraint rejects", template: `book/<id:\d+>`, path: "book/abc", ok: false},
		{name: "literal metacharacters", template: "files/a.b+c", path: "files/a.b+c", want: map[string]string{}, ok: true},
		{name: "metacharacters quoted", template: "files/a.b", path: "files/axb", ok: false},
		{name: "constraint with slashes", template: "static/<path:.+>", path: "static/css/site.css", want: map[string]string{"path": "css/site.css"}, ok: true},
		{name: "constraint with alternation", template: "<lang:en|fr>/home", path: "fr/home", want: map[string]string{"lang": "fr"}, ok: true},
		{name: "alternation is anchored", template: "<lang:en|fr>/home", path: "french/home", ok: false},
		{name: "nested groups", template: `v<major:(\d+)(?:\.\d+)?>`, path: "v1.2", want: map[string]string{"major": "1.2"}, ok: true},
		{name: "adjacent placeholders", template: `<a:\d>-<b:\d>`, path: "1-2", want: map[string]string{"a": "1", "b": "2"}, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := CompilePattern(tt.template)
			require.NoError(t, err)

			got, ok := p.Match(tt.path)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestCompilePattern_Errors(t *testing.T) {
	t.Parallel()

	templates := []string{
		"users/<id",
		"users/<>",
		"users/<1id>",
		"users/<id:>",
		"users/<id:[>",
		"users/<id:(?P<x>\\d+)>",
		"<a>/<a>",
		"users/<id:(>",
		"admin/<id:\\d+)|(.*>",
		"<id:a)(b>",
	}

	for _, tmpl := range templates {
		t.Run(tmpl, func(t *testing.T) {
			t.Parallel()
			_, err := CompilePattern(tmpl)
			require.ErrorIs(t, err, ErrInvalidPattern)

			var pe *PatternError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tmpl, pe.Template)
		})
	}

	assert.Panics(t, func() { MustCompilePattern("<") })
}

func TestCompilePattern_ConstraintStaysInsideItsGroup(t *testing.T) {
	t.Parallel()

	p := MustCompilePattern("admin/<id:a|b>")
	params, ok := p.Match("admin/a")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"id": "a"}, params)

	_, ok = p.Match("b")
	assert.False(t, ok, "alternation must not escape the placeholder")
	_, ok = p.Match("admin/c")
	assert.False(t, ok)

	_, err := NewGroup(Get("admin/<id>").ToFunc(okHandler).Where("id", `\d+)|(.*`))
	require.ErrorIs(t, err, ErrInvalidPattern)
}

func TestPattern_Names(t *testing.T) {
	t.Parallel()

	p := MustCompilePattern(`book/<id:\d+>/<title>`)
	assert.Equal(t, []string{"id", "title"}, p.Names())
	assert.Equal(t, `book/<id:\d+>/<title>`, p.String())
}

func TestRoute_BuildersCopy(t *testing.T) {
	t.Parallel()

	base := Get("book/<id>").WithParam("section", "library")
	named := base.WithName("book/view").WithHost("example.com").ToFunc(okHandler)
	withMore := named.WithParams(map[string]string{"format": "html"}).WhereInt("id")

	assert.Empty(t, base.Name())
	assert.Empty(t, base.Host())
	assert.Nil(t, base.Handler())
	assert.Equal(t, map[string]string{"section": "library"}, base.Params())
	assert.Empty(t, base.Constraints())

	assert.Equal(t, "book/view", named.Name())
	assert.Equal(t, "example.com", named.Host())
	assert.NotNil(t, named.Handler())
	assert.Equal(t, map[string]string{"section": "library"}, named.Params())

	assert.Equal(t, map[string]string{"section": "library", "format": "html"}, withMore.Params())
	assert.Equal(t, map[string]string{"id": PatternInt}, withMore.Constraints())
	assert.Equal(t, "GET book/<id> (example.com) [book/view]", named.String())
}

func TestRoute_Methods(t *testing.T) {
	t.Parallel()

	tests := map[string]*Route{
		http.MethodGet:     Get("/"),
		http.MethodPost:    Post("/"),
		http.MethodPut:     Put("/"),
		http.MethodPatch:   Patch("/"),
		http.MethodDelete:  Delete("/"),
		http.MethodHead:    Head("/"),
		http.MethodOptions: Options("/"),
		MethodAny:          Any("/"),
		"PURGE":            New("purge", "/"),
	}
	for method, rt := range tests {
		assert.Equal(t, method, rt.Method())
	}
}

func TestGroup_MethodMismatch(t *testing.T) {
	t.Parallel()

	g := MustNewGroup(Post("/").ToFunc(okHandler))
	res := g.Match(request(http.MethodGet, "/"))

	assert.Equal(t, NoMatch, res.Outcome)
	assert.Equal(t, MethodMismatch, res.Reason)
	require.ErrorIs(t, res.Err(), ErrNoMatch)
}

func TestGroup_HostMismatch(t *testing.T) {
	t.Parallel()

	g := MustNewGroup(Get("/").ToFunc(okHandler).WithHost("yiiframework.com"))

	r := request(http.MethodGet, "/")
	r.Host = "example.com"
	res := g.Match(r)
	assert.Equal(t, NoMatch, res.Outcome)
	assert.Equal(t, HostMismatch, res.Reason)

	r.Host = "yiiframework.com"
	assert.Equal(t, Matched, g.Match(r).Outcome)
}

func TestGroup_NoHandler(t *testing.T) {
	t.Parallel()

	g := MustNewGroup(Get("/"))
	res := g.Match(request(http.MethodGet, "/"))

	assert.Equal(t, NoHandler, res.Outcome)
	assert.False(t, res.IsMatched())
	assert.Nil(t, res.Handler)

	err := res.Err()
	require.ErrorIs(t, err, ErrNoHandler)
	var nh *NoHandlerError
	require.ErrorAs(t, err, &nh)
	assert.Same(t, g.Routes()[0], nh.Route)
	assert.Equal(t, http.StatusInternalServerError, nh.HTTPStatus())
}

func TestGroup_StaticMatch(t *testing.T) {
	t.Parallel()

	g := MustNewGroup(Get("/").ToFunc(okHandler))
	res := g.Match(request(http.MethodGet, "/"))

	require.True(t, res.IsMatched())
	require.NoError(t, res.Err())
	assert.NotNil(t, res.Handler)
	assert.Empty(t, res.Params)
	assert.Empty(t, res.Name)
}

func TestGroup_PatternMatch(t *testing.T) {
	t.Parallel()

	g := MustNewGroup(
		Get(`post/<id:\d+>`).ToFunc(okHandler).WithName("post/view"),
		Get("posts").ToFunc(okHandler).WithName("post/list"),
		Get(`book/<id:\d+>/<title>`).ToFunc(okHandler).WithName("book/view"),
	)

	tests := []struct {
		path   string
		name   string
		params map[string]string
	}{
		{path: "book/123/this+is+sample", name: "book/view", params: map[string]string{"id": "123", "title": "this+is+sample"}},
		{path: "/post/7", name: "post/view", params: map[string]string{"id": "7"}},
		{path: "posts", name: "post/list", params: map[string]string{}},
		{path: "book/123/this+is+sample/"},
		{path: ""},
		{path: "site/index"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			res := g.Match(request(http.MethodGet, tt.path))
			if tt.name == "" {
				assert.Equal(t, NoMatch, res.Outcome)
				assert.Equal(t, PathMismatch, res.Reason)
				return
			}
			require.Equal(t, Matched, res.Outcome)
			assert.Equal(t, tt.name, res.Name)
			assert.Equal(t, tt.params, res.Params)
		})
	}
}

func TestGroup_RegistrationOrderWins(t *testing.T) {
	t.Parallel()

	g := MustNewGroup(
		Get("users/<name>").ToFunc(okHandler).WithName("generic"),
		Get("users/me").ToFunc(okHandler).WithName("me"),
	)
	assert.Equal(t, "generic", g.Match(request(http.MethodGet, "users/me")).Name)
}

func TestGroup_FirstRouteReasonWins(t *testing.T) {
	t.Parallel()

	g := MustNewGroup(
		Get("a").ToFunc(okHandler),
		Post("b").ToFunc(okHandler),
	)
	res := g.Match(request(http.MethodPost, "c"))
	assert.Equal(t, MethodMismatch, res.Reason)

	res = g.Match(request(http.MethodGet, "c"))
	assert.Equal(t, PathMismatch, res.Reason)

	empty := MustNewGroup()
	assert.Equal(t, ReasonNone, empty.Match(request(http.MethodGet, "/")).Reason)
}

func TestGroup_AnyMethod(t *testing.T) {
	t.Parallel()

	g := MustNewGroup(Any("ping").ToFunc(okHandler))
	for _, m := range []string{http.MethodGet, http.MethodPost, http.MethodDelete, "PURGE"} {
		assert.True(t, g.Match(request(m, "/ping")).IsMatched(), m)
	}
}

func TestGroup_CapturedOverrideRouteParams(t *testing.T) {
	t.Parallel()

	g := MustNewGroup(Get("page/<lang>").ToFunc(okHandler).WithParams(map[string]string{"lang": "en", "layout": "main"}))
	res := g.Match(request(http.MethodGet, "page/fr"))
	assert.Equal(t, map[string]string{"lang": "fr", "layout": "main"}, res.Params)
}

func TestGroup_WhereConstraints(t *testing.T) {
	t.Parallel()

	g := MustNewGroup(
		Get("users/<id>").ToFunc(okHandler).WhereInt("id").WithName("user"),
		Get("docs/<kind>").ToFunc(okHandler).WhereEnum("kind", "guide", "api.v1").WithName("docs"),
		Get("items/<id>").ToFunc(okHandler).WhereUUID("id").WithName("item"),
	)

	assert.True(t, g.Match(request(http.MethodGet, "users/42")).IsMatched())
	assert.False(t, g.Match(request(http.MethodGet, "users/abc")).IsMatched())
	assert.True(t, g.Match(request(http.MethodGet, "docs/api.v1")).IsMatched())
	assert.False(t, g.Match(request(http.MethodGet, "docs/apixv1")).IsMatched())
	assert.True(t, g.Match(request(http.MethodGet, "items/0190b3a5-6e3c-7d8e-9f10-111213141516")).IsMatched())

	_, err := NewGroup(Get("users/<id>").Where("uid", PatternInt))
	require.ErrorIs(t, err, ErrInvalidPattern)
}

func TestNewGroup_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewGroup(Get("a").WithName("x"), Get("b").WithName("x"))
	require.ErrorIs(t, err, ErrDuplicateName)

	_, err = NewGroup(Get("a"), nil)
	require.ErrorIs(t, err, ErrNilRoute)

	_, err = NewGroup(Get("<bad"))
	require.ErrorIs(t, err, ErrInvalidPattern)

	assert.Panics(t, func() { MustNewGroup(Get("<bad")) })
}

func TestGroup_AddIsAtomic(t *testing.T) {
	t.Parallel()

	g := MustNewGroup(Get("a").WithName("a"))
	err := g.Add(Get("b").WithName("b"), Get("<bad"))
	require.ErrorIs(t, err, ErrInvalidPattern)
	assert.Equal(t, 1, g.Len())
	_, ok := g.Lookup("b")
	assert.False(t, ok)

	require.NoError(t, g.Add(Get("b").WithName("b")))
	rt, ok := g.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, "b", rt.Template())
}

func TestGroup_Generate(t *testing.T) {
	t.Parallel()

	g := MustNewGroup(
		Get(`post/<id:\d+>`).ToFunc(okHandler).WithName("post/view"),
		Get(`book/<id:\d+>/<title>`).ToFunc(okHandler).WithName("book/view"),
		Get("/").ToFunc(okHandler).WithName("home"),
		Get("page/<lang>").WithParam("lang", "en").WithName("page"),
		Get("static/<path:.+>").WithName("static"),
	)

	tests := []struct {
		name   string
		route  string
		params map[string]string
		want   string
	}{
		{name: "simple", route: "post/view", params: map[string]string{"id": "42"}, want: "/post/42"},
		{name: "query sorted", route: "post/view", params: map[string]string{"id": "42", "z": "1", "a": "b c"}, want: "/post/42?a=b+c&z=1"},
		{name: "escaped", route: "book/view", params: map[string]string{"id": "1", "title": "go in action?"}, want: "/book/1/go%20in%20action%3F"},
		{name: "plus kept", route: "book/view", params: map[string]string{"id": "123", "title": "this+is+sample"}, want: "/book/123/this+is+sample"},
		{name: "root", route: "home", want: "/"},
		{name: "route param default", route: "page", want: "/page/en"},
		{name: "default overridden", route: "page", params: map[string]string{"lang": "fr"}, want: "/page/fr"},
		{name: "slashes allowed by constraint", route: "static", params: map[string]string{"path": "css/site.css"}, want: "/static/css/site.css"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := g.Generate(tt.route, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGroup_GenerateRoundTrip(t *testing.T) {
	t.Parallel()

	g := MustNewGroup(Get(`book/<id:\d+>/<title>`).ToFunc(okHandler).WithName("book/view"))
	u, err := g.Generate("book/view", map[string]string{"id": "123", "title": "this+is+sample"})
	require.NoError(t, err)

	res := g.Match(httptest.NewRequest(http.MethodGet, u, nil))
	require.True(t, res.IsMatched())
	assert.Equal(t, map[string]string{"id": "123", "title": "this+is+sample"}, res.Params)
}

func TestGroup_GenerateErrors(t *testing.T) {
	t.Parallel()

	g := MustNewGroup(Get(`post/<id:\d+>`).WithName("post/view"))

	_, err := g.Generate("missing", nil)
	require.ErrorIs(t, err, ErrRouteNotFound)

	_, err = g.Generate("post/view", nil)
	require.ErrorIs(t, err, ErrMissingParameter)

	_, err = g.Generate("post/view", map[string]string{"id": "abc"})
	require.ErrorIs(t, err, ErrParameterMismatch)
}

func TestGroup_ConcurrentMatch(t *testing.T) {
	t.Parallel()

	g := MustNewGroup(
		Get(`post/<id:\d+>`).ToFunc(okHandler).WithName("post/view"),
		Get(`book/<id:\d+>/<title>`).ToFunc(okHandler).WithName("book/view"),
	)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res := g.Match(request(http.MethodGet, "post/"+string(rune('0'+i%10))))
			assert.Equal(t, "post/view", res.Name)
			assert.Equal(t, string(rune('0'+i%10)), res.Params["id"])
		}(i)
	}
	wg.Wait()
}
