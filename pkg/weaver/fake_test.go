package weaver

import (
	"context"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/toyz/weaver/pkg/metadata"
)

// fakeContext is an in-memory RequestContext
type fakeContext struct {
	method  string
	path    string
	params  [][2]string
	query   map[string][]string
	headers http.Header
	body    []byte
	values  map[string]interface{}
	ctx     context.Context
	res     *fakeResponse
}

func newFakeContext(method, path string) *fakeContext {
	return &fakeContext{
		method:  method,
		path:    path,
		query:   map[string][]string{},
		headers: http.Header{},
		values:  map[string]interface{}{},
		ctx:     context.Background(),
		res:     &fakeResponse{headers: http.Header{}},
	}
}

func (f *fakeContext) withParam(name, value string) *fakeContext {
	f.params = append(f.params, [2]string{name, value})
	return f
}

func (f *fakeContext) withQuery(key string, values ...string) *fakeContext {
	f.query[key] = values
	return f
}

func (f *fakeContext) withJSON(v interface{}) *fakeContext {
	f.body, _ = json.Marshal(v)
	f.headers.Set("Content-Type", "application/json")
	return f
}

func (f *fakeContext) Method() string { return f.method }
func (f *fakeContext) Path() string   { return f.path }
func (f *fakeContext) RealIP() string { return "127.0.0.1" }

func (f *fakeContext) Param(key string) string {
	for _, p := range f.params {
		if p[0] == key {
			return p[1]
		}
	}
	return ""
}

func (f *fakeContext) ParamNames() []string {
	names := make([]string, len(f.params))
	for i, p := range f.params {
		names[i] = p[0]
	}
	return names
}

func (f *fakeContext) ParamValues() []string {
	values := make([]string, len(f.params))
	for i, p := range f.params {
		values[i] = p[1]
	}
	return values
}

func (f *fakeContext) QueryParam(key string) string {
	if v := f.query[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func (f *fakeContext) QueryParams() map[string][]string { return f.query }
func (f *fakeContext) Request() RequestInterface        { return &fakeRequest{f} }
func (f *fakeContext) Response() ResponseInterface      { return f.res }
func (f *fakeContext) Get(key string) interface{}       { return f.values[key] }
func (f *fakeContext) Set(key string, val interface{})  { f.values[key] = val }
func (f *fakeContext) Context() context.Context         { return f.ctx }
func (f *fakeContext) SetContext(ctx context.Context)   { f.ctx = ctx }

type fakeRequest struct{ f *fakeContext }

func (r *fakeRequest) Header(key string) string     { return r.f.headers.Get(key) }
func (r *fakeRequest) Headers() map[string][]string { return r.f.headers }
func (r *fakeRequest) SetHeader(key, value string)  { r.f.headers.Set(key, value) }
func (r *fakeRequest) Body() ([]byte, error)        { return r.f.body, nil }
func (r *fakeRequest) ContentLength() int64         { return int64(len(r.f.body)) }
func (r *fakeRequest) ContentType() string          { return r.f.headers.Get("Content-Type") }

// fakeResponse records what was written
type fakeResponse struct {
	status      int
	headers     http.Header
	body        interface{}
	contentType string
	location    string
	written     bool
	calls       []string
}

func (r *fakeResponse) write(call string, code int, body interface{}) error {
	r.calls = append(r.calls, call)
	r.status, r.body, r.written = code, body, true
	return nil
}

func (r *fakeResponse) Status() int                        { return r.status }
func (r *fakeResponse) SetStatus(code int)                 { r.status = code }
func (r *fakeResponse) Header(key string) string           { return r.headers.Get(key) }
func (r *fakeResponse) SetHeader(key, value string)        { r.headers.Set(key, value) }
func (r *fakeResponse) JSON(code int, i interface{}) error { return r.write("json", code, i) }
func (r *fakeResponse) String(code int, s string) error    { return r.write("string", code, s) }
func (r *fakeResponse) HTML(code int, html string) error   { return r.write("html", code, html) }
func (r *fakeResponse) Written() bool                      { return r.written }

func (r *fakeResponse) Blob(code int, contentType string, b []byte) error {
	r.contentType = contentType
	return r.write("blob", code, b)
}

func (r *fakeResponse) Redirect(code int, location string) error {
	r.location = location
	return r.write("redirect", code, nil)
}

// fakeServer records registered routes and serves them by exact method and
// path lookup
type fakeServer struct {
	routes map[string]HandlerFunc
	paths  []string
}

func newFakeServer() *fakeServer {
	return &fakeServer{routes: map[string]HandlerFunc{}}
}

func (s *fakeServer) RegisterRoute(method string, path Path, handler HandlerFunc, middlewares ...MiddlewareFunc) {
	key := method + " " + path.Raw()
	s.paths = append(s.paths, key)
	s.routes[key] = Chain(handler, middlewares...)
}

func (s *fakeServer) serve(method, path string, ctx RequestContext) error {
	h, ok := s.routes[method+" "+path]
	if !ok {
		return &missingRoute{method + " " + path}
	}
	return h(ctx)
}

type missingRoute struct{ key string }

func (m *missingRoute) Error() string { return "no route " + strings.TrimSpace(m.key) }

// withStore runs the test against a fresh metadata store
func withStore(t interface{ Cleanup(func()) }) {
	prev := metadata.SetDefault(metadata.NewStore())
	t.Cleanup(func() { metadata.SetDefault(prev) })
}
