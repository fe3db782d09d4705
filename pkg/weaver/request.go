package weaver

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/goccy/go-json"

	"github.com/toyz/weaver/pkg/errors"
	"github.com/toyz/weaver/pkg/validation"
)

const (
	requestKey   = "weaver.request"
	bodyLimitKey = "weaver.body-limit"
)

// Request is the per-request view handlers and validators read input from.
// The body is decoded once, on first use.
type Request struct {
	ctx RequestContext

	mu        sync.Mutex
	bodyOnce  sync.Once
	body      map[string]interface{}
	bodyErr   error
	query     map[string]interface{}
	params    map[string]interface{}
	headers   map[string]interface{}
	validated map[validation.Location]map[string]interface{}
	values    map[string]interface{}
}

// RequestFrom returns the Request attached to ctx, creating it on first use
func RequestFrom(ctx RequestContext) *Request {
	if req, ok := ctx.Get(requestKey).(*Request); ok && req != nil {
		return req
	}
	req := &Request{ctx: ctx}
	ctx.Set(requestKey, req)
	return req
}

// Ctx returns the underlying request context
func (r *Request) Ctx() RequestContext {
	return r.ctx
}

// Context returns the request scoped context.Context
func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx.Context()
}

// Body returns the decoded request body. JSON objects and url-encoded forms
// are supported; any other content type yields an empty map.
func (r *Request) Body() (map[string]interface{}, error) {
	r.bodyOnce.Do(func() {
		body, err := r.decodeBody()
		r.mu.Lock()
		r.body, r.bodyErr = body, err
		r.mu.Unlock()
	})
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body, r.bodyErr
}

func (r *Request) decodeBody() (map[string]interface{}, error) {
	out := make(map[string]interface{})
	if r.ctx == nil || r.ctx.Request() == nil {
		return out, nil
	}
	raw, err := r.ctx.Request().Body()
	if err != nil {
		return nil, errors.NewBadRequest("Unable to read request body.").SetInner(err)
	}
	if limit, ok := r.ctx.Get(bodyLimitKey).(int64); ok && limit > 0 && int64(len(raw)) > limit {
		return nil, errors.NewHTTP(413, "Request body too large.")
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return out, nil
	}

	contentType := strings.ToLower(r.ctx.Request().ContentType())
	switch {
	case strings.Contains(contentType, "json"), raw[0] == '{':
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, errors.NewBadRequest("Malformed JSON body.").SetInner(err)
		}
	case strings.Contains(contentType, "application/x-www-form-urlencoded"):
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			return nil, errors.NewBadRequest("Malformed form body.").SetInner(err)
		}
		out = valuesToMap(values)
	}
	return out, nil
}

// Query returns the query string as a map. Repeated keys become arrays.
func (r *Request) Query() map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.query == nil {
		r.query = make(map[string]interface{})
		if r.ctx != nil {
			r.query = valuesToMap(r.ctx.QueryParams())
		}
	}
	return r.query
}

// Params returns the path parameters, typed when the route declared types
func (r *Request) Params() map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.params == nil {
		r.params = r.rawParams()
	}
	return r.params
}

func (r *Request) rawParams() map[string]interface{} {
	out := make(map[string]interface{})
	if r.ctx == nil {
		return out
	}
	names, values := r.ctx.ParamNames(), r.ctx.ParamValues()
	for i, name := range names {
		if i < len(values) {
			out[name] = values[i]
		}
	}
	return out
}

// bindParams converts the raw path parameters with the declared types
func (r *Request) bindParams(types map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	params := r.rawParams()
	for name, typ := range types {
		raw, ok := params[name].(string)
		if !ok {
			continue
		}
		val, err := ParseParam(typ, raw)
		if err != nil {
			return errors.NewInvalidArgumentf("invalid %s parameter %q", typ, name).SetInner(err)
		}
		params[name] = val
	}
	r.params = params
	return nil
}

// Headers returns the request headers keyed by lower case name
func (r *Request) Headers() map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.headers == nil {
		r.headers = make(map[string]interface{})
		if r.ctx != nil && r.ctx.Request() != nil {
			for key, vals := range r.ctx.Request().Headers() {
				r.headers[strings.ToLower(key)] = strings.Join(vals, ", ")
			}
		}
	}
	return r.headers
}

// Location returns the raw input of loc
func (r *Request) Location(loc validation.Location) (map[string]interface{}, error) {
	switch loc {
	case validation.Body:
		return r.Body()
	case validation.Query:
		return r.Query(), nil
	case validation.Params:
		return r.Params(), nil
	case validation.Headers:
		return r.Headers(), nil
	}
	return nil, fmt.Errorf("unknown request location %q", loc)
}

// setLocation replaces the raw input of loc, as sanitizers do
func (r *Request) setLocation(loc validation.Location, values map[string]interface{}) {
	if loc == validation.Body {
		// make sure a later Body call does not decode again
		r.bodyOnce.Do(func() {})
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	switch loc {
	case validation.Body:
		r.body, r.bodyErr = values, nil
	case validation.Query:
		r.query = values
	case validation.Params:
		r.params = values
	case validation.Headers:
		r.headers = values
	}
}

// Sources collects the raw input of every location for a validation pass
func (r *Request) Sources(locs ...validation.Location) (map[validation.Location]map[string]interface{}, error) {
	if len(locs) == 0 {
		locs = []validation.Location{validation.Body, validation.Query, validation.Params, validation.Headers}
	}
	out := make(map[validation.Location]map[string]interface{}, len(locs))
	for _, loc := range locs {
		values, err := r.Location(loc)
		if err != nil {
			return nil, err
		}
		out[loc] = values
	}
	return out, nil
}

// Validated returns the matched data of loc stored by a validation pass
func (r *Request) Validated(loc validation.Location) (map[string]interface{}, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	values, ok := r.validated[loc]
	return values, ok
}

// SetValidated stores matched data for loc
func (r *Request) SetValidated(loc validation.Location, values map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.validated == nil {
		r.validated = make(map[validation.Location]map[string]interface{})
	}
	r.validated[loc] = values
}

// MergeValidated folds values into the matched data already stored for loc,
// so stacked validators on one route each contribute their fields
func (r *Request) MergeValidated(loc validation.Location, values map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.validated == nil {
		r.validated = make(map[validation.Location]map[string]interface{})
	}
	existing, ok := r.validated[loc]
	if !ok {
		r.validated[loc] = values
		return
	}
	r.validated[loc] = mergeMaps(existing, values)
}

func mergeMaps(dst, src map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		prev, ok := out[k].(map[string]interface{})
		next, isMap := v.(map[string]interface{})
		if ok && isMap {
			out[k] = mergeMaps(prev, next)
			continue
		}
		out[k] = v
	}
	return out
}

// Prefer returns the validated data of loc when present, the raw data otherwise
func (r *Request) Prefer(loc validation.Location) (map[string]interface{}, error) {
	if values, ok := r.Validated(loc); ok {
		return values, nil
	}
	return r.Location(loc)
}

// ContextValue returns a value stored on the request
func (r *Request) ContextValue(key string) interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.values[key]
}

// SetContextValue stores a value on the request
func (r *Request) SetContextValue(key string, value interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.values == nil {
		r.values = make(map[string]interface{})
	}
	r.values[key] = value
}

// valuesToMap flattens url values: single values stay strings, repeated
// keys become arrays.
func valuesToMap(values map[string][]string) map[string]interface{} {
	out := make(map[string]interface{}, len(values))
	for key, vals := range values {
		switch len(vals) {
		case 0:
			out[key] = ""
		case 1:
			out[key] = vals[0]
		default:
			list := make([]interface{}, len(vals))
			for i, v := range vals {
				list[i] = v
			}
			out[key] = list
		}
	}
	return out
}
