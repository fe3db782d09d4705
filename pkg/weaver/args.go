package weaver

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/go-viper/mapstructure/v2"

	"github.com/toyz/weaver/pkg/errors"
	"github.com/toyz/weaver/pkg/validation"
)

// ArgKind identifies where a handler argument comes from
type ArgKind int

const (
	// ArgUnset marks a position no source was registered for
	ArgUnset ArgKind = iota
	ArgBody
	ArgParams
	ArgQuery
	ArgHeaders
	ArgRequest
	ArgResponse
	ArgNext
	ArgCustom
)

func (k ArgKind) String() string {
	switch k {
	case ArgBody:
		return "body"
	case ArgParams:
		return "params"
	case ArgQuery:
		return "query"
	case ArgHeaders:
		return "headers"
	case ArgRequest:
		return "request"
	case ArgResponse:
		return "response"
	case ArgNext:
		return "next"
	case ArgCustom:
		return "custom"
	}
	return "unset"
}

// location returns the request location read by data kinds
func (k ArgKind) location() (validation.Location, bool) {
	switch k {
	case ArgBody:
		return validation.Body, true
	case ArgParams:
		return validation.Params, true
	case ArgQuery:
		return validation.Query, true
	case ArgHeaders:
		return validation.Headers, true
	}
	return "", false
}

// CustomResolver produces an argument from the request
type CustomResolver func(req *Request, key string) (interface{}, error)

// ArgSource describes how one handler argument is resolved
type ArgSource struct {
	Kind     ArgKind
	Key      string
	Resolver CustomResolver
}

func (s ArgSource) String() string {
	if s.Key != "" {
		return fmt.Sprintf("%s(%s)", s.Kind, s.Key)
	}
	return s.Kind.String()
}

func keyed(kind ArgKind, key []string) ArgSource {
	src := ArgSource{Kind: kind}
	if len(key) > 0 {
		src.Key = key[0]
	}
	return src
}

// Body resolves the request body, or one of its keys
func Body(key ...string) ArgSource { return keyed(ArgBody, key) }

// Param resolves the path parameters, or one of them
func Param(key ...string) ArgSource { return keyed(ArgParams, key) }

// Query resolves the query string, or one of its keys
func Query(key ...string) ArgSource { return keyed(ArgQuery, key) }

// Header resolves the headers, or one of them
func Header(key ...string) ArgSource { return keyed(ArgHeaders, key) }

// Req resolves the *Request
func Req() ArgSource { return ArgSource{Kind: ArgRequest} }

// Res resolves the ResponseInterface. The method writes its own response.
func Res() ArgSource { return ArgSource{Kind: ArgResponse} }

// Next resolves the NextFunc. The method writes its own response.
func Next() ArgSource { return ArgSource{Kind: ArgNext} }

// Custom resolves an argument with fn
func Custom(fn CustomResolver, key ...string) ArgSource {
	src := keyed(ArgCustom, key)
	src.Resolver = fn
	return src
}

// ResolveArgs produces the handler arguments for sources. Data sources
// prefer validated values over raw input. Unset positions resolve to nil.
func ResolveArgs(sources []ArgSource, req *Request, next NextFunc) ([]interface{}, error) {
	out := make([]interface{}, len(sources))
	for i, src := range sources {
		val, err := resolveArg(src, req, next)
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}

func resolveArg(src ArgSource, req *Request, next NextFunc) (interface{}, error) {
	if loc, ok := src.Kind.location(); ok {
		values, err := req.Prefer(loc)
		if err != nil {
			return nil, err
		}
		if src.Key == "" {
			return values, nil
		}
		return values[src.Key], nil
	}

	switch src.Kind {
	case ArgUnset:
		return nil, nil
	case ArgRequest:
		return req, nil
	case ArgResponse:
		return req.Ctx().Response(), nil
	case ArgNext:
		return next, nil
	case ArgCustom:
		if src.Resolver == nil {
			return nil, errors.NewInvalidArgument("Invalid param resolver")
		}
		return src.Resolver(req, src.Key)
	}
	return nil, errors.NewInvalidArgument("Invalid param resolver")
}

// convertArg turns a resolved value into a value of type t
func convertArg(value interface{}, t reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if isNumeric(v.Kind()) && isNumeric(t.Kind()) {
		if v.CanFloat() && !isFloatKind(t.Kind()) {
			f := v.Float()
			if f != math.Trunc(f) || (f < 0 && isUnsignedKind(t.Kind())) {
				return reflect.Value{}, errors.NewInvalidArgumentf("cannot bind %v to %s", value, t)
			}
		}
		return v.Convert(t), nil
	}
	if s, ok := value.(string); ok {
		if converted, ok := parseScalar(s, t); ok {
			return converted, nil
		}
	}

	target := reflect.New(t)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target.Interface(),
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return reflect.Value{}, err
	}
	if err := decoder.Decode(value); err != nil {
		return reflect.Value{}, errors.NewInvalidArgumentf("cannot bind %T to %s", value, t).SetInner(err)
	}
	return target.Elem(), nil
}

func parseScalar(s string, t reflect.Type) (reflect.Value, bool) {
	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, t.Bits())
		if err != nil {
			return out, false
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, t.Bits())
		if err != nil {
			return out, false
		}
		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, t.Bits())
		if err != nil {
			return out, false
		}
		out.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return out, false
		}
		out.SetBool(b)
	default:
		return out, false
	}
	return out, true
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isUnsignedKind(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}
