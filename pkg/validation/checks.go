package validation

import (
	"context"
	"fmt"
	"html"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"golang.org/x/mod/semver"
)

// formats backs the string format checks
var formats = validator.New()

var formatTags = map[RuleKind]string{
	KindIsEmail:        "email",
	KindIsURL:          "url",
	KindIsUUID:         "uuid",
	KindIsIP:           "ip",
	KindIsAlpha:        "alpha",
	KindIsAlphanumeric: "alphanum",
}

var iso8601Layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// errNotText marks checks that could not read the value as text
var errNotText = fmt.Errorf("%s", InvalidTypeMessage)

// toText renders scalar values the way they would appear in a query string
func toText(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(t), true
	case fmt.Stringer:
		return t.String(), true
	}
	return "", false
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

func withinBounds(r Rule, n float64) bool {
	if r.Min != nil && n < *r.Min {
		return false
	}
	if r.Max != nil && n > *r.Max {
		return false
	}
	return true
}

func isEmptyValue(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []interface{}:
		return len(t) == 0
	case map[string]interface{}:
		return len(t) == 0
	}
	return false
}

// check evaluates a non-sanitizer rule. A non-nil error carries the
// message to report instead of the default one.
func check(ctx context.Context, r Rule, v interface{}, meta Meta) (bool, error) {
	switch r.Kind {
	case KindRequired:
		return v != nil && v != "", nil
	case KindOptional:
		return true, nil
	case KindNotEmpty:
		return !isEmptyValue(v), nil
	case KindIsString:
		_, ok := v.(string)
		return ok, nil
	case KindIsNumeric:
		_, ok := toFloat(v)
		return ok, nil
	case KindIsInt:
		n, ok := toFloat(v)
		if !ok || n != math.Trunc(n) {
			return false, nil
		}
		return withinBounds(r, n), nil
	case KindIsFloat:
		n, ok := toFloat(v)
		if !ok {
			return false, nil
		}
		return withinBounds(r, n), nil
	case KindIsBoolean:
		if _, ok := v.(bool); ok {
			return true, nil
		}
		s, ok := v.(string)
		return ok && (s == "true" || s == "false" || s == "1" || s == "0"), nil
	case KindIsArray:
		rv := reflect.ValueOf(v)
		if v == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
			return false, nil
		}
		return withinBounds(r, float64(rv.Len())), nil
	case KindIsObject:
		_, ok := v.(map[string]interface{})
		return ok, nil
	case KindCustom:
		if r.Check == nil {
			return false, fmt.Errorf("custom check without function")
		}
		return r.Check(ctx, v, meta)
	}

	s, ok := toText(v)
	if !ok {
		return false, errNotText
	}

	switch r.Kind {
	case KindIsEmail, KindIsURL, KindIsUUID, KindIsIP, KindIsAlpha, KindIsAlphanumeric:
		return formats.Var(s, formatTags[r.Kind]) == nil, nil
	case KindIsISO8601:
		for _, layout := range iso8601Layouts {
			if _, err := time.Parse(layout, s); err == nil {
				return true, nil
			}
		}
		return false, nil
	case KindIsSemver:
		if !strings.HasPrefix(s, "v") {
			s = "v" + s
		}
		core := strings.SplitN(strings.SplitN(s, "-", 2)[0], "+", 2)[0]
		return semver.IsValid(s) && strings.Count(core, ".") == 2, nil
	case KindIsIn:
		for _, allowed := range r.Values {
			if s == allowed {
				return true, nil
			}
		}
		return false, nil
	case KindIsLength:
		return withinBounds(r, float64(utf8.RuneCountInString(s))), nil
	case KindMatches:
		return r.Pattern != nil && r.Pattern.MatchString(s), nil
	case KindEquals:
		return s == r.Compare, nil
	case KindContains:
		return strings.Contains(s, r.Compare), nil
	}
	return false, fmt.Errorf("unsupported rule %s", r.Kind)
}

// sanitize applies a sanitizer rule and returns the new value
func sanitize(ctx context.Context, r Rule, v interface{}, meta Meta) (interface{}, error) {
	if r.Kind == KindCustomSanitizer {
		if r.Sanitize == nil {
			return v, fmt.Errorf("custom sanitizer without function")
		}
		return r.Sanitize(ctx, v, meta)
	}

	if r.Kind == KindToBoolean {
		if b, ok := v.(bool); ok {
			return b, nil
		}
	}

	s, ok := toText(v)
	if !ok {
		return v, nil
	}

	switch r.Kind {
	case KindTrim:
		if r.Chars == "" {
			return strings.TrimSpace(s), nil
		}
		return strings.Trim(s, r.Chars), nil
	case KindEscape:
		return html.EscapeString(s), nil
	case KindToInt:
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n, nil
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return int(f), nil
		}
		return nil, nil
	case KindToFloat:
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, nil
		}
		return nil, nil
	case KindToBoolean:
		return !(s == "" || s == "0" || s == "false"), nil
	case KindToLowerCase:
		return strings.ToLower(s), nil
	case KindToUpperCase:
		return strings.ToUpper(s), nil
	}
	return v, fmt.Errorf("unsupported sanitizer %s", r.Kind)
}
