package validation

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Location is the part of a request a field is read from
type Location string

const (
	Body    Location = "body"
	Query   Location = "query"
	Params  Location = "params"
	Headers Location = "headers"
)

// ParseLocation converts a string to a Location
func ParseLocation(s string) (Location, error) {
	switch loc := Location(strings.ToLower(s)); loc {
	case Body, Query, Params, Headers:
		return loc, nil
	}
	return "", fmt.Errorf("unknown request location %q", s)
}

// RuleKind enumerates the built-in checks and sanitizers
type RuleKind int

const (
	KindRequired RuleKind = iota
	KindOptional
	KindNotEmpty
	KindIsString
	KindIsNumeric
	KindIsInt
	KindIsFloat
	KindIsBoolean
	KindIsEmail
	KindIsURL
	KindIsUUID
	KindIsIP
	KindIsAlpha
	KindIsAlphanumeric
	KindIsISO8601
	KindIsSemver
	KindIsIn
	KindIsLength
	KindMatches
	KindIsArray
	KindIsObject
	KindEquals
	KindContains
	KindCustom

	// sanitizers
	KindTrim
	KindEscape
	KindToInt
	KindToFloat
	KindToBoolean
	KindToLowerCase
	KindToUpperCase
	KindCustomSanitizer
)

var kindNames = map[RuleKind]string{
	KindRequired:        "required",
	KindOptional:        "optional",
	KindNotEmpty:        "notEmpty",
	KindIsString:        "isString",
	KindIsNumeric:       "isNumeric",
	KindIsInt:           "isInt",
	KindIsFloat:         "isFloat",
	KindIsBoolean:       "isBoolean",
	KindIsEmail:         "isEmail",
	KindIsURL:           "isURL",
	KindIsUUID:          "isUUID",
	KindIsIP:            "isIP",
	KindIsAlpha:         "isAlpha",
	KindIsAlphanumeric:  "isAlphanumeric",
	KindIsISO8601:       "isISO8601",
	KindIsSemver:        "isSemver",
	KindIsIn:            "isIn",
	KindIsLength:        "isLength",
	KindMatches:         "matches",
	KindIsArray:         "isArray",
	KindIsObject:        "isObject",
	KindEquals:          "equals",
	KindContains:        "contains",
	KindCustom:          "custom",
	KindTrim:            "trim",
	KindEscape:          "escape",
	KindToInt:           "toInt",
	KindToFloat:         "toFloat",
	KindToBoolean:       "toBoolean",
	KindToLowerCase:     "toLowerCase",
	KindToUpperCase:     "toUpperCase",
	KindCustomSanitizer: "customSanitizer",
}

// String returns the rule name as used in rule expressions
func (k RuleKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("RuleKind(%d)", int(k))
}

// IsSanitizer reports whether the kind transforms the value
func (k RuleKind) IsSanitizer() bool {
	return k >= KindTrim
}

// Meta describes the field being validated to custom functions
type Meta struct {
	Location Location
	Path     string
	Request  interface{}
}

// CheckFunc is a custom predicate. Returning an error fails the field with
// the error text as message.
type CheckFunc func(ctx context.Context, value interface{}, meta Meta) (bool, error)

// SanitizeFunc transforms a field value
type SanitizeFunc func(ctx context.Context, value interface{}, meta Meta) (interface{}, error)

// Rule is one built-in or custom check or sanitizer with its arguments
type Rule struct {
	Kind     RuleKind
	Min      *float64
	Max      *float64
	Values   []string
	Pattern  *regexp.Regexp
	Compare  string
	Chars    string
	Check    CheckFunc
	Sanitize SanitizeFunc
}

// String returns a readable form of the rule
func (r Rule) String() string {
	var args []string
	if r.Min != nil {
		args = append(args, fmt.Sprintf("min=%v", *r.Min))
	}
	if r.Max != nil {
		args = append(args, fmt.Sprintf("max=%v", *r.Max))
	}
	if len(r.Values) > 0 {
		args = append(args, strings.Join(r.Values, "|"))
	}
	if r.Pattern != nil {
		args = append(args, r.Pattern.String())
	}
	if r.Compare != "" {
		args = append(args, r.Compare)
	}
	if r.Chars != "" {
		args = append(args, r.Chars)
	}
	if len(args) == 0 {
		return r.Kind.String()
	}
	return r.Kind.String() + "(" + strings.Join(args, ", ") + ")"
}

// Constraint is a rule with an optional message, negation and guard
type Constraint struct {
	Rule    Rule
	Message string
	Negate  bool
	Guard   Guard
}

// WithMessage returns a copy of the constraint using message on failure
func (c Constraint) WithMessage(message string) Constraint {
	c.Message = message
	return c
}

// Not returns a copy of the constraint with the check negated
func (c Constraint) Not() Constraint {
	c.Negate = !c.Negate
	return c
}

// If returns a copy of the constraint that only runs when guard passes
func (c Constraint) If(guard Guard) Constraint {
	c.Guard = guard
	return c
}

// String returns a readable form of the constraint
func (c Constraint) String() string {
	s := c.Rule.String()
	if c.Negate {
		s = "!" + s
	}
	if c.Guard != nil {
		s += " if " + c.Guard.String()
	}
	return s
}

func rule(kind RuleKind) Constraint {
	return Constraint{Rule: Rule{Kind: kind}}
}

// Bound restricts numeric value or length ranges
type Bound func(r *Rule)

// Min sets the lower bound
func Min(v float64) Bound {
	return func(r *Rule) { r.Min = &v }
}

// Max sets the upper bound
func Max(v float64) Bound {
	return func(r *Rule) { r.Max = &v }
}

func bounded(kind RuleKind, bounds []Bound) Constraint {
	c := rule(kind)
	for _, b := range bounds {
		b(&c.Rule)
	}
	return c
}

// Required fails when the field is missing, null or an empty string
func Required() Constraint { return rule(KindRequired) }

// Exists is an alias of Required
func Exists() Constraint { return Required() }

// Optional skips every constraint of the field when it is missing or null
func Optional() Constraint { return rule(KindOptional) }

// NotEmpty fails on empty strings, arrays and objects
func NotEmpty() Constraint { return rule(KindNotEmpty) }

// IsString requires a string value
func IsString() Constraint { return rule(KindIsString) }

// IsNumeric requires a number or a numeric string
func IsNumeric() Constraint { return rule(KindIsNumeric) }

// IsInt requires an integer within the optional bounds
func IsInt(bounds ...Bound) Constraint { return bounded(KindIsInt, bounds) }

// IsFloat requires a number within the optional bounds
func IsFloat(bounds ...Bound) Constraint { return bounded(KindIsFloat, bounds) }

// IsBoolean requires a boolean or one of "true", "false", "1", "0"
func IsBoolean() Constraint { return rule(KindIsBoolean) }

// IsEmail requires an email address
func IsEmail() Constraint { return rule(KindIsEmail) }

// IsURL requires an absolute URL
func IsURL() Constraint { return rule(KindIsURL) }

// IsUUID requires a UUID
func IsUUID() Constraint { return rule(KindIsUUID) }

// IsIP requires an IPv4 or IPv6 address
func IsIP() Constraint { return rule(KindIsIP) }

// IsAlpha requires letters only
func IsAlpha() Constraint { return rule(KindIsAlpha) }

// IsAlphanumeric requires letters and digits only
func IsAlphanumeric() Constraint { return rule(KindIsAlphanumeric) }

// IsISO8601 requires an ISO 8601 date or date-time
func IsISO8601() Constraint { return rule(KindIsISO8601) }

// IsSemver requires a semantic version, with or without a leading v
func IsSemver() Constraint { return rule(KindIsSemver) }

// IsIn requires the value to equal one of values
func IsIn(values ...string) Constraint {
	c := rule(KindIsIn)
	c.Rule.Values = values
	return c
}

// IsLength requires a string length within the bounds
func IsLength(bounds ...Bound) Constraint { return bounded(KindIsLength, bounds) }

// Matches requires the value to match pattern
func Matches(pattern *regexp.Regexp) Constraint {
	c := rule(KindMatches)
	c.Rule.Pattern = pattern
	return c
}

// IsArray requires an array with a length within the optional bounds
func IsArray(bounds ...Bound) Constraint { return bounded(KindIsArray, bounds) }

// IsObject requires an object value
func IsObject() Constraint { return rule(KindIsObject) }

// Equals requires the string form of the value to equal s
func Equals(s string) Constraint {
	c := rule(KindEquals)
	c.Rule.Compare = s
	return c
}

// Contains requires the string form of the value to contain s
func Contains(s string) Constraint {
	c := rule(KindContains)
	c.Rule.Compare = s
	return c
}

// Custom runs fn as a predicate
func Custom(fn CheckFunc) Constraint {
	c := rule(KindCustom)
	c.Rule.Check = fn
	return c
}

// Trim removes chars (whitespace when empty) from both ends
func Trim(chars ...string) Constraint {
	c := rule(KindTrim)
	c.Rule.Chars = strings.Join(chars, "")
	return c
}

// Escape replaces HTML special characters with entities
func Escape() Constraint { return rule(KindEscape) }

// ToInt converts the value to an int, or nil when it cannot
func ToInt() Constraint { return rule(KindToInt) }

// ToFloat converts the value to a float64, or nil when it cannot
func ToFloat() Constraint { return rule(KindToFloat) }

// ToBoolean converts the value to a bool. "0", "false" and "" are false.
func ToBoolean() Constraint { return rule(KindToBoolean) }

// ToLowerCase lower-cases the value
func ToLowerCase() Constraint { return rule(KindToLowerCase) }

// ToUpperCase upper-cases the value
func ToUpperCase() Constraint { return rule(KindToUpperCase) }

// CustomSanitizer runs fn to transform the value
func CustomSanitizer(fn SanitizeFunc) Constraint {
	c := rule(KindCustomSanitizer)
	c.Rule.Sanitize = fn
	return c
}
