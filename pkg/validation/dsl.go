package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ruleList is the root of a rule expression such as
// `required, isLength(min=2, max=20), !contains('admin')`
type ruleList struct {
	Rules []*ruleExpr `parser:"(@@ ((',' | '|') @@)*)?"`
}

type ruleExpr struct {
	Not  bool       `parser:"@'!'?"`
	Name string     `parser:"@Ident"`
	Args []*ruleArg `parser:"('(' (@@ (',' @@)*)? ')')?"`
}

type ruleArg struct {
	Key   string     `parser:"(@Ident '=')?"`
	Value *ruleValue `parser:"@@"`
}

type ruleValue struct {
	String *string  `parser:"  @String"`
	Number *float64 `parser:"| @Number"`
	Ident  *string  `parser:"| @Ident"`
}

func (v *ruleValue) text() string {
	switch {
	case v.String != nil:
		return unquote(*v.String)
	case v.Number != nil:
		return strconv.FormatFloat(*v.Number, 'f', -1, 64)
	case v.Ident != nil:
		return *v.Ident
	}
	return ""
}

func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	quote := s[0]
	body := s[1 : len(s)-1]
	return strings.ReplaceAll(body, `\`+string(quote), string(quote))
}

var ruleParser = participle.MustBuild[ruleList](
	participle.Lexer(lexer.MustSimple([]lexer.SimpleRule{
		{Name: "String", Pattern: `"(\\"|[^"])*"|'(\\'|[^'])*'`},
		{Name: "Number", Pattern: `-?[0-9]+(\.[0-9]+)?`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "Punct", Pattern: `[(),|!=]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// ruleArgs splits parsed arguments into positional and named values
type ruleArgs struct {
	positional []string
	named      map[string]string
}

func (a ruleArgs) bound(name string, pos int) (*float64, error) {
	raw, ok := a.named[name]
	if !ok {
		if pos >= len(a.positional) {
			return nil, nil
		}
		raw = a.positional[pos]
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number, got %q", name, raw)
	}
	return &f, nil
}

func (a ruleArgs) first(name string) (string, bool) {
	if v, ok := a.named[name]; ok {
		return v, true
	}
	if len(a.positional) > 0 {
		return a.positional[0], true
	}
	return "", false
}

type ruleBuilder func(args ruleArgs) (Constraint, error)

func simple(c func() Constraint) ruleBuilder {
	return func(ruleArgs) (Constraint, error) { return c(), nil }
}

func withBounds(c func(...Bound) Constraint) ruleBuilder {
	return func(args ruleArgs) (Constraint, error) {
		var bounds []Bound
		lo, err := args.bound("min", 0)
		if err != nil {
			return Constraint{}, err
		}
		hi, err := args.bound("max", 1)
		if err != nil {
			return Constraint{}, err
		}
		if lo != nil {
			bounds = append(bounds, Min(*lo))
		}
		if hi != nil {
			bounds = append(bounds, Max(*hi))
		}
		return c(bounds...), nil
	}
}

func withText(name string, c func(string) Constraint) ruleBuilder {
	return func(args ruleArgs) (Constraint, error) {
		s, ok := args.first(name)
		if !ok {
			return Constraint{}, fmt.Errorf("missing argument %q", name)
		}
		return c(s), nil
	}
}

var builtinRules = map[string]ruleBuilder{
	"required":       simple(Required),
	"exists":         simple(Exists),
	"optional":       simple(Optional),
	"notempty":       simple(NotEmpty),
	"isstring":       simple(IsString),
	"isnumeric":      simple(IsNumeric),
	"isint":          withBounds(IsInt),
	"isfloat":        withBounds(IsFloat),
	"isboolean":      simple(IsBoolean),
	"isemail":        simple(IsEmail),
	"isurl":          simple(IsURL),
	"isuuid":         simple(IsUUID),
	"isip":           simple(IsIP),
	"isalpha":        simple(IsAlpha),
	"isalphanumeric": simple(IsAlphanumeric),
	"isiso8601":      simple(IsISO8601),
	"issemver":       simple(IsSemver),
	"islength":       withBounds(IsLength),
	"isarray":        withBounds(IsArray),
	"isobject":       simple(IsObject),
	"equals":         withText("value", Equals),
	"contains":       withText("value", Contains),
	"escape":         simple(Escape),
	"toint":          simple(ToInt),
	"tofloat":        simple(ToFloat),
	"toboolean":      simple(ToBoolean),
	"tolowercase":    simple(ToLowerCase),
	"touppercase":    simple(ToUpperCase),
	"isin": func(args ruleArgs) (Constraint, error) {
		if len(args.positional) == 0 {
			return Constraint{}, fmt.Errorf("isIn needs at least one value")
		}
		return IsIn(args.positional...), nil
	},
	"matches": func(args ruleArgs) (Constraint, error) {
		pattern, ok := args.first("pattern")
		if !ok {
			return Constraint{}, fmt.Errorf("missing argument \"pattern\"")
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return Constraint{}, err
		}
		return Matches(re), nil
	},
	"trim": func(args ruleArgs) (Constraint, error) {
		if chars, ok := args.first("chars"); ok {
			return Trim(chars), nil
		}
		return Trim(), nil
	},
}

var (
	customMu         sync.RWMutex
	customChecks     = map[string]CheckFunc{}
	customSanitizers = map[string]SanitizeFunc{}
)

// RegisterCheck makes fn available to rule expressions under name
func RegisterCheck(name string, fn CheckFunc) {
	customMu.Lock()
	defer customMu.Unlock()
	customChecks[strings.ToLower(name)] = fn
}

// RegisterSanitizer makes fn available to rule expressions under name
func RegisterSanitizer(name string, fn SanitizeFunc) {
	customMu.Lock()
	defer customMu.Unlock()
	customSanitizers[strings.ToLower(name)] = fn
}

func lookupRule(name string) (ruleBuilder, bool) {
	key := strings.ToLower(name)
	if b, ok := builtinRules[key]; ok {
		return b, true
	}

	customMu.RLock()
	defer customMu.RUnlock()
	if fn, ok := customChecks[key]; ok {
		return func(ruleArgs) (Constraint, error) { return Custom(fn), nil }, true
	}
	if fn, ok := customSanitizers[key]; ok {
		return func(ruleArgs) (Constraint, error) { return CustomSanitizer(fn), nil }, true
	}
	return nil, false
}

// ParseRules parses a rule expression into constraints. Rules are
// separated by commas or pipes, take positional or named arguments, and
// may be negated with a leading "!". The named argument "message" sets the
// failure message of any rule.
func ParseRules(expr string) ([]Constraint, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}

	list, err := ruleParser.ParseString("", expr)
	if err != nil {
		return nil, fmt.Errorf("parse rules %q: %w", expr, err)
	}

	out := make([]Constraint, 0, len(list.Rules))
	for _, r := range list.Rules {
		build, ok := lookupRule(r.Name)
		if !ok {
			return nil, fmt.Errorf("unknown rule %q in %q", r.Name, expr)
		}

		args := ruleArgs{named: map[string]string{}}
		for _, a := range r.Args {
			if a.Key != "" {
				args.named[a.Key] = a.Value.text()
			} else {
				args.positional = append(args.positional, a.Value.text())
			}
		}

		c, err := build(args)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.Name, err)
		}
		if msg, ok := args.named["message"]; ok {
			c = c.WithMessage(msg)
		}
		if r.Not {
			c = c.Not()
		}
		out = append(out, c)
	}
	return out, nil
}

// MustParseRules is like ParseRules but panics on error
func MustParseRules(expr string) []Constraint {
	constraints, err := ParseRules(expr)
	if err != nil {
		panic(err)
	}
	return constraints
}
