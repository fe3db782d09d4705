package validation

import (
	"fmt"
	"strings"
)

// Validator is a compiled, executable unit bound to a request location.
// It is either a *FieldValidator or a *OneOfValidator.
type Validator interface {
	Location() Location
	String() string
	isValidator()
}

// FieldValidator runs one constraint against one declared field path
type FieldValidator struct {
	location   Location
	path       string
	constraint Constraint
}

// NewFieldValidator binds constraint to path in loc
func NewFieldValidator(loc Location, path string, constraint Constraint) *FieldValidator {
	return &FieldValidator{location: loc, path: path, constraint: constraint}
}

func (*FieldValidator) isValidator() {}

// Location implements Validator
func (v *FieldValidator) Location() Location { return v.location }

// Path returns the declared field path
func (v *FieldValidator) Path() string { return v.path }

// Constraint returns the bound constraint
func (v *FieldValidator) Constraint() Constraint { return v.constraint }

// String implements Validator
func (v *FieldValidator) String() string {
	return fmt.Sprintf("%s.%s: %s", v.location, v.path, v.constraint)
}

// OneOfValidator passes when one of its compiled alternatives passes
type OneOfValidator struct {
	location     Location
	alternatives [][]Validator
	message      string
}

func (*OneOfValidator) isValidator() {}

// Location implements Validator
func (v *OneOfValidator) Location() Location { return v.location }

// Message returns the failure message of the group
func (v *OneOfValidator) Message() string {
	if v.message == "" {
		return DefaultMessage
	}
	return v.message
}

// Alternatives returns the compiled alternatives
func (v *OneOfValidator) Alternatives() [][]Validator { return v.alternatives }

// String implements Validator
func (v *OneOfValidator) String() string {
	alts := make([]string, len(v.alternatives))
	for i, alt := range v.alternatives {
		parts := make([]string, len(alt))
		for j, fv := range alt {
			parts[j] = fv.String()
		}
		alts[i] = "(" + strings.Join(parts, "; ") + ")"
	}
	return fmt.Sprintf("%s.oneOf[%s]: %s", v.location, strings.Join(alts, " | "), v.Message())
}

// CompileChain turns each constraint of chain into a FieldValidator. A chain
// without a location uses defaultLoc.
func CompileChain(chain Chain, defaultLoc Location) []Validator {
	loc := chain.Location
	if loc == "" {
		loc = defaultLoc
	}
	out := make([]Validator, 0, len(chain.Constraints))
	for _, c := range chain.Constraints {
		out = append(out, NewFieldValidator(loc, chain.Path, c))
	}
	return out
}

// CompileChains compiles several chains in order
func CompileChains(chains []Chain, defaultLoc Location) []Validator {
	var out []Validator
	for _, chain := range chains {
		out = append(out, CompileChain(chain, defaultLoc)...)
	}
	return out
}

// CompileOneOf compiles a OneOf group
func CompileOneOf(group OneOfGroup, defaultLoc Location) *OneOfValidator {
	v := &OneOfValidator{location: defaultLoc, message: group.Message}
	for _, alt := range group.Alternatives {
		v.alternatives = append(v.alternatives, CompileChains(alt, defaultLoc))
	}
	return v
}

// Describe returns the string form of every validator, in order
func Describe(validators []Validator) []string {
	out := make([]string, len(validators))
	for i, v := range validators {
		out[i] = v.String()
	}
	return out
}
