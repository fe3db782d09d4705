package validation

import (
	"context"
	"strings"
)

// Guard gates whether a constraint runs at all. It is either a Chain, which
// passes when a dry run of it reports no errors, or a GuardFunc.
type Guard interface {
	String() string
	isGuard()
}

// GuardFunc decides from the current location data whether a constraint
// runs. Sanitizers earlier in the same field have already been applied.
type GuardFunc func(ctx context.Context, input map[string]interface{}, meta Meta) (bool, error)

func (GuardFunc) isGuard() {}

// String implements Guard
func (GuardFunc) String() string {
	return "func"
}

// Chain is an ordered list of constraints for one field path. An empty
// Location resolves to the location of whatever it is compiled against.
type Chain struct {
	Path        string
	Location    Location
	Constraints []Constraint
}

// Field starts a chain for path
func Field(path string, constraints ...Constraint) Chain {
	return Chain{Path: path, Constraints: constraints}
}

// In returns a copy of the chain bound to loc
func (c Chain) In(loc Location) Chain {
	c.Location = loc
	return c
}

// Then returns a copy of the chain with more constraints appended
func (c Chain) Then(constraints ...Constraint) Chain {
	c.Constraints = append(append([]Constraint(nil), c.Constraints...), constraints...)
	return c
}

func (Chain) isGuard() {}

// String implements Guard
func (c Chain) String() string {
	parts := make([]string, len(c.Constraints))
	for i, constraint := range c.Constraints {
		parts[i] = constraint.String()
	}
	prefix := c.Path
	if c.Location != "" {
		prefix = string(c.Location) + "." + c.Path
	}
	return prefix + "[" + strings.Join(parts, ", ") + "]"
}

// OneOfGroup passes when at least one alternative validates completely
type OneOfGroup struct {
	Alternatives [][]Chain
	Message      string
}

// OneOf creates a group from alternatives. An empty message falls back to
// the default invalid value message.
func OneOf(message string, alternatives ...[]Chain) OneOfGroup {
	return OneOfGroup{Alternatives: alternatives, Message: message}
}

// Alt groups chains into a single OneOf alternative
func Alt(chains ...Chain) []Chain {
	return chains
}
