package weaver

import (
	"strings"
)

// PathPartType represents the type of path part
type PathPartType int

const (
	StaticPart PathPartType = iota
	ParameterPart
	WildcardPart
)

// PathPart represents a single part of a route path
type PathPart struct {
	Type      PathPartType
	Value     string // For static parts: the literal text, for parameters: the parameter name
	ParamType string // For parameters: the type (e.g., "int", "uuid"), empty for untyped
}

// Path is a route path using {name} and {name:type} placeholders and {*}
// for a trailing wildcard
type Path string

// NewPath creates a new Path from a string
func NewPath(path string) Path {
	return Path(path)
}

// Raw returns the original path
func (p Path) Raw() string {
	return string(p)
}

// Parts parses the path and returns the individual parts
func (p Path) Parts() []PathPart {
	path := string(p)
	var parts []PathPart

	i := 0
	for i < len(path) {
		if path[i] != '{' {
			start := i
			for i < len(path) && path[i] != '{' {
				i++
			}
			parts = append(parts, PathPart{Type: StaticPart, Value: path[start:i]})
			continue
		}

		j := strings.IndexByte(path[i:], '}')
		if j == -1 {
			// unterminated, keep as static text
			parts = append(parts, PathPart{Type: StaticPart, Value: path[i:]})
			break
		}
		content := path[i+1 : i+j]
		i += j + 1

		if content == "*" {
			parts = append(parts, PathPart{Type: WildcardPart, Value: "*"})
			continue
		}

		name, typ := content, ""
		if colon := strings.Index(content, ":"); colon != -1 {
			name, typ = content[:colon], content[colon+1:]
		}
		parts = append(parts, PathPart{Type: ParameterPart, Value: name, ParamType: typ})
	}

	return parts
}

// ParamTypes maps each typed parameter to its declared type
func (p Path) ParamTypes() map[string]string {
	types := make(map[string]string)
	for _, part := range p.Parts() {
		if part.Type == ParameterPart && part.ParamType != "" {
			types[part.Value] = part.ParamType
		}
	}
	return types
}

// ColonPath renders the path in the :name syntax shared by gin, echo and
// fiber. wildcard replaces {*}.
func (p Path) ColonPath(wildcard string) string {
	var b strings.Builder
	for _, part := range p.Parts() {
		switch part.Type {
		case ParameterPart:
			b.WriteString(":" + part.Value)
		case WildcardPart:
			b.WriteString(wildcard)
		default:
			b.WriteString(part.Value)
		}
	}
	out := b.String()
	if out == "" {
		return "/"
	}
	return out
}

// JoinPaths joins route paths with exactly one slash between segments.
// The result always starts with a slash and never ends with one unless it
// is the root.
func JoinPaths(paths ...string) string {
	var segments []string
	for _, p := range paths {
		p = strings.Trim(p, "/")
		if p != "" {
			segments = append(segments, p)
		}
	}
	return "/" + strings.Join(segments, "/")
}

// NormalizeMountPath adds the leading slash to a mount key when missing
func NormalizeMountPath(key string) string {
	if strings.HasPrefix(key, "/") {
		return key
	}
	return "/" + key
}
