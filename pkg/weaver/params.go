package weaver

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// ParamParser converts a raw path parameter into a typed value
type ParamParser func(raw string) (interface{}, error)

var (
	paramParsersMu sync.RWMutex
	paramParsers   = map[string]ParamParser{
		"string":  ParseString,
		"int":     ParseInt,
		"int64":   ParseInt64,
		"float64": ParseFloat64,
		"float32": ParseFloat32,
		"bool":    ParseBool,
		"uuid":    ParseUUID,
	}
)

// ParamAliases maps convenient aliases to their parser names
var ParamAliases = map[string]string{
	"UUID":      "uuid",
	"uuid.UUID": "uuid",
	"float":     "float64",
	"double":    "float64",
	"integer":   "int",
	"boolean":   "bool",
}

// ParseString returns the parameter as-is
func ParseString(raw string) (interface{}, error) {
	return raw, nil
}

// ParseInt parses an int parameter
func ParseInt(raw string) (interface{}, error) {
	return strconv.Atoi(raw)
}

// ParseInt64 parses an int64 parameter
func ParseInt64(raw string) (interface{}, error) {
	return strconv.ParseInt(raw, 10, 64)
}

// ParseFloat64 parses a float64 parameter
func ParseFloat64(raw string) (interface{}, error) {
	return strconv.ParseFloat(raw, 64)
}

// ParseFloat32 parses a float32 parameter
func ParseFloat32(raw string) (interface{}, error) {
	val, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return nil, err
	}
	return float32(val), nil
}

// ParseBool parses a bool parameter
func ParseBool(raw string) (interface{}, error) {
	return strconv.ParseBool(raw)
}

// ParseUUID parses a uuid.UUID parameter
func ParseUUID(raw string) (interface{}, error) {
	return uuid.Parse(raw)
}

// RegisterParamParser adds or replaces the parser for a parameter type
func RegisterParamParser(typeName string, parser ParamParser) {
	paramParsersMu.Lock()
	defer paramParsersMu.Unlock()
	paramParsers[typeName] = parser
}

// LookupParamParser returns the parser for typeName, checking aliases first
func LookupParamParser(typeName string) (ParamParser, bool) {
	if actual, ok := ParamAliases[typeName]; ok {
		typeName = actual
	}
	paramParsersMu.RLock()
	defer paramParsersMu.RUnlock()
	parser, ok := paramParsers[typeName]
	return parser, ok
}

// ParseParam converts raw using the parser registered for typeName
func ParseParam(typeName, raw string) (interface{}, error) {
	if typeName == "" {
		return raw, nil
	}
	parser, ok := LookupParamParser(typeName)
	if !ok {
		return nil, fmt.Errorf("no parser registered for parameter type %q", typeName)
	}
	return parser(raw)
}
