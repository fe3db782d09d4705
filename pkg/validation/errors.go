package validation

import "fmt"

const (
	// DefaultMessage is reported by failing checks without a custom message
	DefaultMessage = "Invalid value"
	// InvalidTypeMessage is reported when a value cannot be read as text
	InvalidTypeMessage = "Invalid type"
	// OneOfParam is the parameter name of a failed OneOf group
	OneOfParam = "_error"
)

// FieldError is a single failed check
type FieldError struct {
	Location Location     `json:"location"`
	Param    string       `json:"param"`
	Message  string       `json:"msg"`
	Value    interface{}  `json:"value,omitempty"`
	Nested   []FieldError `json:"nestedErrors,omitempty"`
}

// Error implements the error interface
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Param, e.Message)
}

// requiredMessage builds "<name> is required" from the last path key
func requiredMessage(keys []pathKey) string {
	for i := len(keys) - 1; i >= 0; i-- {
		if !keys[i].isIndex {
			return keys[i].name + " is required"
		}
	}
	return "value is required"
}
