package redis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// MakeKey joins prefix and key with a colon unless prefix is empty or
// already ends with one
func MakeKey(key, prefix string) string {
	if prefix == "" || strings.HasSuffix(prefix, ":") {
		return prefix + key
	}
	return prefix + ":" + key
}

// serialize stores strings and numbers as text and everything else as JSON
func serialize(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", fmt.Errorf("cannot serialize nil value")
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("serialize %T: %w", value, err)
	}
	return string(b), nil
}

// unserialize returns numeric text unchanged, decodes JSON and falls back
// to the raw text
func unserialize(raw string) interface{} {
	if _, err := strconv.ParseFloat(raw, 64); err == nil {
		return raw
	}
	var out interface{}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return raw
	}
	return out
}
