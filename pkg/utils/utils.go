// Package utils holds small reference and id helpers.
package utils

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Noop accepts anything and does nothing
func Noop(...interface{}) {}

// NumberReference returns the current time in milliseconds
func NumberReference() int64 {
	return time.Now().UnixMilli()
}

// UniqueReference returns a random UUID v4
func UniqueReference() string {
	return uuid.NewString()
}

// ShortID returns a lower case, time sortable ULID
func ShortID() string {
	return strings.ToLower(ulid.Make().String())
}

// Random returns a random number with exactly digits digits. digits is
// clamped to [1, 18].
func Random(digits int) int64 {
	digits = min(max(digits, 1), 18)
	low := int64(1)
	for i := 1; i < digits; i++ {
		low *= 10
	}
	return low + rand.Int64N(low*9)
}
