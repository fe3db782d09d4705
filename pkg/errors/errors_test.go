package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors_Defaults(t *testing.T) {
	tests := []struct {
		name    string
		err     *BaseError
		status  int
		code    string
		message string
	}{
		{"bad request", NewBadRequest(), http.StatusBadRequest, "BAD_REQUEST_ERROR", "Bad Request."},
		{"invalid argument", NewInvalidArgument(), http.StatusBadRequest, "INVALID_ARGUMENT_ERROR", "Bad Request."},
		{"invalid action", NewInvalidAction(), http.StatusBadRequest, "INVALID_ACTION_ERROR", "Requested action is invalid."},
		{"unauthorized", NewUnauthorized(), http.StatusUnauthorized, "UNAUTHORIZED_ERROR", "Unauthorized."},
		{"forbidden", NewForbidden(), http.StatusForbidden, "FORBIDDEN_ERROR", "Forbidden."},
		{"not found", NewNotFound(), http.StatusNotFound, "NOT_FOUND_ERROR", "Not found."},
		{"conflict", NewConflict(), http.StatusConflict, "CONFLICT_ERROR", "Conflict."},
		{"unprocessable", NewUnprocessableEntity(), http.StatusUnprocessableEntity, "UNPROCESSIBLE_ENTITY_ERROR", "Unprocessible Entity."},
		{"validation", NewValidation(), http.StatusUnprocessableEntity, "INPUT_VALIDATION_ERROR", "One or more fields in supplied input raised validation errors."},
		{"service unavailable", NewServiceUnavailable(), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE_ERROR", "Service Unavailable."},
		{"server", NewServer(), http.StatusInternalServerError, "SERVER_ERROR", "Server Error."},
		{"http", NewHTTP(http.StatusTeapot), http.StatusTeapot, "HTTP_ERROR", "I'm a teapot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode())
			assert.Equal(t, tt.code, tt.err.ErrorCode())
			assert.Equal(t, tt.message, tt.err.Error())
			assert.True(t, tt.err.Loggable)
			assert.True(t, tt.err.Reportable)
		})
	}
}

func TestConstructors_CustomMessage(t *testing.T) {
	err := NewNotFound("user 42 does not exist")
	assert.Equal(t, "user 42 does not exist", err.Message)
}

func TestKindHierarchy(t *testing.T) {
	assert.True(t, stderrors.Is(NewInvalidArgument(), ErrBadRequest))
	assert.True(t, stderrors.Is(NewInvalidAction(), ErrBadRequest))
	assert.True(t, stderrors.Is(NewValidation(), ErrUnprocessableEntity))
	assert.True(t, stderrors.Is(NewNotFound(), ErrApp))
	assert.False(t, stderrors.Is(NewBadRequest(), ErrInvalidArgument))
	assert.False(t, stderrors.Is(NewServer(), ErrNotFound))

	wrapped := fmt.Errorf("loading user: %w", NewNotFound())
	assert.True(t, stderrors.Is(wrapped, ErrNotFound))
}

func TestBuilders(t *testing.T) {
	inner := stderrors.New("connection refused")
	err := NewServiceUnavailable().
		SetCode("CACHE_DOWN").
		SetInfo(map[string]int{"retryIn": 5}).
		SetContext("redis://localhost").
		SetInner(inner).
		SetLoggable(false).
		SetReportable(false).
		SetServiceName("redis")

	assert.Equal(t, "CACHE_DOWN", err.Code)
	assert.Equal(t, "redis", err.ServiceName)
	assert.False(t, err.Loggable)
	assert.False(t, err.Reportable)
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "Service Unavailable.: connection refused", err.Error())
}

func TestFormat(t *testing.T) {
	t.Run("safe props only", func(t *testing.T) {
		err := NewBadRequest().SetInfo("details").SetContext("secret")
		formatted := err.Format(false)

		assert.Equal(t, map[string]interface{}{
			"code":    "BAD_REQUEST_ERROR",
			"message": "Bad Request.",
			"info":    "details",
		}, formatted)
	})

	t.Run("validation adds fields", func(t *testing.T) {
		fields := []map[string]string{{"parameter": "name", "message": "name is required"}}
		formatted := NewValidation().SetFields(fields).Format(false)

		assert.Equal(t, fields, formatted["fields"])
		assert.NotContains(t, formatted, "httpCode")
	})

	t.Run("verbose exposes everything", func(t *testing.T) {
		err := NewServer().SetContext("ctx").SetInner(stderrors.New("boom"))
		formatted := err.Format(true)

		assert.Equal(t, "ServerError", formatted["name"])
		assert.Equal(t, 500, formatted["httpCode"])
		assert.Equal(t, "ctx", formatted["context"])
		assert.Equal(t, "boom", formatted["inner"])
	})
}

func TestHandler_Wrap(t *testing.T) {
	h := NewHandler()

	app := NewConflict()
	assert.Same(t, app, h.Wrap(app))

	plain := stderrors.New("disk full")
	wrapped := h.Wrap(plain)
	require.NotNil(t, wrapped)
	assert.Equal(t, KindServer, wrapped.Kind())
	assert.ErrorIs(t, wrapped, plain)

	nested := fmt.Errorf("outer: %w", NewForbidden())
	assert.Equal(t, KindForbidden, h.Wrap(nested).Kind())

	assert.Nil(t, h.Wrap(nil))
}

func TestHandler_HandleAndFormatEmit(t *testing.T) {
	h := NewHandler()

	var handled []AppError
	var formatted []bool
	h.OnHandle(func(err AppError) { handled = append(handled, err) })
	h.OnFormat(func(_ map[string]interface{}, verbose bool) { formatted = append(formatted, verbose) })

	result := h.Handle(stderrors.New("oops"))
	require.Len(t, handled, 1)
	assert.Same(t, result, handled[0])

	payload := h.Format(NewNotFound(), true)
	inner, ok := payload["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND_ERROR", inner["code"])
	assert.Equal(t, []bool{true}, formatted)
}
