package errors

import (
	"fmt"
	"net/http"
)

// AppError defines the interface shared by all application errors
type AppError interface {
	error
	StatusCode() int
	ErrorCode() string
	Kind() Kind
	Format(verbose bool) map[string]interface{}
	Unwrap() error
}

// BaseError provides the common implementation of the AppError interface.
// Class specific data (validation fields, service name) lives on the same
// struct so the builder methods never lose the concrete error class.
type BaseError struct {
	kind        Kind
	HTTPCode    int         // status code sent to the client
	Code        string      // machine readable error code
	Message     string      // client facing message
	Info        interface{} // extra client safe information
	ContextData interface{} // internal context, only exposed in verbose output
	Inner       error       // underlying cause
	Loggable    bool
	Reportable  bool

	Fields      interface{} // validation errors, set on KindValidation
	ServiceName string      // failing service, set on KindServiceUnavailable
}

func newBase(kind Kind, status int, code, defaultMessage string, message []string) *BaseError {
	msg := defaultMessage
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	return &BaseError{
		kind:       kind,
		HTTPCode:   status,
		Code:       code,
		Message:    msg,
		Loggable:   true,
		Reportable: true,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Inner != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Inner)
	}
	return e.Message
}

// Unwrap returns the inner error for error wrapping
func (e *BaseError) Unwrap() error {
	return e.Inner
}

// Is matches class sentinels such as ErrBadRequest against the error's kind
func (e *BaseError) Is(target error) bool {
	if s, ok := target.(*kindSentinel); ok {
		return e.kind.IsA(s.kind)
	}
	return false
}

// StatusCode returns the HTTP status code
func (e *BaseError) StatusCode() int {
	return e.HTTPCode
}

// ErrorCode returns the machine readable error code
func (e *BaseError) ErrorCode() string {
	return e.Code
}

// Kind returns the error class
func (e *BaseError) Kind() Kind {
	return e.kind
}

// Name returns the class name of the error
func (e *BaseError) Name() string {
	return e.kind.String()
}

// SetCode overrides the error code
func (e *BaseError) SetCode(code string) *BaseError {
	e.Code = code
	return e
}

// SetInfo attaches client safe information
func (e *BaseError) SetInfo(info interface{}) *BaseError {
	e.Info = info
	return e
}

// SetContext attaches internal context data
func (e *BaseError) SetContext(ctx interface{}) *BaseError {
	e.ContextData = ctx
	return e
}

// SetInner sets the underlying cause
func (e *BaseError) SetInner(err error) *BaseError {
	e.Inner = err
	return e
}

// SetReportable marks whether the error should be reported
func (e *BaseError) SetReportable(reportable bool) *BaseError {
	e.Reportable = reportable
	return e
}

// SetLoggable marks whether the error should be logged
func (e *BaseError) SetLoggable(loggable bool) *BaseError {
	e.Loggable = loggable
	return e
}

// SetFields attaches the per-field validation errors
func (e *BaseError) SetFields(fields interface{}) *BaseError {
	e.Fields = fields
	return e
}

// SetServiceName records which service is unavailable
func (e *BaseError) SetServiceName(name string) *BaseError {
	e.ServiceName = name
	return e
}

// Format projects the error to a client facing map. With verbose set every
// property is included, otherwise only the safe ones.
func (e *BaseError) Format(verbose bool) map[string]interface{} {
	out := map[string]interface{}{
		"code":    e.Code,
		"message": e.Message,
		"info":    e.Info,
	}
	if e.kind.IsA(KindValidation) {
		out["fields"] = e.Fields
	}
	if !verbose {
		return out
	}

	out["name"] = e.kind.String()
	out["httpCode"] = e.HTTPCode
	out["context"] = e.ContextData
	out["loggable"] = e.Loggable
	out["reportable"] = e.Reportable
	if e.Inner != nil {
		out["inner"] = e.Inner.Error()
	}
	if e.ServiceName != "" {
		out["serviceName"] = e.ServiceName
	}
	return out
}

// NewBadRequest creates a 400 error
func NewBadRequest(message ...string) *BaseError {
	return newBase(KindBadRequest, http.StatusBadRequest, "BAD_REQUEST_ERROR", "Bad Request.", message)
}

// NewInvalidArgument creates a 400 error for a malformed argument
func NewInvalidArgument(message ...string) *BaseError {
	return newBase(KindInvalidArgument, http.StatusBadRequest, "INVALID_ARGUMENT_ERROR", "Bad Request.", message)
}

// NewInvalidArgumentf creates an invalid argument error with a formatted message
func NewInvalidArgumentf(format string, args ...interface{}) *BaseError {
	return NewInvalidArgument(fmt.Sprintf(format, args...))
}

// NewInvalidAction creates a 400 error for an action that is not allowed
func NewInvalidAction(message ...string) *BaseError {
	return newBase(KindInvalidAction, http.StatusBadRequest, "INVALID_ACTION_ERROR", "Requested action is invalid.", message)
}

// NewUnauthorized creates a 401 error
func NewUnauthorized(message ...string) *BaseError {
	return newBase(KindUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED_ERROR", "Unauthorized.", message)
}

// NewForbidden creates a 403 error
func NewForbidden(message ...string) *BaseError {
	return newBase(KindForbidden, http.StatusForbidden, "FORBIDDEN_ERROR", "Forbidden.", message)
}

// NewNotFound creates a 404 error
func NewNotFound(message ...string) *BaseError {
	return newBase(KindNotFound, http.StatusNotFound, "NOT_FOUND_ERROR", "Not found.", message)
}

// NewConflict creates a 409 error
func NewConflict(message ...string) *BaseError {
	return newBase(KindConflict, http.StatusConflict, "CONFLICT_ERROR", "Conflict.", message)
}

// NewUnprocessableEntity creates a 422 error
func NewUnprocessableEntity(message ...string) *BaseError {
	return newBase(KindUnprocessableEntity, http.StatusUnprocessableEntity, "UNPROCESSIBLE_ENTITY_ERROR", "Unprocessible Entity.", message)
}

// NewValidation creates a 422 error carrying per-field errors via SetFields
func NewValidation(message ...string) *BaseError {
	return newBase(KindValidation, http.StatusUnprocessableEntity, "INPUT_VALIDATION_ERROR",
		"One or more fields in supplied input raised validation errors.", message)
}

// NewServiceUnavailable creates a 503 error
func NewServiceUnavailable(message ...string) *BaseError {
	return newBase(KindServiceUnavailable, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE_ERROR", "Service Unavailable.", message)
}

// NewServer creates a 500 error
func NewServer(message ...string) *BaseError {
	return newBase(KindServer, http.StatusInternalServerError, "SERVER_ERROR", "Server Error.", message)
}

// NewHTTP creates an error for an arbitrary status code
func NewHTTP(status int, message ...string) *BaseError {
	return newBase(KindHTTP, status, "HTTP_ERROR", http.StatusText(status), message)
}
