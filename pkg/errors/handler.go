package errors

import (
	stderrors "errors"
	"sync"
)

// HandleListener receives every error passed through Handler.Handle
type HandleListener func(err AppError)

// FormatListener receives every formatted error produced by Handler.Format
type FormatListener func(formatted map[string]interface{}, verbose bool)

// Handler coerces arbitrary errors into application errors and formats them
// for clients.
type Handler struct {
	mu       sync.RWMutex
	onHandle []HandleListener
	onFormat []FormatListener
}

// NewHandler creates a new error handler
func NewHandler() *Handler {
	return &Handler{}
}

// OnHandle registers a listener for handled errors
func (h *Handler) OnHandle(fn HandleListener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onHandle = append(h.onHandle, fn)
}

// OnFormat registers a listener for formatted errors
func (h *Handler) OnFormat(fn FormatListener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onFormat = append(h.onFormat, fn)
}

// Wrap returns err unchanged when it already is an AppError, otherwise it
// wraps it into a ServerError.
func (h *Handler) Wrap(err error) AppError {
	if err == nil {
		return nil
	}
	var app AppError
	if stderrors.As(err, &app) {
		return app
	}
	return NewServer().SetInner(err)
}

// Handle wraps err and notifies the handle listeners
func (h *Handler) Handle(err error) AppError {
	wrapped := h.Wrap(err)
	if wrapped == nil {
		return nil
	}

	h.mu.RLock()
	listeners := append([]HandleListener(nil), h.onHandle...)
	h.mu.RUnlock()

	for _, fn := range listeners {
		fn(wrapped)
	}
	return wrapped
}

// Format wraps err and returns the client payload {"error": ...}
func (h *Handler) Format(err error, verbose bool) map[string]interface{} {
	wrapped := h.Wrap(err)
	if wrapped == nil {
		return map[string]interface{}{"error": nil}
	}
	formatted := wrapped.Format(verbose)

	h.mu.RLock()
	listeners := append([]FormatListener(nil), h.onFormat...)
	h.mu.RUnlock()

	for _, fn := range listeners {
		fn(formatted, verbose)
	}
	return map[string]interface{}{"error": formatted}
}

// DefaultHandler is the process wide error handler
var DefaultHandler = NewHandler()

// Wrap coerces err with the default handler
func Wrap(err error) AppError {
	return DefaultHandler.Wrap(err)
}
