package errors

// Kind identifies the class of an application error. Kinds form a small
// hierarchy: a child kind matches its parent in errors.Is checks.
type Kind int

const (
	KindApp Kind = iota
	KindBadRequest
	KindInvalidArgument
	KindInvalidAction
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUnprocessableEntity
	KindValidation
	KindServiceUnavailable
	KindServer
	KindHTTP
)

var kindParents = map[Kind]Kind{
	KindInvalidArgument: KindBadRequest,
	KindInvalidAction:   KindBadRequest,
	KindValidation:      KindUnprocessableEntity,
}

// String returns the class name of the kind
func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "BadRequestError"
	case KindInvalidArgument:
		return "InvalidArgumentError"
	case KindInvalidAction:
		return "InvalidActionError"
	case KindUnauthorized:
		return "UnauthorizedError"
	case KindForbidden:
		return "ForbiddenError"
	case KindNotFound:
		return "NotFoundError"
	case KindConflict:
		return "ConflictError"
	case KindUnprocessableEntity:
		return "UnprocessableEntityError"
	case KindValidation:
		return "ValidationError"
	case KindServiceUnavailable:
		return "ServiceUnavailableError"
	case KindServer:
		return "ServerError"
	case KindHTTP:
		return "HttpError"
	default:
		return "AppError"
	}
}

// IsA reports whether k is the same kind as other or descends from it.
// Every kind descends from KindApp.
func (k Kind) IsA(other Kind) bool {
	if other == KindApp {
		return true
	}
	for cur := k; ; {
		if cur == other {
			return true
		}
		parent, ok := kindParents[cur]
		if !ok {
			return false
		}
		cur = parent
	}
}

// kindSentinel is a comparable marker used with errors.Is
type kindSentinel struct {
	kind Kind
}

func (s *kindSentinel) Error() string {
	return s.kind.String()
}

// Sentinels for errors.Is checks against a class of errors.
var (
	ErrApp                 error = &kindSentinel{KindApp}
	ErrBadRequest          error = &kindSentinel{KindBadRequest}
	ErrInvalidArgument     error = &kindSentinel{KindInvalidArgument}
	ErrInvalidAction       error = &kindSentinel{KindInvalidAction}
	ErrUnauthorized        error = &kindSentinel{KindUnauthorized}
	ErrForbidden           error = &kindSentinel{KindForbidden}
	ErrNotFound            error = &kindSentinel{KindNotFound}
	ErrConflict            error = &kindSentinel{KindConflict}
	ErrUnprocessableEntity error = &kindSentinel{KindUnprocessableEntity}
	ErrValidation          error = &kindSentinel{KindValidation}
	ErrServiceUnavailable  error = &kindSentinel{KindServiceUnavailable}
	ErrServer              error = &kindSentinel{KindServer}
	ErrHTTP                error = &kindSentinel{KindHTTP}
)
