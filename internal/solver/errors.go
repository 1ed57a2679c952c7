package solver

import "fmt"

// ErrorKind classifies solver errors.
type ErrorKind int

const (
	// InputError flags malformed problem data.
	InputError ErrorKind = iota
	// RoutingError flags a failure of the matrix provider.
	RoutingError
	// InternalError flags an invariant violation; it is always a bug.
	InternalError
)

func (k ErrorKind) String() string {
	switch k {
	case InputError:
		return "input"
	case RoutingError:
		return "routing"
	case InternalError:
		return "internal"
	}
	return "unknown"
}

// Error carries a kind so callers can map it to the right boundary response.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Kind.String() + " error: " + e.Message
}

func errInput(format string, args ...any) *Error {
	return &Error{Kind: InputError, Message: fmt.Sprintf(format, args...)}
}
