package plugins

import "errors"

var (
	// ErrInvalidArgument matches every rejected argument, including lookups of
	// names that are not registered.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound matches lookups of names that are not registered.
	ErrNotFound = errors.New("plugin not found")
	// ErrLoad matches every failure of Loader.Load.
	ErrLoad = errors.New("plugin load failed")
)

// ArgumentError carries the exact message of a rejected argument.
type ArgumentError struct {
	msg      string
	notFound bool
}

// NewArgumentError returns an error matching ErrInvalidArgument with msg as its text.
func NewArgumentError(msg string) error {
	return &ArgumentError{msg: msg}
}

func newNotFoundError(msg string) error {
	return &ArgumentError{msg: msg, notFound: true}
}

func (e *ArgumentError) Error() string {
	return e.msg
}

func (e *ArgumentError) Is(target error) bool {
	switch target {
	case ErrInvalidArgument:
		return true
	case ErrNotFound:
		return e.notFound
	}
	return false
}

// LoadError reports why a type could not be loaded as a plugin.
type LoadError struct {
	TypeName string
	Err      error

	msg string
}

func (e *LoadError) Error() string {
	return e.msg
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func (e *LoadError) Is(target error) bool {
	return target == ErrLoad
}
