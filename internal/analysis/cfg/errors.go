package cfg

import (
	"github.com/pkg/errors"

	"github.com/gnoverse/ccheck/internal/il"
)

var (
	// ErrInconsistentInput reports malformed input such as a broken handler
	// stack. The enclosing method cannot be analyzed.
	ErrInconsistentInput = errors.New("inconsistent input")

	// ErrUnsupported reports a construct the builder does not model. The
	// method is skipped and the run continues.
	ErrUnsupported = errors.New("unsupported construct")
)

func inconsistent(l il.Label, format string, args ...any) error {
	return errors.Wrapf(ErrInconsistentInput, "at %s: "+format, append([]any{l}, args...)...)
}

func inconsistentMethod(m il.Method, format string, args ...any) error {
	return errors.Wrapf(ErrInconsistentInput, "%s: "+format, append([]any{m}, args...)...)
}

func unsupported(m il.Method, format string, args ...any) error {
	return errors.Wrapf(ErrUnsupported, "%s: "+format, append([]any{m}, args...)...)
}

// IsInconsistent reports whether err was caused by malformed input.
func IsInconsistent(err error) bool {
	return errors.Is(err, ErrInconsistentInput)
}

// IsUnsupported reports whether err was caused by an unsupported construct.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}
