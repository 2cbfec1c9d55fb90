// Package diag is the pipeline's fatal-error type. spec.md §7 states the
// propagation policy plainly: "all errors are fatal and non-recoverable:
// the translator stops at first failure with a diagnostic that names the
// failing construct. No error is retried, no partial output is considered
// valid." Accordingly this package carries exactly one error at a time,
// never a collected list.
package diag

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/martin-neuhaeusser/smartace/internal/srcast"
)

// Kind is one of the three error kinds spec.md §7 names.
type Kind int

const (
	KindUnsupportedConstruct Kind = iota
	KindInvariantViolation
	KindModellingError
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedConstruct:
		return "unsupported construct"
	case KindInvariantViolation:
		return "invariant violation"
	case KindModellingError:
		return "modelling error"
	default:
		return "error"
	}
}

// Error is the single diagnostic the pipeline ever reports. Position is
// the zero value when the failing construct has no source location (e.g.
// a whole-model modelling error such as an empty public interface).
type Error struct {
	Kind     Kind
	Message  string
	Position srcast.Position
}

func (e *Error) Error() string {
	if e.Position.Line == 0 && e.Position.Filename == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Position)
}

// Unsupported reports an always-fatal construct (spec.md §7's long list:
// delete, inline assembly, throw, keccak/sha256/ripemd160/ecrecover,
// logging, gas/value setters, blockhash, array push/pop, `new T[]`, ABI
// encode/decode, multi-value tuples, inline arrays, enum casts,
// fixed-point, string/byte conversions, delegatecall, selfdestruct,
// revert, gasleft, array length).
func Unsupported(pos srcast.Position, construct string) error {
	return errors.WithStack(&Error{
		Kind:     KindUnsupportedConstruct,
		Message:  construct + " is not supported",
		Position: pos,
	})
}

// Invariant reports a violated input invariant (spec.md §7: unresolved
// type, unresolvable identifier, index access on a non-mapping, payment on
// an unsniffable address, a struct/contract constructor call without a
// resolvable name).
func Invariant(pos srcast.Position, what string) error {
	return errors.WithStack(&Error{
		Kind:     KindInvariantViolation,
		Message:  what,
		Position: pos,
	})
}

// Modelling reports a whole-model error (spec.md §7: empty public
// interface, an allocation cycle, unsupported struct invariants).
func Modelling(what string) error {
	return errors.WithStack(&Error{
		Kind:    KindModellingError,
		Message: what,
	})
}

// Wrap adds call-stack context to an existing error without disturbing a
// *Error already at its root, matching spec.md §9's "Result-style return
// plumbed through the converter call stack" design note: every frame
// between the point of failure and the outermost driver adds one layer of
// context, and the driver unwraps back down to the single underlying
// *Error to print its one-line diagnostic.
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return errors.WithMessage(err, context)
}

// As extracts the underlying *Error from a (possibly wrapped) error chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
