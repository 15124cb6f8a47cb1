// Package servofault implements the error taxonomy described in spec.md §7:
// Init, Config, Param, Runtime and IO classes, mirroring the shape of the
// teacher's OD/SDO return-code taxonomy (pkg/od/constants.go's ODR type)
// translated into wrapped, idiomatic Go errors.
package servofault

import (
	"errors"
	"fmt"
)

// Class identifies which part of the taxonomy a failure belongs to.
type Class uint8

const (
	// ClassInit covers master/domain acquisition, activation failure,
	// process-image retrieval.
	ClassInit Class = iota
	// ClassConfig covers PDO program failure, domain registration failure,
	// zero slaves parsed, unrecognized vendor/product with no fallback.
	ClassConfig
	// ClassParam covers null/invalid handle, out-of-range axis index,
	// invalid cycle period.
	ClassParam
	// ClassRuntime covers transient parse errors and unexpected state
	// words inside an otherwise well-formed container.
	ClassRuntime
	// ClassIO covers ENI file not openable / truncated.
	ClassIO
)

func (c Class) String() string {
	switch c {
	case ClassInit:
		return "init"
	case ClassConfig:
		return "config"
	case ClassParam:
		return "param"
	case ClassRuntime:
		return "runtime"
	case ClassIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error is a classified, wrapped failure. Op names the operation that
// failed (e.g. "bootstrap.registerPDOs"), mirroring the bracketed
// service tags the teacher uses in log messages.
type Error struct {
	Class Class
	Op    string
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Class, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", e.Class, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match on Class alone via a zero-value Error{Class: c}.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Err != nil {
		return errors.Is(e.Err, t.Err) && e.Class == t.Class
	}
	return e.Class == t.Class
}

func newErr(class Class, op string, err error) *Error {
	return &Error{Class: class, Op: op, Err: err}
}

// Init wraps err as a ClassInit failure.
func Init(op string, err error) *Error { return newErr(ClassInit, op, err) }

// Config wraps err as a ClassConfig failure.
func Config(op string, err error) *Error { return newErr(ClassConfig, op, err) }

// Param wraps err as a ClassParam failure.
func Param(op string, err error) *Error { return newErr(ClassParam, op, err) }

// Runtime wraps err as a ClassRuntime failure.
func Runtime(op string, err error) *Error { return newErr(ClassRuntime, op, err) }

// IO wraps err as a ClassIO failure.
func IO(op string, err error) *Error { return newErr(ClassIO, op, err) }

// IsClass reports whether err is a *Error of the given class anywhere in its
// chain.
func IsClass(err error, class Class) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Class == class
	}
	return false
}
