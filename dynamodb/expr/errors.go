package expr

import (
	"errors"
	"fmt"
)

// Kinds of validation failure. Match them with errors.Is.
var (
	ErrShape               = errors.New("invalid shape")
	ErrArity               = errors.New("invalid arity")
	ErrUnsupportedOperator = errors.New("unsupported operator")
	ErrAliasCollision      = errors.New("alias collision")
)

// ValidationError is returned when a condition specification or an operand is malformed.
// Subject is the offending attribute path, operator or combinator name.
type ValidationError struct {
	Kind    error
	Subject string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Kind, e.Subject, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

func ShapeError(subject, format string, args ...any) error {
	return &ValidationError{Kind: ErrShape, Subject: subject, Reason: fmt.Sprintf(format, args...)}
}

func ArityError(subject, format string, args ...any) error {
	return &ValidationError{Kind: ErrArity, Subject: subject, Reason: fmt.Sprintf(format, args...)}
}

func UnsupportedOperatorError(subject, format string, args ...any) error {
	return &ValidationError{Kind: ErrUnsupportedOperator, Subject: subject, Reason: fmt.Sprintf(format, args...)}
}

func AliasCollisionError(alias string) error {
	return &ValidationError{Kind: ErrAliasCollision, Subject: alias, Reason: "alias is already bound in the receiving expression"}
}
