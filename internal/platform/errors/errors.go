package errors

import (
	"errors"
	"fmt"
)

// Kind классифицирует ошибку по стадии, на которой она возникла.
type Kind string

const (
	KindCapture  Kind = "capture"
	KindAnalysis Kind = "analysis"
	KindLogging  Kind = "logging"
	KindConfig   Kind = "config"
	KindUnknown  Kind = "unknown"
)

// Error ошибка с типом, операцией и причиной.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Kind, e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Wrap оборачивает err. Уже типизированная ошибка возвращается как есть.
func Wrap(kind Kind, op, message string, err error) *Error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}

	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
		Cause:   err,
	}
}

func New(kind Kind, op, message string) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
	}
}

// IsKind проверяет, есть ли в цепочке ошибка нужного типа.
func IsKind(err error, kind Kind) bool {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind == kind
	}
	return false
}

// KindOf возвращает тип ошибки или KindUnknown.
func KindOf(err error) Kind {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind
	}
	return KindUnknown
}
