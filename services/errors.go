package services

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure by the collaborator that caused it.
type Kind string

const (
	KindInvalidInput Kind = "invalid_input"
	KindEmbedding    Kind = "embedding_service_error"
	KindIndex        Kind = "index_service_error"
	KindGeneration   Kind = "generation_service_error"
	KindRecordStore  Kind = "record_store_error"
)

// ServiceError wraps a collaborator failure with its kind and the operation
// that hit it. Every pipeline step fails closed: the error is surfaced to
// the caller, never swallowed and replaced with a default value.
type ServiceError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *ServiceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// E builds a ServiceError.
func E(kind Kind, op string, err error) error {
	return &ServiceError{Kind: kind, Op: op, Err: err}
}

// Errorf builds a ServiceError from a formatted message.
func Errorf(kind Kind, op, format string, args ...any) error {
	return &ServiceError{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the error kind, or "" for non-service errors.
func KindOf(err error) Kind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
