package service

import (
	"errors"
	"fmt"
	"sort"
)

// NotFoundError is returned when a referenced record does not exist.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " no encontrado" }

// ValidationError carries field → message pairs for malformed input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "datos invalidos"
	}
	keys := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		keys = append(keys, f)
	}
	sort.Strings(keys)
	return fmt.Sprintf("%s: %s", keys[0], e.Fields[keys[0]])
}

// InsufficientStockError is returned when a sale asks for more units than available.
type InsufficientStockError struct {
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Stock insuficiente. Disponible: %d, Solicitado: %d", e.Available, e.Requested)
}

// ConstraintViolationError is returned when a delete is blocked by dependent rows.
type ConstraintViolationError struct {
	Detail string
}

func (e *ConstraintViolationError) Error() string { return e.Detail }

func notFound(resource string) error { return &NotFoundError{Resource: resource} }

func invalid(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
