// Package domain defines core types, interfaces, and errors for the table client.
package domain

import "fmt"

// StoreError wraps a failure reported by the backing store while running one
// operation. Op names the operation, Table the qualified table reference.
type StoreError struct {
	Op    string
	Table string
	Err   error
}

func (e *StoreError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ValidationError indicates invalid input supplied by a caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrStore creates a StoreError for op against table.
func ErrStore(op, table string, err error) *StoreError {
	return &StoreError{Op: op, Table: table, Err: err}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
