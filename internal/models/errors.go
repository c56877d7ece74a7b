package models

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by repositories, services and handlers.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("permission denied")
	ErrValidation = errors.New("validation error")
)

// SchemaError aborts an import before any row is processed.
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.Source, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrValidation }
