package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/elysian/registration-service/pkg/validation"
)

// Outcomes surfaced by the auth service. Collaborator failures never appear here.
var (
	ErrValidation       = errors.New("validation failed")
	ErrConflict         = errors.New("email already registered")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

// ValidationError lists the offending fields. It matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func validate(in any) error {
	if err := validation.Struct(in); err != nil {
		return &ValidationError{Fields: validation.ToDetails(err)}
	}
	return nil
}

func storeUnavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
