// Package apperror defines the error taxonomy shared by the funnel store, the
// submission pipeline and the HTTP layer.
package apperror

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Resolution errors. Callers outside the service must not be able to tell an
// inactive funnel from a missing one.
var (
	ErrTenantNotFound = errors.New("organization not found")
	ErrFunnelNotFound = errors.New("funnel not found or inactive")
	ErrNotFound       = errors.New("not found")
)

var (
	ErrSlugTaken    = errors.New("slug is already used by another funnel")
	ErrInvalidInput = errors.New("invalid input")
	ErrPersistence  = errors.New("failed to save submission")
	ErrConflict     = errors.New("conflict")
)

// FieldErrors holds one message per offending field id.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Persistence wraps a datastore failure of one pipeline step.
func Persistence(step string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, step, err)
}

var (
	errRequired    = errors.New("is required")
	errInvalidSlug = errors.New("must contain lowercase letters, digits and single dashes")
	errInvalidKind = errors.New("must be one of text, textarea, select, checkbox")
)

var customErrors = map[string]error{
	"FunnelInput.Name.required":         errRequired,
	"FunnelInput.Slug.required":         errRequired,
	"FunnelInput.Slug.slug":             errInvalidSlug,
	"FunnelInput.Fields.ID.required":    errRequired,
	"FunnelInput.Fields.Label.required": errRequired,
	"FunnelInput.Fields.Kind.required":  errRequired,
	"FunnelInput.Fields.Kind.fieldkind": errInvalidKind,
	"FieldDescriptor.ID.required":       errRequired,
	"FieldDescriptor.Label.required":    errRequired,
	"FieldDescriptor.Kind.required":     errRequired,
	"FieldDescriptor.Kind.fieldkind":    errInvalidKind,
}

var indexPattern = regexp.MustCompile(`\[\d+\]`)

// CustomValidationError converts validator errors into the API error body.
func CustomValidationError(err error) []map[string]string {
	errList := make([]map[string]string, 0)

	var (
		validationErr validator.ValidationErrors
		fieldErrs     FieldErrors
	)

	switch {
	case errors.As(err, &validationErr):
		for _, e := range validationErr {
			field := e.StructNamespace()
			key := indexPattern.ReplaceAllString(field, "") + "." + e.Tag()

			errMsg := fmt.Sprintf("%s is invalid", e.Namespace())
			if v, ok := customErrors[key]; ok {
				errMsg = v.Error()
			}

			errList = append(errList, map[string]string{e.Field(): errMsg})
		}
	case errors.As(err, &fieldErrs):
		keys := make([]string, 0, len(fieldErrs))
		for k := range fieldErrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			errList = append(errList, map[string]string{k: fieldErrs[k]})
		}
	default:
		errList = append(errList, map[string]string{"error": err.Error()})
	}
	return errList
}
