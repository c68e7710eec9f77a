// Package schema interprets tenant-authored field descriptors: it turns posted
// form values into stored response values and validates them.
package schema

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gentaArnezzi/onvlo/internal/apperror"
	"github.com/gentaArnezzi/onvlo/internal/model"
)

// KindSpec is the per-kind behaviour of a field.
type KindSpec struct {
	// Normalize converts the raw posted values of a field into its stored value.
	Normalize func(f model.FieldDescriptor, raw []string) any
	// Empty reports whether a stored value counts as "not provided".
	Empty func(v any) bool
	// Check returns a message when a provided value is unacceptable.
	Check func(f model.FieldDescriptor, v any) string
}

var kinds = map[model.FieldKind]KindSpec{
	model.KindText:     {Normalize: normalizeString, Empty: emptyString},
	model.KindTextArea: {Normalize: normalizeString, Empty: emptyString},
	model.KindSelect: {
		Normalize: normalizeString,
		Empty:     emptyString,
		Check: func(f model.FieldDescriptor, v any) string {
			s, _ := v.(string)
			if !slices.Contains(f.Options, s) {
				return fmt.Sprintf("%s has an invalid option", f.Label)
			}
			return ""
		},
	},
	model.KindCheckbox: {
		Normalize: func(_ model.FieldDescriptor, raw []string) any {
			if len(raw) == 0 {
				return false
			}
			switch strings.ToLower(strings.TrimSpace(raw[len(raw)-1])) {
			case "on", "true", "1", "yes":
				return true
			}
			return false
		},
		Empty: func(v any) bool {
			b, _ := v.(bool)
			return !b
		},
	},
}

// Spec returns the behaviour of kind.
func Spec(kind model.FieldKind) (KindSpec, bool) {
	s, ok := kinds[kind]
	return s, ok
}

func normalizeString(_ model.FieldDescriptor, raw []string) any {
	if len(raw) == 0 {
		return ""
	}
	return strings.TrimSpace(raw[0])
}

func emptyString(v any) bool {
	s, ok := v.(string)
	return !ok || strings.TrimSpace(s) == ""
}

// Normalize converts the posted values of every field. Fields absent from
// posted still get an entry so a submission carries the full schema.
func Normalize(fields []model.FieldDescriptor, posted map[string][]string) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		spec, ok := kinds[f.Kind]
		if !ok {
			continue
		}
		out[f.ID] = spec.Normalize(f, posted[f.ID])
	}
	return out
}

// Validate returns one error per offending field, keyed by field id. A nil
// result means values satisfy the schema.
func Validate(fields []model.FieldDescriptor, values map[string]any) apperror.FieldErrors {
	errs := apperror.FieldErrors{}
	for _, f := range fields {
		spec, ok := kinds[f.Kind]
		if !ok {
			continue
		}
		v, present := values[f.ID]
		if !present || spec.Empty(v) {
			if f.Required {
				errs[f.ID] = fmt.Sprintf("%s is required", f.Label)
			}
			continue
		}
		if spec.Check != nil {
			if msg := spec.Check(f, v); msg != "" {
				errs[f.ID] = msg
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

var (
	errEmptyID      = errors.New("field id is required")
	errDuplicateID  = errors.New("duplicate field id")
	errUnknownKind  = errors.New("unknown field type")
	errEmptyOptions = errors.New("select field needs at least one option")
)

// CheckSchema enforces the authoring invariants of a field list.
func CheckSchema(fields []model.FieldDescriptor) error {
	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		if strings.TrimSpace(f.ID) == "" {
			return fmt.Errorf("fields[%d]: %w", i, errEmptyID)
		}
		if seen[f.ID] {
			return fmt.Errorf("fields[%d] %q: %w", i, f.ID, errDuplicateID)
		}
		seen[f.ID] = true
		if !f.Kind.Valid() {
			return fmt.Errorf("fields[%d] %q: %w %q", i, f.ID, errUnknownKind, f.Kind)
		}
		if f.Kind == model.KindSelect && len(f.Options) == 0 {
			return fmt.Errorf("fields[%d] %q: %w", i, f.ID, errEmptyOptions)
		}
	}
	return nil
}
