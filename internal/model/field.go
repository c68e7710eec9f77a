package model

// FieldKind is the closed set of input kinds a funnel schema can use.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindTextArea FieldKind = "textarea"
	KindSelect   FieldKind = "select"
	KindCheckbox FieldKind = "checkbox"
)

// Kinds lists every known FieldKind in display order.
var Kinds = []FieldKind{KindText, KindTextArea, KindSelect, KindCheckbox}

// Valid reports whether k is one of the known kinds.
func (k FieldKind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// FieldDescriptor describes one tenant-authored input in a funnel schema.
type FieldDescriptor struct {
	ID          string    `json:"id" yaml:"id" validate:"required"`
	Kind        FieldKind `json:"type" yaml:"type" validate:"required,fieldkind"`
	Label       string    `json:"label" yaml:"label" validate:"required"`
	Placeholder string    `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Required    bool      `json:"required" yaml:"required"`
	Options     []string  `json:"options,omitempty" yaml:"options,omitempty"`
}
