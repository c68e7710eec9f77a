package view

import (
	"github.com/gentaArnezzi/onvlo/internal/model"
)

// fieldRenderer writes the input of one schema field pre-filled with value.
type fieldRenderer func(h *htmlWriter, f model.FieldDescriptor, value any, disabled bool)

var fieldRenderers = map[model.FieldKind]fieldRenderer{
	model.KindText:     renderText,
	model.KindTextArea: renderTextArea,
	model.KindSelect:   renderSelect,
	model.KindCheckbox: renderCheckbox,
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func renderLabel(h *htmlWriter, f model.FieldDescriptor) {
	h.rawf(`<label for="%s">`, escape(f.ID))
	h.text(f.Label)
	if f.Required {
		h.raw(`<span class="required"> *</span>`)
	}
	h.raw(`</label>`)
}

func renderText(h *htmlWriter, f model.FieldDescriptor, value any, disabled bool) {
	renderLabel(h, f)
	h.rawf(`<input type="text" id="%s" name="%s" value="%s" placeholder="%s"%s>`,
		escape(f.ID), escape(f.ID), escape(stringValue(value)), escape(f.Placeholder), disabledAttr(disabled))
}

func renderTextArea(h *htmlWriter, f model.FieldDescriptor, value any, disabled bool) {
	renderLabel(h, f)
	h.rawf(`<textarea id="%s" name="%s" rows="4" placeholder="%s"%s>`,
		escape(f.ID), escape(f.ID), escape(f.Placeholder), disabledAttr(disabled))
	h.text(stringValue(value))
	h.raw(`</textarea>`)
}

func renderSelect(h *htmlWriter, f model.FieldDescriptor, value any, disabled bool) {
	renderLabel(h, f)
	current := stringValue(value)
	h.rawf(`<select id="%s" name="%s"%s><option value="">Select an option</option>`,
		escape(f.ID), escape(f.ID), disabledAttr(disabled))
	for _, opt := range f.Options {
		selected := ""
		if opt == current {
			selected = " selected"
		}
		h.rawf(`<option value="%s"%s>`, escape(opt), selected)
		h.text(opt)
		h.raw(`</option>`)
	}
	h.raw(`</select>`)
}

func renderCheckbox(h *htmlWriter, f model.FieldDescriptor, value any, disabled bool) {
	checked := ""
	if b, _ := value.(bool); b {
		checked = " checked"
	}
	label := f.Placeholder
	if label == "" {
		label = f.Label
	}
	h.raw(`<div class="checkbox">`)
	h.rawf(`<input type="checkbox" id="%s" name="%s" value="on"%s%s>`,
		escape(f.ID), escape(f.ID), checked, disabledAttr(disabled))
	h.rawf(`<label for="%s">`, escape(f.ID))
	h.text(label)
	if f.Required {
		h.raw(`<span class="required"> *</span>`)
	}
	h.raw(`</label></div>`)
}

// renderField dispatches on the field kind. Unknown kinds render nothing.
func renderField(h *htmlWriter, f model.FieldDescriptor, value any, errMsg string, disabled bool) {
	render, ok := fieldRenderers[f.Kind]
	if !ok {
		return
	}
	class := "field"
	if errMsg != "" {
		class += " has-error"
	}
	h.rawf(`<div class="%s">`, class)
	render(h, f, value, disabled)
	if errMsg != "" {
		h.raw(`<p class="field-error">`)
		h.text(errMsg)
		h.raw(`</p>`)
	}
	h.raw(`</div>`)
}
