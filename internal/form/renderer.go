// internal/form/renderer.go
//
// Forms subsystem: HTML renderer.
//
// Context
//   Given a FieldDef (from definition.go) this file writes the matching input
//   control.  The create form renders each field with a label through Field;
//   the inline row editor renders bare controls into table cells through
//   Control.  Row controls live outside their <form> element, so every control
//   can carry an HTML5 `form` attribute tying it to the form by ID.
//
// Workflow
//   •  Required, minlength, maxlength, min, max, pattern, and placeholder
//      attributes are attached where relevant.  Select options come from the
//      definition's Options slice, with the current value pre-selected.
//   •  Callers receive template.HTML so the surrounding template does not
//      double-escape the markup.
//
// Style
//   Output HTML is deliberately plain; no framework classes.  Each input gets
//   id="fld-{form}-{name}" (or id="fld-{name}" without a form).
//
//------------------------------------------------------------------------------

package form

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strconv"
	"strings"
)

// Control returns the bare input for f with value pre-filled.  formID, when
// set, is written as the control's `form` attribute.
func Control(f FieldDef, value, formID string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := writeControl(&buf, &f, value, formID); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// Field returns the labelled control for f wrapped in <div class="form-field">.
func Field(f FieldDef, value, formID string) (template.HTML, error) {
	var buf bytes.Buffer
	buf.WriteString(`<div class="form-field">` + "\n")
	buf.WriteString(`<label for="` + controlID(f.Name, formID) + `">` + html.EscapeString(f.Label) + `</label>` + "\n")
	if err := writeControl(&buf, &f, value, formID); err != nil {
		return "", err
	}
	buf.WriteString(`</div>` + "\n")
	return template.HTML(buf.String()), nil
}

func controlID(name, formID string) string {
	if formID == "" {
		return "fld-" + html.EscapeString(name)
	}
	return "fld-" + html.EscapeString(formID) + "-" + html.EscapeString(name)
}

// writeControl emits HTML for an individual control into buf.
func writeControl(buf *bytes.Buffer, f *FieldDef, val, formID string) error {
	// Shared attributes
	attrs := `id="` + controlID(f.Name, formID) + `" name="` + html.EscapeString(f.Name) + `"`
	if formID != "" {
		attrs += ` form="` + html.EscapeString(formID) + `"`
	}

	switch f.Type {
	case "text", "number", "date":
		buf.WriteString(`<input ` + attrs + ` type="` + f.Type + `"`)
		if f.Placeholder != "" {
			buf.WriteString(` placeholder="` + html.EscapeString(f.Placeholder) + `"`)
		}
		if f.Required {
			buf.WriteString(` required`)
		}
		if f.MinLength > 0 {
			buf.WriteString(` minlength="` + strconv.Itoa(f.MinLength) + `"`)
		}
		if f.MaxLength > 0 {
			buf.WriteString(` maxlength="` + strconv.Itoa(f.MaxLength) + `"`)
		}
		if f.Min != nil {
			buf.WriteString(` min="` + strconv.Itoa(*f.Min) + `"`)
		}
		if f.Max != nil {
			buf.WriteString(` max="` + strconv.Itoa(*f.Max) + `"`)
		}
		if f.Pattern != "" {
			buf.WriteString(` pattern="` + html.EscapeString(f.Pattern) + `"`)
		}
		if val != "" {
			buf.WriteString(` value="` + html.EscapeString(val) + `"`)
		}
		buf.WriteString(`>` + "\n")

	case "select":
		buf.WriteString(`<select ` + attrs)
		if f.Required {
			buf.WriteString(` required`)
		}
		buf.WriteString(`>` + "\n")
		for _, opt := range f.Options {
			sel := ""
			if val == opt {
				sel = ` selected`
			}
			buf.WriteString(`<option value="` + html.EscapeString(opt) + `"` + sel + `>` + html.EscapeString(opt) + `</option>` + "\n")
		}
		buf.WriteString(`</select>` + "\n")

	case "checkbox":
		checked := ""
		if val != "" && strings.ToLower(val) != "false" {
			checked = ` checked`
		}
		buf.WriteString(`<input ` + attrs + ` type="checkbox" value="true"` + checked + `>` + "\n")

	default:
		return fmt.Errorf("writeControl: unsupported field type %q in form field %s", f.Type, f.Name)
	}
	return nil
}
