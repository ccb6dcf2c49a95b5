// internal/form/definition.go
//
// Forms subsystem: YAML definition loader.
//
// Context
//   The panel's two editors, the create form and the inline row editor, are
//   declared in YAML files under `components/players/forms/`.  Each file
//   defines the form's identifier, title, and fields.  The component parses
//   them once at start-up from its embedded file system and hands the
//   resulting FormDefs to templates, which render each field with Control.
//
// Workflow
//   •  Structs mirror the YAML schema: FormDef → FieldDef.
//   •  ParseFormDef decodes and validates one document.
//   •  LoadDir walks a directory of an fs.FS and returns a Set keyed by ID.
//   •  ResolveOptions fills select options that name a list (options_from)
//      so enum values are defined once, in Go.
//
// Style
//   Full sentences, two spaces after periods, Oxford commas.  Helper comments
//   use short noun phrases.
//
//------------------------------------------------------------------------------

package form

import (
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------
// Data structures
// -----------------------------------------------------------------------------

// FormDef represents one form definition loaded from YAML.
type FormDef struct {
	ID     string     `yaml:"id"`    // e.g. “players/create”.
	Title  string     `yaml:"title"` // Display title, optional.
	Fields []FieldDef `yaml:"fields"`
}

// FieldDef describes a single input control.  Validation metadata lives
// inline so the browser gets the same hints the server enforces.
type FieldDef struct {
	Name        string   `yaml:"name"`         // Submission key.  Required.
	Label       string   `yaml:"label"`        // Human-readable label.  Required.
	Type        string   `yaml:"type"`         // text, number, date, select, checkbox.
	Placeholder string   `yaml:"placeholder"`  // Optional placeholder text.
	Required    bool     `yaml:"required"`     // True if input is mandatory.
	MinLength   int      `yaml:"minlength"`    // ≥ 0, 0 means unset.
	MaxLength   int      `yaml:"maxlength"`    // ≥ 0, 0 means unset.
	Min         *int     `yaml:"min"`          // number only.
	Max         *int     `yaml:"max"`          // number only.
	Pattern     string   `yaml:"pattern"`      // Regex pattern string.
	Options     []string `yaml:"options"`      // For select.
	OptionsFrom string   `yaml:"options_from"` // Named option list, see ResolveOptions.
}

// Field returns the field called name.
func (fd *FormDef) Field(name string) (FieldDef, bool) {
	for _, f := range fd.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// ResolveOptions copies named lists into select fields that reference them.
// An unknown list name is an error.
func (fd *FormDef) ResolveOptions(lists map[string][]string) error {
	for i := range fd.Fields {
		f := &fd.Fields[i]
		if f.OptionsFrom == "" {
			continue
		}
		opts, ok := lists[f.OptionsFrom]
		if !ok {
			return fmt.Errorf("form %s: field '%s' references unknown option list '%s'", fd.ID, f.Name, f.OptionsFrom)
		}
		f.Options = append([]string(nil), opts...)
	}
	return nil
}

// Set maps form ID → definition.
type Set map[string]*FormDef

// -----------------------------------------------------------------------------
// Loader API
// -----------------------------------------------------------------------------

// ParseFormDef decodes one YAML document and validates its structure.  name
// only labels errors.
func ParseFormDef(raw []byte, name string) (*FormDef, error) {
	var fd FormDef
	if err := yaml.Unmarshal(raw, &fd); err != nil {
		return nil, fmt.Errorf("parse YAML %s: %w", name, err)
	}
	if err := validateFormDef(&fd, name); err != nil {
		return nil, err
	}
	return &fd, nil
}

// LoadDir parses every “*.yaml” directly under dir.  Duplicate IDs are an
// error so a typo cannot silently shadow a form.
func LoadDir(fsys fs.FS, dir string) (Set, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read form dir %s: %w", dir, err)
	}

	set := make(Set)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue // skip non-YAML
		}
		p := path.Join(dir, e.Name())
		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read form file %s: %w", p, err)
		}
		fd, err := ParseFormDef(raw, p)
		if err != nil {
			return nil, err // fail fast so issues surface loudly.
		}
		if _, dup := set[fd.ID]; dup {
			return nil, fmt.Errorf("form %s: duplicate form id '%s'", p, fd.ID)
		}
		set[fd.ID] = fd
	}
	return set, nil
}

// -----------------------------------------------------------------------------
// Validation helpers
// -----------------------------------------------------------------------------

var knownTypes = map[string]bool{
	"text":     true,
	"number":   true,
	"date":     true,
	"select":   true,
	"checkbox": true,
}

// validateFormDef enforces structural rules that cannot be expressed via YAML
// tags alone.
func validateFormDef(fd *FormDef, name string) error {
	if fd.ID == "" {
		return fmt.Errorf("form definition %s: missing required 'id'", name)
	}
	if len(fd.Fields) == 0 {
		return fmt.Errorf("form definition %s: must have 'fields'", name)
	}

	seen := make(map[string]struct{}, len(fd.Fields))
	for i := range fd.Fields {
		if err := validateField(&fd.Fields[i], name); err != nil {
			return err
		}
		if _, dup := seen[fd.Fields[i].Name]; dup {
			return fmt.Errorf("form %s: duplicate field name '%s'", name, fd.Fields[i].Name)
		}
		seen[fd.Fields[i].Name] = struct{}{}
	}
	return nil
}

// validateField confirms that essential attributes are present and sane.
func validateField(f *FieldDef, name string) error {
	if f.Name == "" {
		return fmt.Errorf("form %s: field missing 'name'", name)
	}
	if f.Label == "" {
		return fmt.Errorf("form %s: field '%s' missing 'label'", name, f.Name)
	}
	if !knownTypes[f.Type] {
		return fmt.Errorf("form %s: field '%s' has unsupported type '%s'", name, f.Name, f.Type)
	}

	if f.Pattern != "" {
		if _, err := regexp.Compile(f.Pattern); err != nil {
			return fmt.Errorf("form %s: field '%s' invalid regex pattern: %v", name, f.Name, err)
		}
	}

	if f.MinLength < 0 || f.MaxLength < 0 {
		return fmt.Errorf("form %s: field '%s' minlength/maxlength cannot be negative", name, f.Name)
	}
	if f.MaxLength > 0 && f.MinLength > f.MaxLength {
		return fmt.Errorf("form %s: field '%s' minlength greater than maxlength", name, f.Name)
	}
	if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
		return fmt.Errorf("form %s: field '%s' min greater than max", name, f.Name)
	}
	if f.Type == "select" && len(f.Options) == 0 && f.OptionsFrom == "" {
		return fmt.Errorf("form %s: select field '%s' needs 'options' or 'options_from'", name, f.Name)
	}

	return nil
}
