// internal/player/validate.go
//
// Ordered validation for create and update submissions.
//
// Context
// -------
// The create form enforces its rules in a fixed order and reports only the
// first failure, so the user always sees the same message for the same input
// regardless of what else is wrong.  go-playground/validator walks struct
// fields in declaration order and records failures in that order, so the
// rule structs below list their fields in rule order and we surface the first
// FieldError only.
//
// Notes
// -----
//   - Pointer fields stay nil when the raw value cannot be parsed; `required`
//     then fails on the rule that owns the parse.
//   - Length limits count runes, not bytes.
//   - Oxford commas, two spaces after periods.
package player

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the layout of the birthday value posted by a date input.
const DateLayout = "2006-01-02"

// Rule identifies one validation rule, numbered in evaluation order.
type Rule int

const (
	RuleName Rule = iota + 1
	RuleTitle
	RuleLevel
	RuleBirthdaySelected
	RuleBirthdayValid
	RuleBirthdayNotFuture
	RuleEnums
)

var ruleMessages = map[Rule]string{
	RuleName:              "Name must be between 1 and 12 characters and cannot be empty.",
	RuleTitle:             "Title cannot exceed 30 characters.",
	RuleLevel:             "Level must be a number between 0 and 100.",
	RuleBirthdaySelected:  "Please select a birthday.",
	RuleBirthdayValid:     "Birthday must be a valid date.",
	RuleBirthdayNotFuture: "Birthday cannot be in the future.",
	RuleEnums:             "Race and profession must be selected from the list.",
}

// RuleError reports the first rule a submission failed.  Message is safe to
// show to the user verbatim.
type RuleError struct {
	Rule    Rule
	Field   string
	Message string
}

func (e *RuleError) Error() string { return e.Message }

// IsRuleError reports whether err (or anything it wraps) is a *RuleError.
func IsRuleError(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}

// CreateForm holds the raw values of the create form as posted.
type CreateForm struct {
	Name       string
	Title      string
	Race       string
	Profession string
	Level      string
	Birthday   string // DateLayout, empty when no date was picked
	Banned     bool
}

// UpdateForm holds the raw values read back from a row's edit controls.
type UpdateForm struct {
	Name       string
	Title      string
	Race       string
	Profession string
	Banned     bool
}

//
// rule structs (field order == rule order)
//

type createRules struct {
	Name       string `validate:"required,min=1,max=12"`
	Title      string `validate:"max=30"`
	Level      *int   `validate:"required,min=0,max=100"`
	Date       string `validate:"required"`
	Millis     *int64 `validate:"required,min=0"`
	Past       int64  `validate:"ltefield=Now"`
	Race       string `validate:"oneof=HUMAN DWARF ELF GIANT ORC TROLL HOBBIT"`
	Profession string `validate:"oneof=WARRIOR ROGUE SORCERER CLERIC PALADIN NAZGUL WARLOCK DRUID"`
	Now        int64  `validate:"-"`
}

type updateRules struct {
	Name       string `validate:"required,min=1,max=12"`
	Title      string `validate:"max=30"`
	Race       string `validate:"oneof=HUMAN DWARF ELF GIANT ORC TROLL HOBBIT"`
	Profession string `validate:"oneof=WARRIOR ROGUE SORCERER CLERIC PALADIN NAZGUL WARLOCK DRUID"`
}

var fieldRules = map[string]Rule{
	"Name":       RuleName,
	"Title":      RuleTitle,
	"Level":      RuleLevel,
	"Date":       RuleBirthdaySelected,
	"Millis":     RuleBirthdayValid,
	"Past":       RuleBirthdayNotFuture,
	"Race":       RuleEnums,
	"Profession": RuleEnums,
}

var fieldNames = map[string]string{
	"Name":       "name",
	"Title":      "title",
	"Level":      "level",
	"Date":       "birthday",
	"Millis":     "birthday",
	"Past":       "birthday",
	"Race":       "race",
	"Profession": "profession",
}

// package-level singleton, safe for concurrent use
var v = validator.New()

//
// public API
//

// ValidateCreate trims and checks f against the create rules and returns the
// request body to submit.  now bounds the birthday.  The returned error is a
// *RuleError naming the first failed rule.
func ValidateCreate(f CreateForm, now time.Time) (CreateRequest, error) {
	r := createRules{
		Name:       strings.TrimSpace(f.Name),
		Title:      strings.TrimSpace(f.Title),
		Level:      parseLevel(f.Level),
		Date:       strings.TrimSpace(f.Birthday),
		Race:       f.Race,
		Profession: f.Profession,
		Now:        now.UnixMilli(),
	}
	r.Millis = parseBirthday(r.Date)
	if r.Millis != nil {
		r.Past = *r.Millis
	}

	if err := firstRule(v.Struct(&r)); err != nil {
		return CreateRequest{}, err
	}

	return CreateRequest{
		Name:       r.Name,
		Title:      r.Title,
		Race:       Race(r.Race),
		Profession: Profession(r.Profession),
		Birthday:   EpochMillis(*r.Millis),
		Banned:     f.Banned,
		Level:      *r.Level,
	}, nil
}

// ValidateUpdate checks the values read from a row's edit controls and
// returns the update body.  Level and birthday are never part of it.
func ValidateUpdate(f UpdateForm) (UpdateRequest, error) {
	r := updateRules{
		Name:       strings.TrimSpace(f.Name),
		Title:      strings.TrimSpace(f.Title),
		Race:       f.Race,
		Profession: f.Profession,
	}
	if err := firstRule(v.Struct(&r)); err != nil {
		return UpdateRequest{}, err
	}
	return UpdateRequest{
		Name:       r.Name,
		Title:      r.Title,
		Race:       Race(r.Race),
		Profession: Profession(r.Profession),
		Banned:     f.Banned,
	}, nil
}

//
// helpers
//

// firstRule maps the first validator failure onto its RuleError.
func firstRule(err error) error {
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return err // InvalidValidationError: programming mistake
	}
	fe := ves[0]
	rule := fieldRules[fe.StructField()]
	return &RuleError{
		Rule:    rule,
		Field:   fieldNames[fe.StructField()],
		Message: ruleMessages[rule],
	}
}

func parseLevel(raw string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &n
}

// parseBirthday resolves a date input value to UTC midnight in epoch ms.
func parseBirthday(raw string) *int64 {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}
