// internal/panel/table.go
//
// Table rows and the delete action.
//
// Context
// -------
// The table holds exactly the page the user is looking at.  Render replaces
// it wholesale with what the backend returns; there is no incremental diffing
// and no record survives a render.  Every render also resets all rows to
// Viewing, discarding any edit in progress.
//
// Row actions reach the table through one route keyed by record id, so the
// table resolves ids against the rows it rendered last and refuses ids it
// never showed.
package panel

import (
	"context"
	"errors"
	"fmt"

	"github.com/yanizio/playeradmin/internal/player"
)

var (
	ErrUnknownRow = errors.New("row is not on the current page")
	ErrRowEditing = errors.New("row is being edited")
)

// DefaultDateLayout formats birthdays in the table.
const DefaultDateLayout = "1/2/2006"

// Table is the rendered page plus its per-row edit states.
type Table struct {
	backend Backend
	layout  string
	rows    []player.Player
	edits   *RowEditor

	// onChange runs after a successful delete.
	onChange func(context.Context) error
}

func newTable(b Backend, layout string) *Table {
	if layout == "" {
		layout = DefaultDateLayout
	}
	t := &Table{backend: b, layout: layout}
	t.edits = newRowEditor(b)
	return t
}

// Render fetches page pageNumber at pageSize and replaces the rows.
func (t *Table) Render(ctx context.Context, pageNumber, pageSize int) error {
	rows, err := t.backend.List(ctx, pageNumber, pageSize)
	if err != nil {
		return fmt.Errorf("render page %d: %w", pageNumber, err)
	}
	t.rows = rows
	t.edits.reset(rows)
	return nil
}

// Rows returns the rendered rows in backend order.
func (t *Table) Rows() []player.Player {
	out := make([]player.Player, len(t.rows))
	copy(out, t.rows)
	return out
}

// Row returns the rendered row with id.
func (t *Table) Row(id int64) (player.Player, bool) {
	for _, r := range t.rows {
		if r.ID == id {
			return r, true
		}
	}
	return player.Player{}, false
}

// Delete removes row id from the backend and refreshes.  A row in Editing
// has no delete control and is refused.
func (t *Table) Delete(ctx context.Context, id int64) error {
	if _, ok := t.Row(id); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownRow, id)
	}
	if t.edits.State(id) == Editing {
		return fmt.Errorf("%w: %d", ErrRowEditing, id)
	}
	if err := t.backend.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete player %d: %w", id, err)
	}
	if t.onChange != nil {
		return t.onChange(ctx)
	}
	return nil
}

// RowView is one table row ready for the template.
type RowView struct {
	ID         int64
	Name       string
	Title      string
	Race       player.Race
	Profession player.Profession
	Level      int
	Birthday   string
	Banned     bool
	State      RowState
}

// Editing reports whether the row shows edit controls.
func (r RowView) Editing() bool { return r.State == Editing }

// views projects the rows for display.  An Editing row with a draft shows
// the draft.
func (t *Table) views() []RowView {
	out := make([]RowView, len(t.rows))
	for i, p := range t.rows {
		out[i] = RowView{
			ID:         p.ID,
			Name:       p.Name,
			Title:      p.Title,
			Race:       p.Race,
			Profession: p.Profession,
			Level:      p.Level,
			Birthday:   p.Birthday.Time().Format(t.layout),
			Banned:     p.Banned,
			State:      t.edits.State(p.ID),
		}
		if d, ok := t.edits.Draft(p.ID); ok && out[i].Editing() {
			out[i].Name = d.Name
			out[i].Title = d.Title
			out[i].Race = player.Race(d.Race)
			out[i].Profession = player.Profession(d.Profession)
			out[i].Banned = d.Banned
		}
	}
	return out
}
