// internal/panel/rowedit.go
//
// Per-row Viewing / Editing state machine.
//
// Context
// -------
// Each rendered row is either Viewing (static cells, edit and delete icons)
// or Editing (controls for name, title, race, profession, and banned, a save
// icon, and no delete).  The state lives in an explicit map keyed by record
// id; it is never derived from markup.
//
//	Viewing ──edit──▶ Editing ──save ok──▶ Viewing (then refresh)
//	                     │
//	                     └──save failed──▶ Editing (notice shown)
//
// A failed save keeps what the user posted as the row's draft, and the
// Editing row shows the draft instead of the rendered values until the row
// saves or the table re-renders.
//
// There is no cancel transition.  A page change, size change, or refresh
// re-renders the table and thereby returns every row to Viewing.
package panel

import (
	"context"
	"fmt"

	"github.com/yanizio/playeradmin/internal/player"
)

// RowState is the presentation state of one row.
type RowState int

const (
	Viewing RowState = iota
	Editing
)

func (s RowState) String() string {
	if s == Editing {
		return "editing"
	}
	return "viewing"
}

// RowEditor holds the edit state of every rendered row.
type RowEditor struct {
	backend Backend
	states  map[int64]RowState
	drafts  map[int64]player.UpdateForm

	onChange func(context.Context) error
}

func newRowEditor(b Backend) *RowEditor {
	return &RowEditor{backend: b, states: map[int64]RowState{}, drafts: map[int64]player.UpdateForm{}}
}

// reset puts every row of a fresh render into Viewing and forgets the rest.
func (e *RowEditor) reset(rows []player.Player) {
	e.states = make(map[int64]RowState, len(rows))
	for _, r := range rows {
		e.states[r.ID] = Viewing
	}
	e.drafts = map[int64]player.UpdateForm{}
}

// State returns the state of row id; unknown rows read as Viewing.
func (e *RowEditor) State(id int64) RowState {
	return e.states[id]
}

// Draft returns the values last posted for row id by a save that failed.
func (e *RowEditor) Draft(id int64) (player.UpdateForm, bool) {
	f, ok := e.drafts[id]
	return f, ok
}

// Toggle activates the edit control of row id.  In Viewing it only switches
// the row to Editing.  In Editing it validates f, submits one update, and
// refreshes on success.  A failed save leaves the row in Editing with f kept
// as its draft.
func (e *RowEditor) Toggle(ctx context.Context, id int64, f player.UpdateForm) (RowState, error) {
	st, ok := e.states[id]
	if !ok {
		return Viewing, fmt.Errorf("%w: %d", ErrUnknownRow, id)
	}

	if st == Viewing {
		e.states[id] = Editing
		return Editing, nil
	}

	req, err := player.ValidateUpdate(f)
	if err != nil {
		e.drafts[id] = f
		return Editing, err
	}
	if err := e.backend.Update(ctx, id, req); err != nil {
		e.drafts[id] = f
		return Editing, fmt.Errorf("update player %d: %w", id, err)
	}

	e.states[id] = Viewing
	delete(e.drafts, id)
	if e.onChange != nil {
		if err := e.onChange(ctx); err != nil {
			return Viewing, err
		}
	}
	return Viewing, nil
}
