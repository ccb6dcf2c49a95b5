// internal/panel/create.go
//
// Create form submission.
//
// Context
// -------
// The create form posts name, title, race, profession, level, birthday, and
// banned.  The fields are checked against the creation rules in order and
// the first failure is reported alone; nothing reaches the backend until
// every rule passes.  A successful create is followed by a refresh so the
// new record shows up wherever the current page puts it.
//
// Notes
// -----
//   - Birthday is judged against the injected clock, so tests pin "now".
package panel

import (
	"context"
	"fmt"
	"time"

	"github.com/yanizio/playeradmin/internal/player"
)

// Creator validates and submits the create form.
type Creator struct {
	backend Backend
	now     func() time.Time

	onChange func(context.Context) error
}

// Submit validates f in rule order and, when it passes, sends one create
// request followed by a refresh.  A validation failure sends nothing.
func (c *Creator) Submit(ctx context.Context, f player.CreateForm) error {
	req, err := player.ValidateCreate(f, c.now())
	if err != nil {
		return err
	}
	if err := c.backend.Create(ctx, req); err != nil {
		return fmt.Errorf("create player: %w", err)
	}
	if c.onChange != nil {
		return c.onChange(ctx)
	}
	return nil
}
