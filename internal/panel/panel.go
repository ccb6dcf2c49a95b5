// internal/panel/panel.go
//
// One user's panel: pagination, table, row edits, and create form.
//
// Context
// -------
// A Panel composes the four controllers for a single browser session and is
// the only entry point the HTTP layer uses.  Every operation takes the
// panel mutex for its full duration, backend round trips included.  Requests
// from one session therefore apply in arrival order and the rendered table
// is always the result of the last completed operation.  Different sessions
// hold different panels and never contend.
//
// After any successful mutation the panel refreshes: the current page is
// re-rendered and then the count is re-fetched.  Failures never roll state
// back; they leave a one-shot notice that the next View carries.
//
// Notes
// -----
//   - View pops the notice.  Call it once per rendered page.
//   - Oxford commas, two spaces after periods.
package panel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/yanizio/playeradmin/internal/logger"
	"github.com/yanizio/playeradmin/internal/metrics"
	"github.com/yanizio/playeradmin/internal/player"
	"github.com/yanizio/playeradmin/internal/restclient"
)

// Backend is the players REST contract the panel consumes.
// *restclient.Client satisfies it.
type Backend interface {
	List(ctx context.Context, pageNumber, pageSize int) ([]player.Player, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, req player.CreateRequest) error
	Update(ctx context.Context, id int64, req player.UpdateRequest) error
	Delete(ctx context.Context, id int64) error
}

// Options tunes a Panel.  Zero values pick defaults.
type Options struct {
	DateLayout string           // birthday display layout
	Now        func() time.Time // clock for the future-birthday rule
}

// Panel is safe for concurrent use.
type Panel struct {
	mu sync.Mutex

	pagination *Pagination
	table      *Table
	creator    *Creator

	notice string
	loaded bool
}

// New returns a panel positioned at st.  Nothing is fetched until the first
// Refresh.
func New(b Backend, st PaginationState, opts Options) *Panel {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	t := newTable(b, opts.DateLayout)
	p := &Panel{
		table:      t,
		pagination: newPagination(st, b, t),
		creator:    &Creator{backend: b, now: now},
	}
	t.onChange = p.refresh
	t.edits.onChange = p.refresh
	p.creator.onChange = p.refresh
	return p
}

//
// operations
//

// Refresh re-renders the current page and re-fetches the count.
func (p *Panel) Refresh(ctx context.Context) error {
	return p.run(ctx, "refresh", p.refresh)
}

// EnsureLoaded refreshes once if the panel has never rendered.
func (p *Panel) EnsureLoaded(ctx context.Context) error {
	return p.run(ctx, "load", func(ctx context.Context) error {
		if p.loaded {
			return nil
		}
		return p.refresh(ctx)
	})
}

// SetPageSize switches page size and lands on page 0.
func (p *Panel) SetPageSize(ctx context.Context, size int) error {
	return p.run(ctx, "page_size", func(ctx context.Context) error {
		if err := p.pagination.SetPageSize(ctx, size); err != nil {
			return err
		}
		p.loaded = true
		return p.pagination.RefreshCount(ctx)
	})
}

// SetPage selects a zero-based page.  The count is re-fetched as well so an
// out-of-range page is clamped back onto a real one.
func (p *Panel) SetPage(ctx context.Context, index int) error {
	return p.run(ctx, "page", func(ctx context.Context) error {
		if err := p.pagination.SetPage(ctx, index); err != nil {
			return err
		}
		p.loaded = true
		return p.pagination.RefreshCount(ctx)
	})
}

// Create validates and submits the create form.
func (p *Panel) Create(ctx context.Context, f player.CreateForm) error {
	return p.run(ctx, "create", func(ctx context.Context) error {
		return p.creator.Submit(ctx, f)
	})
}

// ToggleRow activates the edit control of row id.  f is read only when the
// row is already Editing.
func (p *Panel) ToggleRow(ctx context.Context, id int64, f player.UpdateForm) error {
	return p.run(ctx, "edit", func(ctx context.Context) error {
		if err := p.loadRows(ctx); err != nil {
			return err
		}
		_, err := p.table.edits.Toggle(ctx, id, f)
		return err
	})
}

// DeleteRow deletes row id.
func (p *Panel) DeleteRow(ctx context.Context, id int64) error {
	return p.run(ctx, "delete", func(ctx context.Context) error {
		if err := p.loadRows(ctx); err != nil {
			return err
		}
		return p.table.Delete(ctx, id)
	})
}

// Flash sets the notice shown on the next View.
func (p *Panel) Flash(msg string) {
	p.mu.Lock()
	p.notice = msg
	p.mu.Unlock()
}

// State returns the pagination bookkeeping.
func (p *Panel) State() PaginationState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pagination.State()
}

// RowState returns the edit state of row id.
func (p *Panel) RowState(id int64) RowState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.table.edits.State(id)
}

// Loaded reports whether the table has been rendered at least once.
func (p *Panel) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded
}

//
// view
//

// View is an immutable snapshot for templates.
type View struct {
	PageSize   int
	PageSizes  []int
	PageNumber int
	TotalCount *int
	Buttons    []PageButton
	Rows       []RowView
	Notice     string
	Loaded     bool
}

// View snapshots the panel and clears the notice.
func (p *Panel) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := p.pagination.State()
	v := View{
		PageSize:   st.PageSize,
		PageSizes:  append([]int(nil), PageSizes...),
		PageNumber: st.PageNumber,
		TotalCount: st.TotalCount,
		Buttons:    st.Buttons(),
		Rows:       p.table.views(),
		Notice:     p.notice,
		Loaded:     p.loaded,
	}
	p.notice = ""
	return v
}

//
// internals (caller holds p.mu)
//

// refresh renders the current page, then refreshes the count.
func (p *Panel) refresh(ctx context.Context) error {
	if err := p.pagination.render(ctx); err != nil {
		return err
	}
	p.loaded = true
	return p.pagination.RefreshCount(ctx)
}

// loadRows renders once so a restored session can resolve row ids.
func (p *Panel) loadRows(ctx context.Context) error {
	if p.loaded {
		return nil
	}
	return p.refresh(ctx)
}

// run serializes op, counts it, and turns a failure into the notice.
func (p *Panel) run(ctx context.Context, action string, op func(context.Context) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := op(ctx)
	metrics.PanelActionsTotal.WithLabelValues(action, metrics.Outcome(err)).Inc()
	if err != nil {
		p.notice = Notice(err)
		if !player.IsRuleError(err) {
			logger.FromContext(ctx).Warnw("panel action failed", "action", action, "err", err)
		}
	}
	return err
}

// Notice turns an operation error into the text shown to the user.
func Notice(err error) string {
	var re *player.RuleError
	var se *restclient.StatusError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &re):
		return re.Message
	case errors.Is(err, ErrInvalidPageSize):
		return "Please choose one of the offered page sizes."
	case errors.Is(err, ErrInvalidPage):
		return "That page does not exist."
	case errors.Is(err, ErrUnknownRow):
		return "That player is no longer on this page."
	case errors.Is(err, ErrRowEditing):
		return "Save the row before deleting it."
	case errors.As(err, &se) && se.Status == http.StatusNotFound:
		return "That player no longer exists."
	case errors.As(err, &se):
		return fmt.Sprintf("The players service rejected the request (status %d).", se.Status)
	case errors.Is(err, context.DeadlineExceeded):
		return "The players service did not answer in time.  Please try again."
	default:
		return "The players service is unavailable.  Please try again."
	}
}
