// internal/panel/pagination.go
//
// Page position, page size, and page-selector buttons.
//
// Context
// -------
// PaginationState is a plain value: the page size picked from a fixed option
// set, the zero-based page number, and the total record count once it has
// been fetched.  The button list is a pure function of that value, so it is
// rebuilt from scratch on every render and never patched in place.
//
// Pagination owns the state and drives the table: changing size or page
// re-renders through the Table, and a count refresh may clamp the page back
// into range when rows disappeared underneath it.
//
// Notes
// -----
//   - Size changes always land on page 0.
//   - SetPage does not check the index against the count; RefreshCount does
//     the clamping.
//   - Oxford commas, two spaces after periods.
package panel

import (
	"context"
	"errors"
	"fmt"
)

// PageSizes is the closed set of page sizes offered to users.
var PageSizes = []int{5, 10, 15, 20}

// DefaultPageSize is used when no size is configured or persisted.
const DefaultPageSize = 5

var (
	ErrInvalidPageSize = errors.New("page size is not one of the offered options")
	ErrInvalidPage     = errors.New("page number cannot be negative")
)

// ValidPageSize reports whether size is one of PageSizes.
func ValidPageSize(size int) bool {
	for _, s := range PageSizes {
		if s == size {
			return true
		}
	}
	return false
}

// PaginationState is the complete pagination bookkeeping for one panel.
// TotalCount stays nil until the first count has been fetched.
type PaginationState struct {
	PageSize   int  `json:"page_size"`
	PageNumber int  `json:"page_number"`
	TotalCount *int `json:"-"`
}

// NewPaginationState returns page 0 at size, falling back to
// DefaultPageSize when size is not offered.
func NewPaginationState(size int) PaginationState {
	if !ValidPageSize(size) {
		size = DefaultPageSize
	}
	return PaginationState{PageSize: size}
}

// Normalize repairs a state loaded from storage.
func (s PaginationState) Normalize() PaginationState {
	if !ValidPageSize(s.PageSize) {
		s.PageSize = DefaultPageSize
		s.PageNumber = 0
	}
	if s.PageNumber < 0 {
		s.PageNumber = 0
	}
	return s
}

// PageCount is ceil(TotalCount / PageSize), zero while the count is unknown.
func (s PaginationState) PageCount() int {
	if s.TotalCount == nil || *s.TotalCount <= 0 || s.PageSize <= 0 {
		return 0
	}
	return (*s.TotalCount + s.PageSize - 1) / s.PageSize
}

// PageButton is one page selector.  Label is 1-indexed for display, Value is
// the zero-based page number it selects.
type PageButton struct {
	Label  int
	Value  int
	Active bool
}

// Buttons returns one button per page with the current page marked active.
func (s PaginationState) Buttons() []PageButton {
	n := s.PageCount()
	if n == 0 {
		return nil
	}
	out := make([]PageButton, n)
	for i := range out {
		out[i] = PageButton{Label: i + 1, Value: i, Active: i == s.PageNumber}
	}
	return out
}

// Pagination drives page and size changes for one panel.
type Pagination struct {
	state   PaginationState
	backend Backend
	table   *Table
}

func newPagination(st PaginationState, b Backend, t *Table) *Pagination {
	return &Pagination{state: st.Normalize(), backend: b, table: t}
}

// State returns a copy of the current state.
func (p *Pagination) State() PaginationState {
	st := p.state
	if st.TotalCount != nil {
		n := *st.TotalCount
		st.TotalCount = &n
	}
	return st
}

// SetPageSize switches to size, resets to page 0, and renders that page.
func (p *Pagination) SetPageSize(ctx context.Context, size int) error {
	if !ValidPageSize(size) {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, size)
	}
	p.state.PageSize = size
	p.state.PageNumber = 0
	return p.table.Render(ctx, p.state.PageNumber, p.state.PageSize)
}

// SetPage selects page index and renders it at the current size.
func (p *Pagination) SetPage(ctx context.Context, index int) error {
	if index < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPage, index)
	}
	p.state.PageNumber = index
	return p.table.Render(ctx, p.state.PageNumber, p.state.PageSize)
}

// RefreshCount fetches the total count and stores it.  When the current page
// now lies past the last page, it is clamped and the table re-rendered.
func (p *Pagination) RefreshCount(ctx context.Context) error {
	n, err := p.backend.Count(ctx)
	if err != nil {
		return fmt.Errorf("refresh count: %w", err)
	}
	if n < 0 {
		n = 0
	}
	p.state.TotalCount = &n

	last := p.state.PageCount() - 1
	if last < 0 {
		last = 0
	}
	if p.state.PageNumber > last {
		p.state.PageNumber = last
		return p.table.Render(ctx, p.state.PageNumber, p.state.PageSize)
	}
	return nil
}

// render re-fetches the current page.
func (p *Pagination) render(ctx context.Context) error {
	return p.table.Render(ctx, p.state.PageNumber, p.state.PageSize)
}
