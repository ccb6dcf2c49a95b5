package panel

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func activeCount(bs []PageButton) int {
	n := 0
	for _, b := range bs {
		if b.Active {
			n++
		}
	}
	return n
}

func TestButtons_NilOrZeroCount(t *testing.T) {
	st := NewPaginationState(5)
	assert.Empty(t, st.Buttons())

	st.TotalCount = intPtr(0)
	assert.Empty(t, st.Buttons())
	assert.Equal(t, 0, st.PageCount())
}

func TestButtons_LabelsAndValues(t *testing.T) {
	st := PaginationState{PageSize: 5, PageNumber: 1, TotalCount: intPtr(11)}
	bs := st.Buttons()
	require.Len(t, bs, 3)
	assert.Equal(t, PageButton{Label: 1, Value: 0}, bs[0])
	assert.Equal(t, PageButton{Label: 2, Value: 1, Active: true}, bs[1])
	assert.Equal(t, PageButton{Label: 3, Value: 2}, bs[2])
}

func TestNewPaginationState_FallsBackToDefault(t *testing.T) {
	assert.Equal(t, DefaultPageSize, NewPaginationState(7).PageSize)
	assert.Equal(t, 15, NewPaginationState(15).PageSize)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, PaginationState{PageSize: 5}, PaginationState{PageSize: 3, PageNumber: 4}.Normalize())
	assert.Equal(t, PaginationState{PageSize: 10}, PaginationState{PageSize: 10, PageNumber: -2}.Normalize())
	assert.Equal(t, PaginationState{PageSize: 20, PageNumber: 3}, PaginationState{PageSize: 20, PageNumber: 3}.Normalize())
}

func TestButtonsProperties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 500
	properties := gopter.NewProperties(params)

	properties.Property("button count is ceil(count / size)", prop.ForAll(
		func(si, c int) bool {
			s := PageSizes[si]
			st := PaginationState{PageSize: s, TotalCount: &c}
			return len(st.Buttons()) == (c+s-1)/s
		},
		gen.IntRange(0, len(PageSizes)-1),
		gen.IntRange(0, 2000),
	))

	properties.Property("exactly one active button after a count refresh", prop.ForAll(
		func(si, c, start int) bool {
			s := PageSizes[si]
			b := newFake(c)
			p := New(b, PaginationState{PageSize: s, PageNumber: start}, Options{})
			if err := p.SetPage(context.Background(), start); err != nil {
				return false
			}
			bs := p.View().Buttons
			if c == 0 {
				return len(bs) == 0
			}
			return activeCount(bs) == 1 && bs[p.State().PageNumber].Active
		},
		gen.IntRange(0, len(PageSizes)-1),
		gen.IntRange(0, 120),
		gen.IntRange(0, 40),
	))

	properties.TestingRun(t)
}

func TestSetPageSize_ResetsToPageZero(t *testing.T) {
	for _, size := range PageSizes {
		b := newFake(37)
		p := New(b, PaginationState{PageSize: 5, PageNumber: 3}, Options{})
		require.NoError(t, p.Refresh(context.Background()))

		require.NoError(t, p.SetPageSize(context.Background(), size))

		st := p.State()
		assert.Equal(t, size, st.PageSize)
		assert.Equal(t, 0, st.PageNumber)
		assert.Contains(t, b.lists, listCall{page: 0, size: size})
		assert.True(t, p.View().Buttons[0].Active)
	}
}

func TestSetPageSize_RejectsUnknownSize(t *testing.T) {
	b := newFake(3)
	p := New(b, NewPaginationState(5), Options{})

	err := p.SetPageSize(context.Background(), 7)
	assert.ErrorIs(t, err, ErrInvalidPageSize)
	assert.Empty(t, b.lists)
	assert.Equal(t, 5, p.State().PageSize)
	assert.Equal(t, Notice(err), p.View().Notice)
}

func TestSetPage(t *testing.T) {
	b := newFake(12)
	p := New(b, NewPaginationState(5), Options{})

	require.NoError(t, p.SetPage(context.Background(), 2))
	assert.Equal(t, listCall{page: 2, size: 5}, b.lastList())

	v := p.View()
	assert.Equal(t, 2, v.PageNumber)
	require.Len(t, v.Rows, 2)
	assert.Equal(t, int64(11), v.Rows[0].ID)
	assert.True(t, v.Buttons[2].Active)

	assert.ErrorIs(t, p.SetPage(context.Background(), -1), ErrInvalidPage)
}

func TestRefreshCount_ClampsPastLastPage(t *testing.T) {
	b := newFake(6)
	p := New(b, NewPaginationState(5), Options{})
	require.NoError(t, p.SetPage(context.Background(), 1))
	require.Len(t, p.View().Rows, 1)

	// deleting the only row on page 2 moves back to page 1
	require.NoError(t, p.DeleteRow(context.Background(), 6))

	v := p.View()
	assert.Equal(t, 0, v.PageNumber)
	assert.Len(t, v.Rows, 5)
	require.Len(t, v.Buttons, 1)
	assert.True(t, v.Buttons[0].Active)
	assert.Equal(t, 5, *v.TotalCount)
}

func TestRefreshCount_Error(t *testing.T) {
	b := newFake(3)
	b.failCount = errBackendDown
	p := New(b, NewPaginationState(5), Options{})

	err := p.Refresh(context.Background())
	assert.ErrorIs(t, err, errBackendDown)

	v := p.View()
	assert.Nil(t, v.TotalCount)
	assert.Len(t, v.Rows, 3)
	assert.Empty(t, v.Buttons)
	assert.NotEmpty(t, v.Notice)
}
