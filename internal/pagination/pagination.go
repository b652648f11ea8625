// Package pagination holds the offset/limit arithmetic and the page button layout of
// the meters table.
package pagination

import "strconv"

// Jump is how many pages an ellipsis button skips.
const Jump = 3

// Cursor is an offset/limit window over a server-counted list.
type Cursor struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// Page is the 1-based page the offset points into.
func (c Cursor) Page() int {
	if c.Limit <= 0 {
		return 1
	}
	return c.Offset/c.Limit + 1
}

func (c Cursor) TotalPages() int {
	if c.Limit <= 0 || c.Total <= 0 {
		return 0
	}
	return (c.Total + c.Limit - 1) / c.Limit
}

func (c Cursor) HasNext() bool { return c.Offset+c.Limit < c.Total }
func (c Cursor) HasPrev() bool { return c.Offset > 0 }

// OffsetFor converts a 1-based page into an offset. Pages below 1 map to offset 0;
// there is no upper bound check.
func OffsetFor(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}

type Kind string

const (
	KindPage         Kind = "page"
	KindBackEllipsis Kind = "back-ellipsis"
	KindFwdEllipsis  Kind = "fwd-ellipsis"
)

// Button is one control under the table. Page is the page it navigates to.
type Button struct {
	Kind   Kind   `json:"kind"`
	Page   int    `json:"page"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// Buttons lays out: first page, a back jump when current > 3, the window
// current-1..current+1 clamped to [2, total-1], a forward jump when
// current < total-2, and the last page. Nothing is shown for a single page.
func Buttons(current, totalPages int) []Button {
	if totalPages <= 1 {
		return nil
	}

	out := []Button{pageButton(1, current)}

	if current > Jump {
		out = append(out, Button{Kind: KindBackEllipsis, Page: current - Jump, Label: "..."})
	}

	start := max(current-1, 2)
	end := min(current+1, totalPages-1)
	for p := start; p <= end; p++ {
		out = append(out, pageButton(p, current))
	}

	if current < totalPages-2 {
		out = append(out, Button{Kind: KindFwdEllipsis, Page: current + Jump, Label: "..."})
	}

	return append(out, pageButton(totalPages, current))
}

func pageButton(p, current int) Button {
	return Button{Kind: KindPage, Page: p, Label: strconv.Itoa(p), Active: p == current}
}
