package pagination

import (
	"strconv"
	"strings"
)

const (
	DefaultPage     = 1
	DefaultPerPage  = 10
	MaxPerPage      = 100
	MaxVisiblePages = 5
)

// Params is a 1-based page request.
type Params struct {
	Page    int
	PerPage int
}

// Meta describes a page of results for list endpoints.
type Meta struct {
	Page         int   `json:"page"`
	PerPage      int   `json:"per_page"`
	Total        int64 `json:"total"`
	TotalPages   int   `json:"total_pages"`
	VisiblePages []int `json:"visible_pages"`
	CanGoBack    bool  `json:"can_go_back"`
	CanGoForward bool  `json:"can_go_forward"`
}

// Parse reads raw page/perPage query values, falling back to defaults on
// anything missing or invalid.
func Parse(page, perPage string) Params {
	p := Params{Page: atoiOr(page, DefaultPage), PerPage: atoiOr(perPage, DefaultPerPage)}
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

func (p Params) Limit() int {
	return p.PerPage
}

// Range returns the inclusive row bounds of the page.
func (p Params) Range() (from, to int) {
	from = p.Offset()
	return from, from + p.PerPage - 1
}

func (p Params) Meta(total int64) Meta {
	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	}
	return Meta{
		Page:         p.Page,
		PerPage:      p.PerPage,
		Total:        total,
		TotalPages:   totalPages,
		VisiblePages: VisiblePages(p.Page, totalPages),
		CanGoBack:    p.Page > 1,
		CanGoForward: p.Page < totalPages,
	}
}

// VisiblePages returns a window of at most MaxVisiblePages page numbers
// centred on current when possible.
func VisiblePages(current, totalPages int) []int {
	if totalPages <= 0 {
		return []int{}
	}
	start := max(1, current-MaxVisiblePages/2)
	end := min(totalPages, start+MaxVisiblePages-1)
	if end-start+1 < MaxVisiblePages {
		start = max(1, end-MaxVisiblePages+1)
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}

func atoiOr(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return n
}
