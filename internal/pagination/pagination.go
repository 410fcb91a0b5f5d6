// Package pagination implements the page/limit contract shared by every
// list endpoint.
package pagination

import (
	"strconv"

	"github.com/iliyamo/food-ordering/internal/apperror"
)

const (
	DefaultPage  = 1
	DefaultLimit = 5
)

// Meta is rendered next to list data in the response envelope.
type Meta struct {
	CurrentPage  int `json:"current_page"`
	TotalPages   int `json:"total_pages"`
	TotalItems   int `json:"total_items"`
	ItemsPerPage int `json:"items_per_page"`
}

// Params is a parsed page request.
type Params struct {
	Page  int
	Limit int
}

// Skip is the number of rows before the requested page.
func (p Params) Skip() int { return (p.Page - 1) * p.Limit }

// Parse reads raw query values. Missing or malformed values fall back to
// the defaults and anything below 1 is raised to 1.
func Parse(page, limit string) Params {
	return Params{Page: atoiFloor(page, DefaultPage), Limit: atoiFloor(limit, DefaultLimit)}
}

func atoiFloor(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	if n < 1 {
		return 1
	}
	return n
}

// Resolve checks p against total. An empty first page yields NotFound with
// emptyMsg; a page past the end yields PageExceeded.
func Resolve(p Params, total int, emptyMsg string) (Meta, error) {
	pages := (total + p.Limit - 1) / p.Limit
	meta := Meta{CurrentPage: p.Page, TotalPages: pages, TotalItems: total, ItemsPerPage: p.Limit}
	if total == 0 {
		if p.Page == 1 {
			return meta, apperror.NotFound("%s", emptyMsg)
		}
		return meta, apperror.PageExceeded("Page %d exceeds the total pages %d", p.Page, pages)
	}
	if p.Page > pages {
		return meta, apperror.PageExceeded("Page %d exceeds the total pages %d", p.Page, pages)
	}
	return meta, nil
}
