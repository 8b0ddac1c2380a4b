// Package pagination computes fixed-size page windows over in-memory lists.
package pagination

import (
	"net/url"
	"strconv"

	appErrors "reminer-backend/pkg/errors"
)

// Params is a 1-based page request.
type Params struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Page is one window of a list plus the page count of the whole list.
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalPages int `json:"total_pages"`
}

// ParseParams reads page and page_size from query. Absent values take the
// defaults; present values must be positive integers.
func ParseParams(query url.Values, defaultPageSize int) (Params, error) {
	p := Params{Page: 1, PageSize: defaultPageSize}

	if raw := query.Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return Params{}, appErrors.NewValidationf("page must be a positive integer, got %q", raw)
		}
		p.Page = v
	}
	if raw := query.Get("page_size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return Params{}, appErrors.NewValidationf("page_size must be a positive integer, got %q", raw)
		}
		p.PageSize = v
	}
	return p, nil
}

// TotalPages is ceil(total / pageSize).
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total-1)/pageSize + 1
}

// Paginate returns items[(page-1)*pageSize : page*pageSize] clamped to the
// list. A page past the end is empty, never an error.
func Paginate[T any](items []T, p Params) Page[T] {
	out := Page[T]{Items: []T{}, TotalPages: TotalPages(len(items), p.PageSize)}
	// Past the last page. This also bounds the offset below.
	if p.Page < 1 || p.PageSize < 1 || p.Page > out.TotalPages {
		return out
	}

	start := (p.Page - 1) * p.PageSize
	end := len(items)
	if p.PageSize < end-start {
		end = start + p.PageSize
	}
	out.Items = items[start:end]
	return out
}
