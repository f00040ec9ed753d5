// internal/domain/common/pagination.go
package common

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultLimit     = 10
	MaxLimit         = 100
	DefaultPage      = 1
	DefaultSortField = "createdAt"
)

// SortOrder is the direction of one sort key.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortField is one (field, direction) pair.
type SortField struct {
	Field string    `json:"field"`
	Order SortOrder `json:"order"`
}

// RawPageRequest is the untrusted, string-typed paging input as received
// from a query string.
type RawPageRequest struct {
	SortBy   string // "price:desc,name:asc"
	Limit    string
	Page     string
	Populate string // "category,category.parent"
}

// PageRequest is a normalized paging request. Build it with
// NormalizePageRequest or NewPageRequest; the zero value is not normalized.
type PageRequest struct {
	Sort     []SortField `json:"sort"`
	Limit    int         `json:"limit"`
	Page     int         `json:"page"`
	Populate []string    `json:"populate,omitempty"`
}

// NormalizePageRequest applies the paging policy:
//   - sortBy: comma separated "field:dir"; dir "desc" is descending, anything
//     else ascending; default createdAt ascending
//   - limit: missing, non-numeric or <= 0 becomes 10, then capped at 100
//   - page: missing, non-numeric or <= 0 becomes 1, never capped
//
// When sortable is non-empty, sort fields outside it are dropped.
// Malformed input never produces an error.
func NormalizePageRequest(raw RawPageRequest, sortable ...string) PageRequest {
	return PageRequest{
		Sort:     parseSortBy(raw.SortBy, sortable),
		Limit:    normalizeLimit(parsePositive(raw.Limit)),
		Page:     normalizePage(parsePositive(raw.Page)),
		Populate: parsePopulate(raw.Populate),
	}
}

// NewPageRequest normalizes already-typed paging values.
func NewPageRequest(page, limit int, sort ...SortField) PageRequest {
	req := PageRequest{
		Limit: normalizeLimit(limit),
		Page:  normalizePage(page),
	}
	for _, s := range sort {
		f := strings.TrimSpace(s.Field)
		if f == "" {
			continue
		}
		order := SortAsc
		if s.Order == SortDesc {
			order = SortDesc
		}
		req.Sort = append(req.Sort, SortField{Field: f, Order: order})
	}
	if len(req.Sort) == 0 {
		req.Sort = defaultSort()
	}
	return req
}

// Skip is the number of matching documents before this page. It saturates at
// math.MaxInt for pages too far out to address.
func (p PageRequest) Skip() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// WithPopulate returns a copy carrying the given relation paths.
func (p PageRequest) WithPopulate(paths ...string) PageRequest {
	p.Populate = parsePopulate(strings.Join(paths, ","))
	return p
}

// Populates reports whether path (or a nested path under it) was requested.
func (p PageRequest) Populates(path string) bool {
	for _, v := range p.Populate {
		if v == path || strings.HasPrefix(v, path+".") {
			return true
		}
	}
	return false
}

// ----------------------------------------
// PageResult
// ----------------------------------------

// PageResult is the page envelope returned by every list operation.
type PageResult[T any] struct {
	Results      []T  `json:"results"`
	Page         int  `json:"page"`
	Limit        int  `json:"limit"`
	TotalPages   int  `json:"totalPages"`
	TotalResults int  `json:"totalResults"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
}

// NewPageResult assembles the envelope from a normalized request, the page's
// rows and the total count of matching rows.
func NewPageResult[T any](req PageRequest, results []T, totalResults int) PageResult[T] {
	if results == nil {
		results = []T{}
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if totalResults < 0 {
		totalResults = 0
	}

	totalPages := 0
	if totalResults > 0 {
		totalPages = (totalResults + limit - 1) / limit
	}

	return PageResult[T]{
		Results:      results,
		Page:         req.Page,
		Limit:        limit,
		TotalPages:   totalPages,
		TotalResults: totalResults,
		HasNextPage:  req.Page < totalPages,
		HasPrevPage:  req.Page > 1,
	}
}

// MapPage converts the rows of a page, keeping the metadata.
func MapPage[T, U any](in PageResult[T], fn func(T) U) PageResult[U] {
	out := PageResult[U]{
		Results:      make([]U, 0, len(in.Results)),
		Page:         in.Page,
		Limit:        in.Limit,
		TotalPages:   in.TotalPages,
		TotalResults: in.TotalResults,
		HasNextPage:  in.HasNextPage,
		HasPrevPage:  in.HasPrevPage,
	}
	for _, v := range in.Results {
		out.Results = append(out.Results, fn(v))
	}
	return out
}

// ----------------------------------------
// helpers
// ----------------------------------------

func defaultSort() []SortField {
	return []SortField{{Field: DefaultSortField, Order: SortAsc}}
}

func parseSortBy(s string, sortable []string) []SortField {
	var out []SortField
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		field, dir, _ := strings.Cut(part, ":")
		field = strings.TrimSpace(field)
		if field == "" || !allowed(field, sortable) {
			continue
		}
		order := SortAsc
		if strings.TrimSpace(dir) == "desc" {
			order = SortDesc
		}
		out = append(out, SortField{Field: field, Order: order})
	}
	if len(out) == 0 {
		return defaultSort()
	}
	return out
}

func allowed(field string, sortable []string) bool {
	if len(sortable) == 0 {
		return true
	}
	for _, s := range sortable {
		if s == field {
			return true
		}
	}
	return false
}

func parsePositive(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func normalizeLimit(n int) int {
	if n <= 0 {
		return DefaultLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

func normalizePage(n int) int {
	if n <= 0 {
		return DefaultPage
	}
	return n
}

func parsePopulate(s string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, p := range strings.Split(s, ",") {
		p = strings.Trim(strings.TrimSpace(p), ".")
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
