// Package pagination normalizes page/limit query parameters.
package pagination

// Params is a normalized page request.
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// New clamps page to at least 1 and limit to 1..max, substituting def when
// limit is not positive.
func New(page, limit, def, max int) Params {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return Params{Page: page, Limit: limit}
}

// Offset returns the number of rows to skip.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages returns how many pages hold total rows.
func (p Params) TotalPages(total int64) int {
	if p.Limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}
