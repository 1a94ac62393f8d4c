// Package pagination parses the page/limit query parameters shared by the
// list endpoints and turns them into offset math for the repositories.
package pagination

import "strconv"

// Params is the normalized pagination state. Page is zero-based.
type Params struct {
	Page  int
	Limit int
}

// Parse builds Params from raw query values, falling back to defLimit when
// limit is absent or malformed. Negative or garbage values collapse to the
// first page.
func Parse(pageStr, limitStr string, defLimit int) Params {
	p := Params{Page: 0, Limit: defLimit}

	if n, err := strconv.Atoi(pageStr); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
		p.Limit = n
	}
	return p
}

// Offset returns the row offset for the current page.
func (p Params) Offset() int {
	return p.Page * p.Limit
}
