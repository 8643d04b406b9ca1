package pagination

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 250
)

// Page is a normalized offset pagination request.
type Page struct {
	Page  int
	Limit int
}

// Normalize clamps page/limit to sane values. Malformed or non-positive
// values fall back to the defaults.
func Normalize(page, limit int) Page {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Page: page, Limit: limit}
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages returns ceil(total/limit). A zero total yields zero pages.
func (p Page) TotalPages(total int64) int {
	if total <= 0 {
		return 0
	}
	pages := total / int64(p.Limit)
	if total%int64(p.Limit) != 0 {
		pages++
	}
	return int(pages)
}
