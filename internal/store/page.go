package store

// MaxPage bounds client-supplied page numbers so offsets stay small.
const MaxPage = 10000

// Page is one window of a sorted listing.
type Page[T any] struct {
	Items   []*T  `json:"items"`
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"has_more"`
}

// NewPage builds a Page from a one-based page number.
func NewPage[T any](items []*T, page, limit int, total int64) *Page[T] {
	if items == nil {
		items = []*T{}
	}
	return &Page[T]{
		Items:   items,
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasMore: int64(page)*int64(limit) < total,
	}
}

// Window converts a one-based page and a limit into a PageQuery, clamping
// page into [1, MaxPage] and limit into [1, max], falling back to def when
// limit is not positive.
func Window(page, limit, def, max int) (int, PageQuery) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return page, PageQuery{Offset: (page - 1) * limit, Limit: limit}
}
