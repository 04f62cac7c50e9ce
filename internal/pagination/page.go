package pagination

// Page is the envelope every paginated listing returns. The metadata is
// computed per call, never stored.
type Page[T any] struct {
	Data       []T  `json:"data"`
	FirstPage  int  `json:"firstPage"`
	PrevPage   *int `json:"prevPage"`
	NextPage   *int `json:"nextPage"`
	LastPage   int  `json:"lastPage"`
	TotalPages int  `json:"totalPages"`
	TotalItems int  `json:"totalItems"`
}

// NewPage slices items for the requested page and fills in the cursor
// metadata. page is assumed to be normalized (>= 1) and perPage positive.
func NewPage[T any](items []T, page, perPage int) Page[T] {
	totalItems := len(items)
	totalPages := (totalItems + perPage - 1) / perPage

	start := (page - 1) * perPage
	if start > totalItems {
		start = totalItems
	}

	end := start + perPage
	if end > totalItems {
		end = totalItems
	}

	data := items[start:end]
	if data == nil {
		data = []T{}
	}

	p := Page[T]{
		Data:       data,
		FirstPage:  1,
		LastPage:   totalPages,
		TotalPages: totalPages,
		TotalItems: totalItems,
	}

	if page > 1 {
		prev := page - 1
		p.PrevPage = &prev
	}

	if page < totalPages {
		next := page + 1
		p.NextPage = &next
	}

	return p
}
