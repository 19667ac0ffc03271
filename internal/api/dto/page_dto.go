package dto

// FilterRequest replaces a page's filter state.
type FilterRequest struct {
	Search  string            `json:"search"`
	Filters map[string]string `json:"filters"`
}

// SelectRequest toggles one row.
type SelectRequest struct {
	ID      string `json:"id"`
	Checked bool   `json:"checked"`
}

// SelectAllRequest selects or clears the filtered view.
type SelectAllRequest struct {
	Checked bool `json:"checked"`
}

// SelectionResponse reports the selection after a change.
type SelectionResponse struct {
	Selected []string `json:"selected"`
}
