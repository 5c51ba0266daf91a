package types

// PaginationResponse describes a keyset page. Pass NextAfterID as after_id to
// fetch the following page.
type PaginationResponse struct {
	Limit       int    `json:"limit,omitempty"`
	NextAfterID string `json:"next_after_id,omitempty"`
	HasMore     bool   `json:"has_more"`
}

// NewPaginationResponse builds the page metadata for a result of count items
// ending at lastID. A full page may be followed by more items.
func NewPaginationResponse(lastID string, count, limit int) PaginationResponse {
	if limit <= 0 || count < limit {
		return PaginationResponse{Limit: limit}
	}
	return PaginationResponse{
		Limit:       limit,
		NextAfterID: lastID,
		HasMore:     true,
	}
}
