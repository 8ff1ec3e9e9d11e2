package models

// BestsellerItem is one entry of a ranked top-10 list. Items are immutable
// once produced; extraction deduplicates them by Title (first seen wins).
type BestsellerItem struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Publisher string `json:"publisher"`
	ISBN13    string `json:"isbn13"`
	Cover     string `json:"cover"`
	Link      string `json:"link"`
}

// SourceListResponse lists the source keys the aggregator knows about.
type SourceListResponse struct {
	Sources []string `json:"sources"`
}

// ErrorResponse represents error responses
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
