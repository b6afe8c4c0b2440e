package domain

import "time"

type Document struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type,omitempty"`
	Description string    `json:"description,omitempty"`
	StorageURI  string    `json:"storage_uri"`
	OwnerID     string    `json:"owner_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type SearchResult struct {
	Results    []*Document `json:"results"`
	TotalCount int64       `json:"total_count"`
}
