package domain

import (
	"time"
)

// MemoRecord represents a memo stored as a page in the external document service
type MemoRecord struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MemoFilter represents filter criteria for memo queries
type MemoFilter struct {
	Tag   string
	Limit int
}

// MemoUpdate represents a partial update of a memo.
// A nil Content leaves the body untouched; a nil Tags slice leaves the
// tags untouched, while a non-nil empty slice clears them wholesale.
type MemoUpdate struct {
	Content *string
	Tags    []string
}
