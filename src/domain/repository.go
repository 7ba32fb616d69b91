package domain

import (
	"context"
	"errors"
)

// ErrExternalService wraps any failure returned by the external document
// service, including transport errors, authentication failures and
// rate limiting. Sub-kinds are not distinguished.
var ErrExternalService = errors.New("external service error")

// MemoRepository defines the interface for memo data operations
type MemoRepository interface {
	Create(ctx context.Context, content string, tags []string) (*MemoRecord, error)
	List(ctx context.Context, filter MemoFilter) ([]MemoRecord, error)
	Update(ctx context.Context, id string, update MemoUpdate) (*MemoRecord, error)
	Archive(ctx context.Context, id string) error
}
