package usecase

import (
	"context"
	"errors"

	"memo-notion-api/src/domain"
)

var (
	ErrContentRequired = errors.New("content is required")
	ErrIDRequired      = errors.New("memo id is required")
	ErrNothingToUpdate = errors.New("content or tags is required for update")
	ErrInvalidLimit    = errors.New("limit must be between 1 and 100")
)

const (
	// DefaultListLimit bounds a listing when the caller gives no limit
	DefaultListLimit = 50
	// MaxListLimit is the largest page size a caller may request
	MaxListLimit = 100
)

// CreateMemoRequest represents input for creating a memo
type CreateMemoRequest struct {
	Content string
	Tags    []string
}

// UpdateMemoRequest represents input for updating a memo. At least one
// of Content and Tags must be present.
type UpdateMemoRequest struct {
	Content *string
	Tags    []string
}

// MemoUsecase defines the interface for memo business logic
type MemoUsecase interface {
	CreateMemo(ctx context.Context, req CreateMemoRequest) (*domain.MemoRecord, error)
	ListMemos(ctx context.Context, filter domain.MemoFilter) ([]domain.MemoRecord, error)
	UpdateMemo(ctx context.Context, id string, req UpdateMemoRequest) (*domain.MemoRecord, error)
	ArchiveMemo(ctx context.Context, id string) error
}

type memoUsecase struct {
	memoRepo domain.MemoRepository
}

// NewMemoUsecase creates a new memo usecase
func NewMemoUsecase(memoRepo domain.MemoRepository) MemoUsecase {
	return &memoUsecase{
		memoRepo: memoRepo,
	}
}

// CreateMemo creates a new memo. Tags are passed through verbatim: no
// deduplication, no name validation.
func (u *memoUsecase) CreateMemo(ctx context.Context, req CreateMemoRequest) (*domain.MemoRecord, error) {
	if req.Content == "" {
		return nil, ErrContentRequired
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	return u.memoRepo.Create(ctx, req.Content, tags)
}

// ListMemos retrieves memos with an optional tag filter
func (u *memoUsecase) ListMemos(ctx context.Context, filter domain.MemoFilter) ([]domain.MemoRecord, error) {
	if filter.Limit == 0 {
		filter.Limit = DefaultListLimit
	}
	if filter.Limit < 0 || filter.Limit > MaxListLimit {
		return nil, ErrInvalidLimit
	}

	return u.memoRepo.List(ctx, filter)
}

// UpdateMemo updates an existing memo. A mid-sequence failure in the
// repository can leave title and body mismatched; recovery is retrying
// the whole update, which is idempotent.
func (u *memoUsecase) UpdateMemo(ctx context.Context, id string, req UpdateMemoRequest) (*domain.MemoRecord, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if req.Content == nil && req.Tags == nil {
		return nil, ErrNothingToUpdate
	}
	if req.Content != nil && *req.Content == "" {
		return nil, ErrContentRequired
	}

	return u.memoRepo.Update(ctx, id, domain.MemoUpdate{
		Content: req.Content,
		Tags:    req.Tags,
	})
}

// ArchiveMemo archives a memo (soft delete)
func (u *memoUsecase) ArchiveMemo(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	return u.memoRepo.Archive(ctx, id)
}
