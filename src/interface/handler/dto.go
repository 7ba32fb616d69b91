package handler

import (
	"time"

	"memo-notion-api/src/domain"
)

// CreateMemoRequestDTO represents the request payload for creating a memo
type CreateMemoRequestDTO struct {
	Content string   `json:"content" binding:"required"`
	Tags    []string `json:"tags"`
}

// UpdateMemoRequestDTO represents the request payload for updating a memo
type UpdateMemoRequestDTO struct {
	Content *string  `json:"content,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// MemoResponseDTO represents one memo in API responses
type MemoResponseDTO struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SuccessResponseDTO is the success envelope of every endpoint
type SuccessResponseDTO struct {
	Status  string      `json:"status"`
	Results *int        `json:"results,omitempty"`
	Data    interface{} `json:"data"`
}

// ErrorResponseDTO is the error envelope of every endpoint
type ErrorResponseDTO struct {
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// NewErrorResponse builds the error envelope
func NewErrorResponse(statusCode int, message string) ErrorResponseDTO {
	return ErrorResponseDTO{
		Status:     "error",
		StatusCode: statusCode,
		Message:    message,
	}
}

func toMemoResponseDTO(memo *domain.MemoRecord) MemoResponseDTO {
	tags := memo.Tags
	if tags == nil {
		tags = []string{}
	}
	return MemoResponseDTO{
		ID:        memo.ID,
		Content:   memo.Content,
		Tags:      tags,
		CreatedAt: memo.CreatedAt,
		UpdatedAt: memo.UpdatedAt,
	}
}

func toMemoResponseDTOs(memos []domain.MemoRecord) []MemoResponseDTO {
	dtos := make([]MemoResponseDTO, 0, len(memos))
	for i := range memos {
		dtos = append(dtos, toMemoResponseDTO(&memos[i]))
	}
	return dtos
}
