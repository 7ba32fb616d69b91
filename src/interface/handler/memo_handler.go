package handler

import (
	"errors"
	"net/http"
	"strconv"

	"memo-notion-api/src/domain"
	"memo-notion-api/src/usecase"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// MemoHandler handles HTTP requests for memo operations
type MemoHandler struct {
	memoUsecase usecase.MemoUsecase
	logger      *logrus.Logger
}

// NewMemoHandler creates a new memo handler
func NewMemoHandler(memoUsecase usecase.MemoUsecase, logger *logrus.Logger) *MemoHandler {
	return &MemoHandler{
		memoUsecase: memoUsecase,
		logger:      logger,
	}
}

// Health reports service liveness
func (h *MemoHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CreateMemo creates a new memo
func (h *MemoHandler) CreateMemo(c *gin.Context) {
	var req CreateMemoRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("リクエストのバインドに失敗")

		message := "Invalid request body"
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			message = "Content is required"
		}
		c.JSON(http.StatusBadRequest, NewErrorResponse(http.StatusBadRequest, message))
		return
	}

	memo, err := h.memoUsecase.CreateMemo(c.Request.Context(), usecase.CreateMemoRequest{
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		h.respondError(c, err, "メモの作成に失敗")
		return
	}

	h.logger.WithField("memo_id", memo.ID).Info("メモを作成しました")
	c.JSON(http.StatusCreated, SuccessResponseDTO{
		Status: "success",
		Data:   gin.H{"memo": toMemoResponseDTO(memo)},
	})
}

// ListMemos retrieves memos with an optional tag filter
func (h *MemoHandler) ListMemos(c *gin.Context) {
	filter := domain.MemoFilter{Tag: c.Query("tag")}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(http.StatusBadRequest, "Limit must be a number"))
			return
		}
		filter.Limit = limit
	}

	memos, err := h.memoUsecase.ListMemos(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err, "メモ一覧の取得に失敗")
		return
	}

	results := len(memos)
	c.JSON(http.StatusOK, SuccessResponseDTO{
		Status:  "success",
		Results: &results,
		Data:    gin.H{"memos": toMemoResponseDTOs(memos)},
	})
}

// UpdateMemo updates an existing memo
func (h *MemoHandler) UpdateMemo(c *gin.Context) {
	id := c.Param("id")

	var req UpdateMemoRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("リクエストのバインドに失敗")
		c.JSON(http.StatusBadRequest, NewErrorResponse(http.StatusBadRequest, "Invalid request body"))
		return
	}

	memo, err := h.memoUsecase.UpdateMemo(c.Request.Context(), id, usecase.UpdateMemoRequest{
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		h.respondError(c, err, "メモの更新に失敗")
		return
	}

	h.logger.WithField("memo_id", id).Info("メモを更新しました")
	c.JSON(http.StatusOK, SuccessResponseDTO{
		Status: "success",
		Data:   gin.H{"memo": toMemoResponseDTO(memo)},
	})
}

// ArchiveMemo archives a memo (soft delete)
func (h *MemoHandler) ArchiveMemo(c *gin.Context) {
	id := c.Param("id")

	if err := h.memoUsecase.ArchiveMemo(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "メモのアーカイブに失敗")
		return
	}

	h.logger.WithField("memo_id", id).Info("メモをアーカイブしました")
	c.JSON(http.StatusOK, SuccessResponseDTO{
		Status: "success",
		Data:   gin.H{"success": true},
	})
}

// respondError maps usecase validation sentinels to 400 and every
// repository failure to 500
func (h *MemoHandler) respondError(c *gin.Context, err error, logMessage string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrContentRequired),
		errors.Is(err, usecase.ErrIDRequired),
		errors.Is(err, usecase.ErrNothingToUpdate),
		errors.Is(err, usecase.ErrInvalidLimit):
		status = http.StatusBadRequest
		h.logger.WithError(err).Warn(logMessage)
	default:
		h.logger.WithError(err).Error(logMessage)
	}

	c.JSON(status, NewErrorResponse(status, err.Error()))
}
