package repository

import (
	"context"
	"fmt"

	"memo-notion-api/src/domain"
	"memo-notion-api/src/notion"

	"github.com/sirupsen/logrus"
)

// NotionMemoRepository implements domain.MemoRepository against the
// external document service. Every operation is a single attempt: no
// retry, no rollback. The service itself is the system of record.
type NotionMemoRepository struct {
	client      *notion.Client
	databaseID  string
	contentProp string
	tagProp     string
	logger      *logrus.Logger
}

// NewNotionMemoRepository creates a new memo repository
func NewNotionMemoRepository(client *notion.Client, databaseID, contentProp, tagProp string, logger *logrus.Logger) domain.MemoRepository {
	return &NotionMemoRepository{
		client:      client,
		databaseID:  databaseID,
		contentProp: contentProp,
		tagProp:     tagProp,
		logger:      logger,
	}
}

// Create creates a memo as one combined page-create call (properties
// plus initial children), so a failed create leaves no orphan. The
// caller's content and tags are kept verbatim in the result; only id
// and timestamps come from the server response.
func (r *NotionMemoRepository) Create(ctx context.Context, content string, tags []string) (*domain.MemoRecord, error) {
	req := notion.CreatePageRequest{
		Parent:     notion.Parent{DatabaseID: r.databaseID},
		Properties: notion.EncodeProperties(content, tags, r.contentProp, r.tagProp),
		Children:   []notion.Block{notion.ContentBlock(content)},
	}

	page, err := r.client.CreatePage(ctx, req)
	if err != nil {
		r.logger.WithError(err).Error("メモの作成に失敗")
		return nil, fmt.Errorf("%w: create memo: %v", domain.ErrExternalService, err)
	}

	if tags == nil {
		tags = []string{}
	}
	record := &domain.MemoRecord{
		ID:        page.ID,
		Content:   content,
		Tags:      tags,
		CreatedAt: page.CreatedTime,
		UpdatedAt: page.LastEditedTime,
	}

	r.logger.WithField("memo_id", page.ID).Info("メモを作成しました")
	return record, nil
}

// List runs one bounded query sorted by creation time descending, then
// fetches each result's child blocks sequentially before decoding.
// The first sub-call failure aborts the whole listing; a partial list
// is never returned.
func (r *NotionMemoRepository) List(ctx context.Context, filter domain.MemoFilter) ([]domain.MemoRecord, error) {
	req := notion.QueryRequest{
		Sorts:    []notion.Sort{{Timestamp: "created_time", Direction: "descending"}},
		PageSize: filter.Limit,
	}
	if filter.Tag != "" {
		req.Filter = &notion.Filter{
			Property:    r.tagProp,
			MultiSelect: &notion.MultiSelectCondition{Contains: filter.Tag},
		}
	}

	pages, err := r.client.QueryDatabase(ctx, r.databaseID, req)
	if err != nil {
		r.logger.WithError(err).Error("メモ一覧の取得に失敗")
		return nil, fmt.Errorf("%w: list memos: %v", domain.ErrExternalService, err)
	}

	records := make([]domain.MemoRecord, 0, len(pages))
	for _, page := range pages {
		blocks, err := r.client.ListBlockChildren(ctx, page.ID)
		if err != nil {
			r.logger.WithError(err).WithField("memo_id", page.ID).Error("ブロックの取得に失敗")
			return nil, fmt.Errorf("%w: fetch memo blocks: %v", domain.ErrExternalService, err)
		}
		records = append(records, notion.DecodeRecord(page, blocks, r.contentProp, r.tagProp))
	}

	return records, nil
}

// Update runs as a two-phase sequence: first the property patch (title
// when content is given, wholesale multi-select when tags are given),
// then the block replacement when content is given. The phases are not
// atomic; a failure between them leaves title and body mismatched, and
// is surfaced so the caller can retry the whole update. Re-running with
// the same content re-derives the same title and replaces the blocks
// again, converging to a consistent state.
func (r *NotionMemoRepository) Update(ctx context.Context, id string, update domain.MemoUpdate) (*domain.MemoRecord, error) {
	properties := map[string]notion.Property{}
	if update.Content != nil {
		properties[r.contentProp] = notion.TitleProperty(*update.Content)
	}
	if update.Tags != nil {
		properties[r.tagProp] = notion.TagsProperty(update.Tags)
	}

	if len(properties) > 0 {
		if _, err := r.client.UpdatePage(ctx, id, notion.UpdatePageRequest{Properties: properties}); err != nil {
			r.logger.WithError(err).WithField("memo_id", id).Error("メモのプロパティ更新に失敗")
			return nil, fmt.Errorf("%w: update memo properties: %v", domain.ErrExternalService, err)
		}
	}

	if update.Content != nil {
		if err := r.replaceContentBlocks(ctx, id, *update.Content); err != nil {
			r.logger.WithError(err).WithField("memo_id", id).Error("メモ本文の置き換えに失敗")
			return nil, fmt.Errorf("%w: replace memo content: %v", domain.ErrExternalService, err)
		}
	}

	// サーバー側のタグと更新時刻を反映するため、更新後のページを再取得する
	page, err := r.client.RetrievePage(ctx, id)
	if err != nil {
		r.logger.WithError(err).WithField("memo_id", id).Error("更新後のメモ取得に失敗")
		return nil, fmt.Errorf("%w: read back memo: %v", domain.ErrExternalService, err)
	}

	var blocks []notion.Block
	if update.Content == nil {
		blocks, err = r.client.ListBlockChildren(ctx, id)
		if err != nil {
			r.logger.WithError(err).WithField("memo_id", id).Error("ブロックの取得に失敗")
			return nil, fmt.Errorf("%w: fetch memo blocks: %v", domain.ErrExternalService, err)
		}
	}

	record := notion.DecodeRecord(*page, blocks, r.contentProp, r.tagProp)
	if update.Content != nil {
		record.Content = *update.Content
	}

	r.logger.WithField("memo_id", id).Info("メモを更新しました")
	return &record, nil
}

// replaceContentBlocks archives all existing children, then appends
// one new paragraph block with the full content
func (r *NotionMemoRepository) replaceContentBlocks(ctx context.Context, id, content string) error {
	blocks, err := r.client.ListBlockChildren(ctx, id)
	if err != nil {
		return err
	}
	for _, block := range blocks {
		if err := r.client.DeleteBlock(ctx, block.ID); err != nil {
			return err
		}
	}
	return r.client.AppendBlockChildren(ctx, id, []notion.Block{notion.ContentBlock(content)})
}

// Archive marks a memo archived (soft delete). The service retains the
// archived page; no un-archive operation is exposed.
func (r *NotionMemoRepository) Archive(ctx context.Context, id string) error {
	archived := true
	if _, err := r.client.UpdatePage(ctx, id, notion.UpdatePageRequest{Archived: &archived}); err != nil {
		r.logger.WithError(err).WithField("memo_id", id).Error("メモのアーカイブに失敗")
		return fmt.Errorf("%w: archive memo: %v", domain.ErrExternalService, err)
	}

	r.logger.WithField("memo_id", id).Info("メモをアーカイブしました")
	return nil
}
