package repository_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"memo-notion-api/src/domain"
	"memo-notion-api/src/infrastructure/repository"
	"memo-notion-api/src/notion"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testDatabaseID  = "db-1"
	testContentProp = "Content"
	testTagProp     = "Tags"
)

// fakeNotion は外部ドキュメントサービスの代役。受けた呼び出しを順に記録する
type fakeNotion struct {
	handlers map[string]http.HandlerFunc
	calls    []string
}

func newFakeNotion() *fakeNotion {
	return &fakeNotion{handlers: map[string]http.HandlerFunc{}}
}

func (f *fakeNotion) handle(pattern string, h func(w http.ResponseWriter, r *http.Request)) {
	f.handlers[pattern] = h
}

// ServeHTTP は "METHOD /path" 形式のパターンへ自前で振り分ける
// (Go 1.22 の ServeMux メソッドパターン相当。Go 1.21 では未対応のため)
func (f *fakeNotion) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h, ok := f.handlers[r.Method+" "+r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	w.Header().Set("Content-Type", "application/json")
	h(w, r)
}

func newTestRepo(t *testing.T, fake *fakeNotion) domain.MemoRepository {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client := notion.NewClient(notion.ClientOptions{BaseURL: srv.URL, APIKey: "secret"})

	log := logrus.New()
	log.SetOutput(io.Discard)

	return repository.NewNotionMemoRepository(client, testDatabaseID, testContentProp, testTagProp, log)
}

func pageJSON(id string) string {
	return `{
		"id": "` + id + `",
		"created_time": "2023-01-01T00:00:00Z",
		"last_edited_time": "2023-01-02T00:00:00Z"
	}`
}

func TestCreate(t *testing.T) {
	t.Run("1回の結合呼び出しでプロパティと本文を作成する", func(t *testing.T) {
		fake := newFakeNotion()
		var gotBody notion.CreatePageRequest
		fake.handle("POST /v1/pages", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.Write([]byte(pageJSON("page-1")))
		})
		repo := newTestRepo(t, fake)

		content := strings.Repeat("x", 150)
		record, err := repo.Create(context.Background(), content, []string{"a", "b"})

		require.NoError(t, err)
		assert.Equal(t, []string{"POST /v1/pages"}, fake.calls)

		// サーバー応答からはIDとタイムスタンプのみを取り込む
		assert.Equal(t, "page-1", record.ID)
		assert.Equal(t, content, record.Content)
		assert.Equal(t, []string{"a", "b"}, record.Tags)
		assert.Equal(t, "2023-01-01T00:00:00Z", record.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))

		// リクエスト本文: 切り詰めたタイトル、タグ、全文ブロック
		assert.Equal(t, testDatabaseID, gotBody.Parent.DatabaseID)
		title := gotBody.Properties[testContentProp].Title
		require.Len(t, title, 1)
		assert.Equal(t, strings.Repeat("x", 100), title[0].Text.Content)
		assert.Len(t, gotBody.Properties[testTagProp].MultiSelect, 2)
		require.Len(t, gotBody.Children, 1)
		assert.Equal(t, content, gotBody.Children[0].Paragraph.RichText[0].Text.Content)
	})

	t.Run("サービス呼び出しの失敗はExternalServiceErrorになる", func(t *testing.T) {
		fake := newFakeNotion()
		fake.handle("POST /v1/pages", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"message":"unavailable"}`))
		})
		repo := newTestRepo(t, fake)

		record, err := repo.Create(context.Background(), "hello", nil)

		require.Error(t, err)
		assert.Nil(t, record)
		assert.ErrorIs(t, err, domain.ErrExternalService)
	})
}

func TestList(t *testing.T) {
	queryResponse := `{
		"results": [
			{
				"id": "p1",
				"created_time": "2023-01-02T00:00:00Z",
				"last_edited_time": "2023-01-02T00:00:00Z",
				"properties": {
					"Content": {"type": "title", "title": [{"plain_text": "first (truncated)"}]},
					"Tags": {"type": "multi_select", "multi_select": [{"name": "a"}, {"name": "b"}]}
				}
			},
			{
				"id": "p2",
				"created_time": "2023-01-01T00:00:00Z",
				"last_edited_time": "2023-01-01T00:00:00Z",
				"properties": {
					"Content": {"type": "title", "title": [{"plain_text": "second (truncated)"}]}
				}
			}
		]
	}`

	t.Run("各ページのブロックを取得して全文をデコードする", func(t *testing.T) {
		fake := newFakeNotion()
		var gotQuery notion.QueryRequest
		fake.handle("POST /v1/databases/db-1/query", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotQuery))
			w.Write([]byte(queryResponse))
		})
		fake.handle("GET /v1/blocks/p1/children", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"results":[{"id":"b1","type":"paragraph","paragraph":{"rich_text":[{"plain_text":"first full content"}]}}]}`))
		})
		fake.handle("GET /v1/blocks/p2/children", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"results":[]}`))
		})
		repo := newTestRepo(t, fake)

		records, err := repo.List(context.Background(), domain.MemoFilter{Limit: 50})

		require.NoError(t, err)
		require.Len(t, records, 2)

		// 作成日時の降順（クエリ結果の順序）が保たれる
		assert.Equal(t, "p1", records[0].ID)
		assert.Equal(t, "p2", records[1].ID)

		// p1はブロックの全文、p2はタイトルへのフォールバック
		assert.Equal(t, "first full content", records[0].Content)
		assert.Equal(t, []string{"a", "b"}, records[0].Tags)
		assert.Equal(t, "second (truncated)", records[1].Content)
		assert.Empty(t, records[1].Tags)

		// クエリは作成日時の降順・上限付き
		require.Len(t, gotQuery.Sorts, 1)
		assert.Equal(t, "created_time", gotQuery.Sorts[0].Timestamp)
		assert.Equal(t, "descending", gotQuery.Sorts[0].Direction)
		assert.Equal(t, 50, gotQuery.PageSize)
		assert.Nil(t, gotQuery.Filter)
	})

	t.Run("タグフィルタはmulti_selectのcontains条件として送られる", func(t *testing.T) {
		fake := newFakeNotion()
		var gotQuery notion.QueryRequest
		fake.handle("POST /v1/databases/db-1/query", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotQuery))
			w.Write([]byte(`{"results":[]}`))
		})
		repo := newTestRepo(t, fake)

		records, err := repo.List(context.Background(), domain.MemoFilter{Tag: "work", Limit: 10})

		require.NoError(t, err)
		assert.Empty(t, records)
		require.NotNil(t, gotQuery.Filter)
		assert.Equal(t, testTagProp, gotQuery.Filter.Property)
		require.NotNil(t, gotQuery.Filter.MultiSelect)
		assert.Equal(t, "work", gotQuery.Filter.MultiSelect.Contains)
	})

	t.Run("ブロック取得の失敗時は部分的な結果を返さない", func(t *testing.T) {
		fake := newFakeNotion()
		fake.handle("POST /v1/databases/db-1/query", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(queryResponse))
		})
		fake.handle("GET /v1/blocks/p1/children", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"results":[]}`))
		})
		fake.handle("GET /v1/blocks/p2/children", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"boom"}`))
		})
		repo := newTestRepo(t, fake)

		records, err := repo.List(context.Background(), domain.MemoFilter{Limit: 50})

		require.Error(t, err)
		assert.Nil(t, records)
		assert.ErrorIs(t, err, domain.ErrExternalService)
	})
}

func TestUpdate(t *testing.T) {
	t.Run("コンテンツ更新はプロパティ更新とブロック置換の2段階で行う", func(t *testing.T) {
		fake := newFakeNotion()
		var gotProps notion.UpdatePageRequest
		var gotAppend struct {
			Children []notion.Block `json:"children"`
		}
		fake.handle("PATCH /v1/pages/page-1", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotProps))
			w.Write([]byte(pageJSON("page-1")))
		})
		fake.handle("GET /v1/blocks/page-1/children", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"results":[{"id":"b1","type":"paragraph","paragraph":{"rich_text":[{"plain_text":"old"}]}}]}`))
		})
		fake.handle("DELETE /v1/blocks/b1", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		})
		fake.handle("PATCH /v1/blocks/page-1/children", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotAppend))
			w.Write([]byte(`{}`))
		})
		fake.handle("GET /v1/pages/page-1", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{
				"id": "page-1",
				"created_time": "2023-01-01T00:00:00Z",
				"last_edited_time": "2023-01-03T00:00:00Z",
				"properties": {
					"Tags": {"type": "multi_select", "multi_select": [{"name": "x"}]}
				}
			}`))
		})
		repo := newTestRepo(t, fake)

		newContent := strings.Repeat("ん", 130)
		record, err := repo.Update(context.Background(), "page-1", domain.MemoUpdate{Content: &newContent})

		require.NoError(t, err)

		// 呼び出し順序: プロパティ更新 → 既存ブロック削除 → 追加 → 再取得
		assert.Equal(t, []string{
			"PATCH /v1/pages/page-1",
			"GET /v1/blocks/page-1/children",
			"DELETE /v1/blocks/b1",
			"PATCH /v1/blocks/page-1/children",
			"GET /v1/pages/page-1",
		}, fake.calls)

		// タイトルは切り詰め、新ブロックは全文
		title := gotProps.Properties[testContentProp].Title
		require.Len(t, title, 1)
		assert.Equal(t, strings.Repeat("ん", 100), title[0].Text.Content)
		require.Len(t, gotAppend.Children, 1)
		assert.Equal(t, newContent, gotAppend.Children[0].Paragraph.RichText[0].Text.Content)

		// 返り値: コンテンツは呼び出し側の値、タグと更新時刻はサーバーの値
		assert.Equal(t, newContent, record.Content)
		assert.Equal(t, []string{"x"}, record.Tags)
	})

	t.Run("タグのみの更新は丸ごと置き換えでブロックに触れない", func(t *testing.T) {
		fake := newFakeNotion()
		var rawProps []byte
		fake.handle("PATCH /v1/pages/page-1", func(w http.ResponseWriter, r *http.Request) {
			rawProps, _ = io.ReadAll(r.Body)
			w.Write([]byte(pageJSON("page-1")))
		})
		fake.handle("GET /v1/pages/page-1", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{
				"id": "page-1",
				"created_time": "2023-01-01T00:00:00Z",
				"last_edited_time": "2023-01-03T00:00:00Z",
				"properties": {
					"Tags": {"type": "multi_select", "multi_select": [{"name": "b"}]}
				}
			}`))
		})
		fake.handle("GET /v1/blocks/page-1/children", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"results":[{"id":"b1","type":"paragraph","paragraph":{"rich_text":[{"plain_text":"kept content"}]}}]}`))
		})
		repo := newTestRepo(t, fake)

		record, err := repo.Update(context.Background(), "page-1", domain.MemoUpdate{Tags: []string{"b"}})

		require.NoError(t, err)
		assert.Equal(t, []string{
			"PATCH /v1/pages/page-1",
			"GET /v1/pages/page-1",
			"GET /v1/blocks/page-1/children",
		}, fake.calls)

		assert.Equal(t, []string{"b"}, record.Tags)
		assert.Equal(t, "kept content", record.Content)

		var body map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(rawProps, &body))
		assert.NotContains(t, string(body["properties"]), "title")
	})

	t.Run("空のタグ配列はプロパティを空にする", func(t *testing.T) {
		fake := newFakeNotion()
		var rawProps []byte
		fake.handle("PATCH /v1/pages/page-1", func(w http.ResponseWriter, r *http.Request) {
			rawProps, _ = io.ReadAll(r.Body)
			w.Write([]byte(pageJSON("page-1")))
		})
		fake.handle("GET /v1/pages/page-1", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(pageJSON("page-1")))
		})
		fake.handle("GET /v1/blocks/page-1/children", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"results":[]}`))
		})
		repo := newTestRepo(t, fake)

		_, err := repo.Update(context.Background(), "page-1", domain.MemoUpdate{Tags: []string{}})

		require.NoError(t, err)
		assert.Contains(t, string(rawProps), `"multi_select":[]`)
	})

	t.Run("ブロック置換の途中で失敗した場合はエラーを返す", func(t *testing.T) {
		fake := newFakeNotion()
		fake.handle("PATCH /v1/pages/page-1", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(pageJSON("page-1")))
		})
		fake.handle("GET /v1/blocks/page-1/children", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"results":[{"id":"b1","type":"paragraph","paragraph":{"rich_text":[]}}]}`))
		})
		fake.handle("DELETE /v1/blocks/b1", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"boom"}`))
		})
		repo := newTestRepo(t, fake)

		content := "new content"
		record, err := repo.Update(context.Background(), "page-1", domain.MemoUpdate{Content: &content})

		require.Error(t, err)
		assert.Nil(t, record)
		assert.ErrorIs(t, err, domain.ErrExternalService)
	})
}

func TestArchive(t *testing.T) {
	t.Run("1回の呼び出しでアーカイブする", func(t *testing.T) {
		fake := newFakeNotion()
		var gotBody notion.UpdatePageRequest
		fake.handle("PATCH /v1/pages/page-1", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.Write([]byte(pageJSON("page-1")))
		})
		repo := newTestRepo(t, fake)

		err := repo.Archive(context.Background(), "page-1")

		require.NoError(t, err)
		assert.Equal(t, []string{"PATCH /v1/pages/page-1"}, fake.calls)
		require.NotNil(t, gotBody.Archived)
		assert.True(t, *gotBody.Archived)
		assert.Empty(t, gotBody.Properties)
	})

	t.Run("サービス呼び出しの失敗はExternalServiceErrorになる", func(t *testing.T) {
		fake := newFakeNotion()
		fake.handle("PATCH /v1/pages/page-1", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{"message":"bad gateway"}`))
		})
		repo := newTestRepo(t, fake)

		err := repo.Archive(context.Background(), "page-1")

		assert.ErrorIs(t, err, domain.ErrExternalService)
	})
}
