package application

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hobbyhub/gateway/internal/domain/listing"
	"github.com/hobbyhub/gateway/internal/infrastructure/backend"
	"github.com/hobbyhub/gateway/pkg/helpers"
)

func newArticleService(t *testing.T, fb *fakeBackend, up ImageUploader, search *ArticleSearch) *ArticleService {
	t.Helper()
	logger := helpers.NewNopLogger()
	svc := NewArticleService(backend.NewArticleRepository(fb.client(), nil), up, search, nil, NewGuard(), logger)
	svc.Now = fixedNow
	return svc
}

var sampleArticles = []map[string]any{
	{"_id": "a1", "title": "Watercolour basics", "content": "paper and water", "category": "Art", "authorName": "Alice", "authorEmail": "alice@example.com", "publishDate": "2024-05-01T10:00:00Z"},
	{"_id": "a2", "title": "Fingerstyle", "content": "guitar", "category": "Tips", "authorName": "Bob", "authorEmail": "bob@example.com", "publishDate": "2024-05-09T10:00:00Z"},
	{"_id": "a3", "title": "Untitled notes", "content": "misc", "authorName": "Alice", "authorEmail": "alice@example.com", "publishDate": "2024-04-01"},
}

func TestArticleCreate_DefaultsCategoryAndStampsAuthor(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on(http.MethodPost, "/articles", jsonReply(http.StatusOK, map[string]any{"insertedId": "a-9"}))
	up := &fakeUploader{url: "https://i.example.com/cover.png"}
	svc := newArticleService(t, fb, up, nil)

	form := &ArticleForm{Title: "Knots", Content: "Bowline and hitch"}
	require.NoError(t, form.CoverImage.Select(pngFile(128)))

	out, err := svc.Create(context.Background(), alice, form)
	require.NoError(t, err)
	assert.Equal(t, "a-9", out.Item.ID)
	assert.Equal(t, RedirectAfterArticleSave, out.Redirect)
	assert.Equal(t, 1, up.count())

	posts := fb.calls(http.MethodPost, "/articles")
	require.Len(t, posts, 1)
	body := posts[0].Body
	assert.Equal(t, "General", body["category"])
	assert.Equal(t, "Alice", body["authorName"])
	assert.Equal(t, "alice@example.com", body["authorEmail"])
	assert.Equal(t, "https://i.example.com/cover.png", body["coverImage"])
	assert.Equal(t, "2024-05-10T15:30:00Z", body["publishDate"])
	assert.Empty(t, form.Title)
}

func TestArticleList_FiltersByCategoryAndSortsNewest(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on(http.MethodGet, "/articles", jsonReply(http.StatusOK, sampleArticles))
	svc := newArticleService(t, fb, nil, nil)

	all, err := svc.List(context.Background(), listing.ArticleFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a2", all[0].ID)
	assert.Equal(t, "a3", all[2].ID)

	general, err := svc.List(context.Background(), listing.ArticleFilter{Category: "General"})
	require.NoError(t, err)
	require.Len(t, general, 1)
	assert.Equal(t, "a3", general[0].ID)
}

func TestArticleMyArticles(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on(http.MethodGet, "/articles", jsonReply(http.StatusOK, sampleArticles))
	svc := newArticleService(t, fb, nil, nil)

	mine, err := svc.MyArticles(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "a1", mine[0].ID)

	_, err = svc.MyArticles(context.Background(), nil)
	assert.ErrorIs(t, err, ErrLoginRequired)
}

func TestArticleSearch_WithoutIndexFiltersCollection(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on(http.MethodGet, "/articles", jsonReply(http.StatusOK, sampleArticles))
	svc := newArticleService(t, fb, nil, nil)

	got, err := svc.SearchArticles(context.Background(), "bob", "", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a2", got[0].ID)
}

// esStub answers search and index calls the way an Elasticsearch node does.
type esStub struct {
	mu      sync.Mutex
	paths   []string
	queries []map[string]any
}

func (s *esStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.paths = append(s.paths, r.Method+" "+r.URL.Path)
	var q map[string]any
	_ = json.NewDecoder(r.Body).Decode(&q)
	s.queries = append(s.queries, q)
	s.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	if strings.HasSuffix(r.URL.Path, "/_search") {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hits": map[string]any{"hits": []map[string]any{
				{"_id": "a2", "_source": map[string]any{"title": "Fingerstyle", "category": "Tips"}},
				{"_id": "a1", "_source": map[string]any{"_id": "a1", "title": "Watercolour basics", "category": "Art"}},
			}},
		})
		return
	}
	_, _ = w.Write([]byte(`{"result":"created"}`))
}

func newTestSearch(t *testing.T, stub http.Handler) *ArticleSearch {
	t.Helper()
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewArticleSearch(es, "articles", helpers.NewNopLogger())
}

func TestArticleSearch_UsesIndexWhenEnabled(t *testing.T) {
	stub := &esStub{}
	search := newTestSearch(t, stub)
	fb := newFakeBackend(t)
	svc := newArticleService(t, fb, nil, search)

	got, err := svc.SearchArticles(context.Background(), "guitar", "Tips", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a2", got[0].ID)
	assert.Zero(t, fb.total(), "collection is not fetched when the index answers")

	require.NotEmpty(t, stub.queries)
	assert.EqualValues(t, 5, stub.queries[0]["size"])
	assert.Contains(t, stub.queries[0]["query"], "multi_match")
}

func TestArticleSearch_FallsBackWhenIndexFails(t *testing.T) {
	search := newTestSearch(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusInternalServerError)
	}))
	fb := newFakeBackend(t)
	fb.on(http.MethodGet, "/articles", jsonReply(http.StatusOK, sampleArticles))
	svc := newArticleService(t, fb, nil, search)

	got, err := svc.SearchArticles(context.Background(), "water", "", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a1", got[0].ID)
}

func TestArticleCreate_IndexesPublishedArticle(t *testing.T) {
	stub := &esStub{}
	search := newTestSearch(t, stub)
	fb := newFakeBackend(t)
	fb.on(http.MethodPost, "/articles", jsonReply(http.StatusOK, map[string]any{"insertedId": "a-10"}))
	svc := newArticleService(t, fb, nil, search)

	_, err := svc.Create(context.Background(), alice, &ArticleForm{Title: "T", Content: "C", Category: "Tips"})
	require.NoError(t, err)

	stub.mu.Lock()
	defer stub.mu.Unlock()
	require.NotEmpty(t, stub.paths)
	assert.Equal(t, "PUT /articles/_doc/a-10", stub.paths[0])
}

func TestArticleDelete_NotFoundCountsAsDeleted(t *testing.T) {
	fb := newFakeBackend(t)
	svc := newArticleService(t, fb, nil, nil)

	out, err := svc.Delete(context.Background(), alice, "gone", true)
	require.NoError(t, err)
	assert.Equal(t, "gone", out.RemovedID)
	assert.Len(t, fb.calls(http.MethodDelete, "/articles/gone"), 1)
}

func TestArticleUpdate_ClearsOptionalFieldsKeepsCover(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on(http.MethodGet, "/articles/a-3", jsonReply(http.StatusOK, map[string]any{
		"_id": "a-3", "title": "Knots", "shortDescription": "Five knots", "content": "Bowline first",
		"category": "Sailing", "coverImage": "https://i.example.com/knots.png", "authorEmail": "alice@example.com",
	}))
	fb.on(http.MethodPut, "/articles/a-3", jsonReply(http.StatusOK, map[string]any{"modifiedCount": 1}))
	svc := newArticleService(t, fb, nil, nil)

	_, err := svc.Update(context.Background(), alice, "a-3", &ArticleForm{Title: "Knots", Content: "Bowline first"})
	require.NoError(t, err)

	puts := fb.calls(http.MethodPut, "/articles/a-3")
	require.Len(t, puts, 1)
	body := puts[0].Body
	require.Contains(t, body, "shortDescription")
	assert.Equal(t, "", body["shortDescription"])
	require.Contains(t, body, "category")
	assert.Equal(t, "", body["category"])
	assert.Equal(t, "https://i.example.com/knots.png", body["coverImage"])
}

func TestArticleSearch_EnsureIndexCreatesMissingIndex(t *testing.T) {
	var created map[string]any
	search := newTestSearch(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			_ = json.NewDecoder(r.Body).Decode(&created)
			_, _ = w.Write([]byte(`{"acknowledged":true}`))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))

	require.NoError(t, search.EnsureIndex(context.Background()))
	require.NotNil(t, created)
	props := created["mappings"].(map[string]any)["properties"].(map[string]any)
	assert.Equal(t, map[string]any{"type": "keyword"}, props["category"])

	var disabled *ArticleSearch
	assert.NoError(t, disabled.EnsureIndex(context.Background()))
}
