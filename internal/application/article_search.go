package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/hobbyhub/gateway/internal/domain/entity"
)

// ArticleSearch mirrors published articles into an Elasticsearch index. A nil
// *ArticleSearch or a nil client disables it.
type ArticleSearch struct {
	ES        *elasticsearch.Client
	IndexName string
	Logger    *logrus.Logger
}

func NewArticleSearch(es *elasticsearch.Client, index string, logger *logrus.Logger) *ArticleSearch {
	return &ArticleSearch{ES: es, IndexName: index, Logger: logger}
}

func (s *ArticleSearch) Enabled() bool {
	return s != nil && s.ES != nil && s.IndexName != ""
}

const articleMapping = `{
  "mappings": {
    "properties": {
      "title":            {"type": "text"},
      "shortDescription": {"type": "text"},
      "content":          {"type": "text"},
      "authorName":       {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "authorEmail":      {"type": "keyword"},
      "category":         {"type": "keyword"},
      "coverImage":       {"type": "keyword", "index": false},
      "authorImage":      {"type": "keyword", "index": false},
      "publishDate":      {"type": "date", "ignore_malformed": true}
    }
  }
}`

// EnsureIndex creates the article index with its mapping when it does not exist yet.
func (s *ArticleSearch) EnsureIndex(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	exists, err := esapi.IndicesExistsRequest{Index: []string{s.IndexName}}.Do(ctx, s.ES)
	if err != nil {
		return err
	}
	_ = exists.Body.Close()
	if exists.StatusCode == 200 {
		return nil
	}
	res, err := esapi.IndicesCreateRequest{Index: s.IndexName, Body: strings.NewReader(articleMapping)}.Do(ctx, s.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", s.IndexName, res.Status())
	}
	if s.Logger != nil {
		s.Logger.WithField("index", s.IndexName).Info("article search index created")
	}
	return nil
}

// Index upserts a. Failures are logged only.
func (s *ArticleSearch) Index(ctx context.Context, a entity.Article) {
	if !s.Enabled() || a.ID == "" {
		return
	}
	b, _ := json.Marshal(a)
	req := esapi.IndexRequest{Index: s.IndexName, DocumentID: a.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.warn(err, a.ID, "es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("article_id", a.ID).Warn("es index response error")
	}
}

func (s *ArticleSearch) Remove(ctx context.Context, id string) {
	if !s.Enabled() || id == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.IndexName, DocumentID: id}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.warn(err, id, "es delete failed")
		return
	}
	_ = res.Body.Close()
}

// Search runs a multi_match query over the article text fields.
func (s *ArticleSearch) Search(ctx context.Context, q string, size int) ([]entity.Article, error) {
	if !s.Enabled() {
		return []entity.Article{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^3", "shortDescription^2", "content", "authorName"},
			},
		},
		"size": size,
	}
	if q == "" {
		query["query"] = map[string]any{"match_all": map[string]any{}}
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.IndexName), s.ES.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", s.IndexName, res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source entity.Article `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]entity.Article, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		a := h.Source
		if a.ID == "" {
			a.ID = h.ID
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *ArticleSearch) warn(err error, id, msg string) {
	if s.Logger != nil {
		s.Logger.WithError(err).WithField("article_id", id).Warn(msg)
	}
}
