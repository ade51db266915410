package application

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/hobbyhub/gateway/internal/domain/entity"
	"github.com/hobbyhub/gateway/internal/infrastructure/backend"
	"github.com/hobbyhub/gateway/pkg/helpers"
)

var alice = &entity.User{
	UID:         "uid-alice",
	Email:       "alice@example.com",
	DisplayName: "Alice",
	PhotoURL:    "https://img.example.com/alice.png",
	Tokens:      entity.StaticToken("tok-alice"),
}

var bob = &entity.User{UID: "uid-bob", Email: "bob@example.com", DisplayName: "Bob", Tokens: entity.StaticToken("tok-bob")}

func pngFile(size int) *entity.ImageFile {
	data := make([]byte, size)
	copy(data, "\x89PNG\r\n\x1a\n")
	return &entity.ImageFile{Filename: "photo.png", ContentType: "image/png", Size: int64(size), Data: data}
}

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   map[string]any
}

// fakeBackend is an httptest REST backend whose routes are scripted per test.
type fakeBackend struct {
	mu       sync.Mutex
	requests []recordedRequest
	routes   map[string]http.HandlerFunc
	srv      *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{routes: map[string]http.HandlerFunc{}}
	fb.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Header: r.Header.Clone()}
		_ = json.NewDecoder(r.Body).Decode(&rec.Body)
		fb.mu.Lock()
		fb.requests = append(fb.requests, rec)
		h, ok := fb.routes[r.Method+" "+r.URL.Path]
		fb.mu.Unlock()
		if !ok {
			jsonReply(http.StatusNotFound, map[string]string{"message": "no route"})(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(fb.srv.Close)
	return fb
}

func (fb *fakeBackend) on(method, path string, h http.HandlerFunc) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.routes[method+" "+path] = h
}

func (fb *fakeBackend) calls(method, path string) []recordedRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	var out []recordedRequest
	for _, r := range fb.requests {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (fb *fakeBackend) total() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.requests)
}

func (fb *fakeBackend) client() *backend.Client {
	return backend.NewClient(fb.srv.URL, 5*time.Second, helpers.NewNopLogger())
}

func jsonReply(status int, v any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
}

func htmlReply(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte("<!doctype html><title>app</title>"))
	}
}

// fakeUploader counts uploads and returns a fixed URL or error.
type fakeUploader struct {
	mu    sync.Mutex
	files []entity.ImageFile
	url   string
	err   error
}

func (u *fakeUploader) Upload(_ context.Context, f entity.ImageFile) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.files = append(u.files, f)
	return u.url, u.err
}

func (u *fakeUploader) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.files)
}

// fakePublisher captures queued notifications.
type fakePublisher struct {
	mu   sync.Mutex
	msgs []any
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, body)
	return nil
}

// memActivity is an in-memory ActivityRepository.
type memActivity struct {
	mu   sync.Mutex
	rows []entity.Activity
}

func (m *memActivity) Record(_ context.Context, a *entity.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, *a)
	return nil
}

func (m *memActivity) ListByUser(_ context.Context, email string, limit int) ([]entity.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entity.Activity{}
	for i := len(m.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if m.rows[i].UserEmail == email {
			out = append(out, m.rows[i])
		}
	}
	return out, nil
}

func fixedNow() time.Time {
	return time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)
}
