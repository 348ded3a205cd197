package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"bookstack/internal/app"
	"bookstack/pkg/cache"
	"bookstack/pkg/store"
	"bookstack/pkg/token"
)

// stubObjectStore stands in for the media host. Uploads with a content type
// listed in failOn return an error.
type stubObjectStore struct {
	mu     sync.Mutex
	keys   []string
	failOn map[string]struct{}
}

func newStubObjectStore() *stubObjectStore {
	return &stubObjectStore{failOn: make(map[string]struct{})}
}

func (s *stubObjectStore) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	if _, fail := s.failOn[contentType]; fail {
		return errors.New("media host unavailable")
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	return nil
}

func (s *stubObjectStore) PublicURL(key string) string { return "http://media.test/" + key }

func (s *stubObjectStore) Delete(context.Context, string) error { return nil }

type testEnv struct {
	t       *testing.T
	handler http.Handler
	redis   *miniredis.Miniredis
	store   *store.MemoryStore
	objects *stubObjectStore
	tokens  *token.Manager
}

// newTestEnv wires the full server against in-memory backends. mutate may
// adjust the server config (rate limit overrides) before construction.
func newTestEnv(t *testing.T, mutate func(*Config)) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tokens, err := token.NewManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new token manager: %v", err)
	}
	listCache, err := cache.NewRedisListCache(client, "bookstack:books:list", time.Minute)
	if err != nil {
		t.Fatalf("new list cache: %v", err)
	}
	memStore := store.NewMemoryStore()
	objects := newStubObjectStore()

	a, err := app.New(app.Config{
		Store:   memStore,
		Cache:   listCache,
		Objects: objects,
		Tokens:  tokens,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	cfg := Config{
		App:   a,
		Redis: client,
		// Generous limits so functional tests never trip the limiter.
		DefaultRateLimit: 1000,
		ListRateLimit:    1000,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return &testEnv{
		t:       t,
		handler: srv.Router(),
		redis:   mr,
		store:   memStore,
		objects: objects,
		tokens:  tokens,
	}
}

type testResponse struct {
	Code       int
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Error      string          `json:"error"`
}

func (e *testEnv) do(method, target, bearer string, body any) testResponse {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			e.t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return e.send(req)
}

// doRaw issues a bodyless request and returns the raw recorder, for tests
// that inspect headers.
func (e *testEnv) doRaw(method, target string) *httptest.ResponseRecorder {
	e.t.Helper()
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func (e *testEnv) send(req *http.Request) testResponse {
	e.t.Helper()
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	resp := testResponse{Code: rec.Code}
	if raw := rec.Body.Bytes(); len(raw) > 0 {
		if err := json.Unmarshal(raw, &resp); err != nil {
			e.t.Fatalf("decode response %q: %v", raw, err)
		}
	}
	return resp
}

func (e *testEnv) decodeData(resp testResponse, dst any) {
	e.t.Helper()
	if err := json.Unmarshal(resp.Data, dst); err != nil {
		e.t.Fatalf("decode data %q: %v", resp.Data, err)
	}
}

// signupAndLogin registers a user and returns a valid bearer token.
func (e *testEnv) signupAndLogin(email string) string {
	e.t.Helper()
	resp := e.do(http.MethodPost, "/auth/signup", "", map[string]any{
		"name":     "Test User",
		"email":    email,
		"password": "hunter22",
	})
	if resp.Code != http.StatusCreated {
		e.t.Fatalf("signup status = %d, message = %q", resp.Code, resp.Message)
	}
	resp = e.do(http.MethodPost, "/auth/login", "", map[string]any{
		"email":    email,
		"password": "hunter22",
	})
	if resp.Code != http.StatusOK {
		e.t.Fatalf("login status = %d, message = %q", resp.Code, resp.Message)
	}
	var data struct {
		Token string `json:"token"`
	}
	e.decodeData(resp, &data)
	if data.Token == "" {
		e.t.Fatal("login returned empty token")
	}
	return data.Token
}

// createBook posts a book and returns its id.
func (e *testEnv) createBook(bearer, title string) string {
	e.t.Helper()
	resp := e.do(http.MethodPost, "/books/new", bearer, map[string]any{
		"title":       title,
		"description": "a book",
		"author":      "An Author",
		"price":       9.99,
		"category":    "Fantasy",
	})
	if resp.Code != http.StatusCreated {
		e.t.Fatalf("create book status = %d, message = %q", resp.Code, resp.Message)
	}
	var book struct {
		ID string `json:"id"`
	}
	e.decodeData(resp, &book)
	if book.ID == "" {
		e.t.Fatal("create book returned empty id")
	}
	return book.ID
}

// multipartBody builds a multipart form with each file under the files field.
type uploadPart struct {
	name        string
	contentType string
	size        int
}

func multipartBody(t *testing.T, parts []uploadPart) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="files"; filename="`+p.name+`"`)
		if p.contentType != "" {
			h.Set("Content-Type", p.contentType)
		}
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(bytes.Repeat([]byte("x"), p.size)); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}
