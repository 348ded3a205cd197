package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"bookstack/pkg/domain"
	"bookstack/pkg/store"
	"bookstack/pkg/token"
)

// fakeListCache is an in-process BookListCache that records invalidations.
type fakeListCache struct {
	mu            sync.Mutex
	books         []domain.Book
	populated     bool
	invalidations int
}

func (c *fakeListCache) Get(context.Context) ([]domain.Book, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.populated {
		return nil, false, nil
	}
	return c.books, true, nil
}

func (c *fakeListCache) Set(_ context.Context, books []domain.Book) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.books = books
	c.populated = true
	return nil
}

func (c *fakeListCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.books = nil
	c.populated = false
	c.invalidations++
	return nil
}

func (c *fakeListCache) invalidationCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidations
}

// fakeObjectStore records uploads and can be told to fail specific files.
type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failOn  map[string]struct{} // content types that fail
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{
		objects: make(map[string][]byte),
		failOn:  make(map[string]struct{}),
	}
}

func (f *fakeObjectStore) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	if _, fail := f.failOn[contentType]; fail {
		return errors.New("simulated upload failure")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return nil
}

func (f *fakeObjectStore) PublicURL(key string) string {
	return "http://media.test/" + key
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeObjectStore) objectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

type fixture struct {
	app     *App
	store   *store.MemoryStore
	cache   *fakeListCache
	objects *fakeObjectStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tokens, err := token.NewManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new token manager: %v", err)
	}
	memStore := store.NewMemoryStore()
	listCache := &fakeListCache{}
	objects := newFakeObjectStore()
	a, err := New(Config{
		Store:   memStore,
		Cache:   listCache,
		Objects: objects,
		Tokens:  tokens,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return &fixture{app: a, store: memStore, cache: listCache, objects: objects}
}

func (f *fixture) mustSignUp(t *testing.T, name, email string) domain.User {
	t.Helper()
	user, err := f.app.SignUp(name, email, "hunter22", nil)
	if err != nil {
		t.Fatalf("sign up %s: %v", email, err)
	}
	return user
}

func (f *fixture) mustCreateBook(t *testing.T, owner domain.User, title string) domain.Book {
	t.Helper()
	book, err := f.app.CreateBook(CreateBook{
		Title:       title,
		Description: "a book",
		Author:      "An Author",
		Price:       9.99,
		Category:    "fantasy",
	}, owner)
	if err != nil {
		t.Fatalf("create book %s: %v", title, err)
	}
	return book
}
