package app

import (
	"errors"

	"bookstack/pkg/cache"
	"bookstack/pkg/storage"
	"bookstack/pkg/store"
	"bookstack/pkg/token"
)

// Config wires the application's collaborators explicitly. Every handle is
// supplied by the caller so tests can substitute doubles.
type Config struct {
	Store       store.Store
	Cache       cache.BookListCache
	Objects     storage.ObjectStore
	Tokens      *token.Manager
	MediaFolder string
}

// App is the core application service for auth and the book catalog.
type App struct {
	store       store.Store
	cache       cache.BookListCache
	objects     storage.ObjectStore
	tokens      *token.Manager
	mediaFolder string
}

// New constructs the application.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	if cfg.Cache == nil {
		return nil, errors.New("list cache is required")
	}
	if cfg.Objects == nil {
		return nil, errors.New("object store is required")
	}
	if cfg.Tokens == nil {
		return nil, errors.New("token manager is required")
	}
	folder := cfg.MediaFolder
	if folder == "" {
		folder = "books"
	}
	return &App{
		store:       cfg.Store,
		cache:       cfg.Cache,
		objects:     cfg.Objects,
		tokens:      cfg.Tokens,
		mediaFolder: folder,
	}, nil
}
