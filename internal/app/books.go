package app

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"bookstack/internal/util"
	"bookstack/pkg/domain"
	"bookstack/pkg/store"
)

// perPage is the fixed page size for book listings.
const perPage = 2

// CreateBook carries the client-suppliable fields of a new book. The owner
// is never part of this struct; it is stamped from the caller identity.
type CreateBook struct {
	Title       string
	Description string
	Author      string
	Price       float64
	Category    string
}

// UpdateBook carries a partial update; nil fields are left untouched.
type UpdateBook struct {
	Title       *string
	Description *string
	Author      *string
	Price       *float64
	Category    *string
}

// UploadFile is an in-memory file accepted for image upload.
type UploadFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ListBooks returns one page of books, optionally filtered by a
// case-insensitive keyword match on title. Page defaults to 1. The default
// view (first page, no keyword) is served through the list cache.
func (a *App) ListBooks(page int, keyword string) ([]domain.Book, error) {
	if page < 1 {
		page = 1
	}
	keyword = strings.TrimSpace(keyword)
	defaultView := page == 1 && keyword == ""
	ctx := context.Background()

	if defaultView {
		if books, hit, err := a.cache.Get(ctx); err == nil && hit {
			return books, nil
		}
	}

	books, err := a.store.ListBooks(store.ListQuery{
		Keyword: keyword,
		Limit:   perPage,
		Offset:  perPage * (page - 1),
	})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	if defaultView {
		if err := a.cache.Set(ctx, books); err != nil {
			slog.Warn("list cache set failed", "err", err)
		}
	}
	return books, nil
}

// GetBook retrieves a book by id. Malformed ids fail before any store call.
func (a *App) GetBook(id string) (domain.Book, error) {
	if !util.IsValidID(id) {
		return domain.Book{}, ErrInvalidID
	}
	book, ok, err := a.store.GetBook(id)
	if err != nil {
		return domain.Book{}, fmt.Errorf("fetch book: %w", err)
	}
	if !ok {
		return domain.Book{}, ErrBookNotFound
	}
	return book, nil
}

// CreateBook persists a new book owned by the caller and invalidates the
// list cache.
func (a *App) CreateBook(fields CreateBook, owner domain.User) (domain.Book, error) {
	category, ok := domain.ParseCategory(fields.Category)
	if !ok {
		return domain.Book{}, ErrInvalidCategory
	}
	if fields.Price < 0 {
		return domain.Book{}, ErrNegativePrice
	}
	now := time.Now().UTC()
	book := domain.Book{
		ID:          util.NewID(),
		Title:       strings.TrimSpace(fields.Title),
		Description: fields.Description,
		Author:      fields.Author,
		Price:       fields.Price,
		Category:    category,
		UserID:      owner.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := a.store.SaveBook(book); err != nil {
		return domain.Book{}, fmt.Errorf("save book: %w", err)
	}
	a.invalidateListCache()
	return book, nil
}

// UpdateBook applies a partial update and invalidates the list cache.
func (a *App) UpdateBook(id string, patch UpdateBook) (domain.Book, error) {
	book, err := a.GetBook(id)
	if err != nil {
		return domain.Book{}, err
	}
	if patch.Title != nil {
		book.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		book.Description = *patch.Description
	}
	if patch.Author != nil {
		book.Author = *patch.Author
	}
	if patch.Price != nil {
		if *patch.Price < 0 {
			return domain.Book{}, ErrNegativePrice
		}
		book.Price = *patch.Price
	}
	if patch.Category != nil {
		category, ok := domain.ParseCategory(*patch.Category)
		if !ok {
			return domain.Book{}, ErrInvalidCategory
		}
		book.Category = category
	}
	book.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveBook(book); err != nil {
		return domain.Book{}, fmt.Errorf("update book: %w", err)
	}
	a.invalidateListCache()
	return book, nil
}

// DeleteBook removes a book and invalidates the list cache.
func (a *App) DeleteBook(id string) (domain.Book, error) {
	book, err := a.GetBook(id)
	if err != nil {
		return domain.Book{}, err
	}
	if err := a.store.DeleteBook(id); err != nil {
		return domain.Book{}, fmt.Errorf("delete book: %w", err)
	}
	a.invalidateListCache()
	return book, nil
}

// AttachImages uploads all files to the media host concurrently and, only
// when every upload succeeds, replaces the book's image list. Objects
// already uploaded when a sibling fails are not deleted.
func (a *App) AttachImages(id string, files []UploadFile) (domain.Book, error) {
	book, err := a.GetBook(id)
	if err != nil {
		return domain.Book{}, err
	}

	images := make([]domain.Image, len(files))
	var g errgroup.Group
	for i, file := range files {
		g.Go(func() error {
			key := a.buildObjectKey(book.ID, file.FileName)
			contentType := file.ContentType
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			err := a.objects.Put(context.Background(), key, bytes.NewReader(file.Data), int64(len(file.Data)), contentType)
			if err != nil {
				return fmt.Errorf("upload %s: %w", file.FileName, err)
			}
			images[i] = domain.Image{
				URL:      a.objects.PublicURL(key),
				FileName: file.FileName,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Warn("image upload batch failed", "book_id", book.ID, "err", err)
		return domain.Book{}, ErrUploadFailed
	}

	book.Images = images
	book.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveBook(book); err != nil {
		return domain.Book{}, fmt.Errorf("save book images: %w", err)
	}
	a.invalidateListCache()
	return book, nil
}

func (a *App) buildObjectKey(bookID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(a.mediaFolder, bookID, uuid.NewString()+ext)
}

func (a *App) invalidateListCache() {
	if err := a.cache.Invalidate(context.Background()); err != nil {
		slog.Warn("list cache invalidation failed", "err", err)
	}
}
