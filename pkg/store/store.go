package store

import (
	"errors"

	"bookstack/pkg/domain"
)

// ErrDuplicateEmail is returned by SaveUser when the email is already taken.
var ErrDuplicateEmail = errors.New("email already registered")

// ListQuery narrows a book listing.
type ListQuery struct {
	// Keyword filters by case-insensitive substring match on title.
	Keyword string
	Limit   int
	Offset  int
}

// Store defines persistence operations for users and books.
type Store interface {
	// users
	SaveUser(domain.User) error
	HasUserEmail(email string) (bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)

	// books
	SaveBook(domain.Book) error
	ListBooks(q ListQuery) ([]domain.Book, error)
	GetBook(id string) (domain.Book, bool, error)
	DeleteBook(id string) error
}
