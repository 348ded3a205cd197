package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ParseRole resolves a role name case-insensitively.
func ParseRole(raw string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(RoleUser):
		return RoleUser, true
	case string(RoleModerator):
		return RoleModerator, true
	case string(RoleAdmin):
		return RoleAdmin, true
	default:
		return "", false
	}
}

type Category string

const (
	CategoryAdventure Category = "Adventure"
	CategoryClassic   Category = "Classic"
	CategoryCrime     Category = "Crime"
	CategoryFantasy   Category = "Fantasy"
)

// ParseCategory resolves a category case-insensitively.
func ParseCategory(raw string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "adventure":
		return CategoryAdventure, true
	case "classic":
		return CategoryClassic, true
	case "crime":
		return CategoryCrime, true
	case "fantasy":
		return CategoryFantasy, true
	default:
		return "", false
	}
}

// Image is an uploaded book image reference.
type Image struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasAnyRole reports whether the user holds at least one of the given roles.
func (u User) HasAnyRole(roles ...Role) bool {
	for _, required := range roles {
		for _, held := range u.Roles {
			if held == required {
				return true
			}
		}
	}
	return false
}

type Book struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Author      string    `json:"author"`
	Price       float64   `json:"price"`
	Category    Category  `json:"category"`
	UserID      string    `json:"user"`
	Images      []Image   `json:"images,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
