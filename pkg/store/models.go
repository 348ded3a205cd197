package store

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"bookstack/pkg/domain"
)

// GORM models used for persistence.
type UserModel struct {
	ID           string `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Roles        datatypes.JSON
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

type BookModel struct {
	ID          string `gorm:"primaryKey"`
	Title       string `gorm:"not null"`
	Description string
	Author      string
	Price       float64 `gorm:"not null"`
	Category    string  `gorm:"not null"`
	UserID      string  `gorm:"not null;index"`
	Images      datatypes.JSON
	CreatedAt   time.Time `gorm:"not null;index"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func userToModel(u domain.User) UserModel {
	roles, _ := json.Marshal(u.Roles)
	return UserModel{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Roles:        datatypes.JSON(roles),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	var roles []domain.Role
	_ = json.Unmarshal([]byte(m.Roles), &roles)
	return domain.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Roles:        roles,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func bookToModel(b domain.Book) BookModel {
	var images datatypes.JSON
	if len(b.Images) > 0 {
		raw, _ := json.Marshal(b.Images)
		images = datatypes.JSON(raw)
	}
	return BookModel{
		ID:          b.ID,
		Title:       b.Title,
		Description: b.Description,
		Author:      b.Author,
		Price:       b.Price,
		Category:    string(b.Category),
		UserID:      b.UserID,
		Images:      images,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func bookFromModel(m BookModel) domain.Book {
	var images []domain.Image
	if len(m.Images) > 0 {
		_ = json.Unmarshal([]byte(m.Images), &images)
	}
	return domain.Book{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Author:      m.Author,
		Price:       m.Price,
		Category:    domain.Category(m.Category),
		UserID:      m.UserID,
		Images:      images,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
