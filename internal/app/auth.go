package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"bookstack/internal/util"
	"bookstack/pkg/auth"
	"bookstack/pkg/domain"
	"bookstack/pkg/store"
)

// SignUp registers a new user. The password is stored only as a bcrypt
// hash; the email is lowercase-normalized and must be unused.
func (a *App) SignUp(name, email, password string, roles []string) (domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := auth.ValidatePassword(password); err != nil {
		return domain.User{}, err
	}
	parsedRoles, err := parseRoles(roles)
	if err != nil {
		return domain.User{}, err
	}
	exists, err := a.store.HasUserEmail(email)
	if err != nil {
		return domain.User{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.User{}, ErrEmailAlreadyRegistered
	}
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	user := domain.User{
		ID:           util.NewID(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: passwordHash,
		Roles:        parsedRoles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.SaveUser(user); err != nil {
		// The pre-check races with concurrent signups; the unique index
		// is authoritative.
		if errors.Is(err, store.ErrDuplicateEmail) {
			return domain.User{}, ErrEmailAlreadyRegistered
		}
		return domain.User{}, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

// Login validates credentials and issues a signed token carrying the user id.
func (a *App) Login(email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return "", ErrInvalidEmail
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return "", ErrInvalidPassword
	}
	tok, err := a.tokens.Sign(user.ID)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tok, nil
}

// UserFromToken resolves a bearer token back to a live user record.
// A structurally valid token for a deleted user does not authenticate.
func (a *App) UserFromToken(raw string) (domain.User, bool) {
	id, err := a.tokens.Verify(raw)
	if err != nil {
		return domain.User{}, false
	}
	user, found, err := a.store.GetUserByID(id)
	if err != nil || !found {
		return domain.User{}, false
	}
	return user, true
}

func parseRoles(raw []string) ([]domain.Role, error) {
	if len(raw) == 0 {
		return []domain.Role{domain.RoleUser}, nil
	}
	roles := make([]domain.Role, 0, len(raw))
	for _, r := range raw {
		role, ok := domain.ParseRole(r)
		if !ok {
			return nil, ErrInvalidRole
		}
		roles = append(roles, role)
	}
	return roles, nil
}
