package app

import "errors"

var (
	// ErrInvalidEmail and ErrInvalidPassword carry the original product
	// wording. Both map to 401; the differing messages disclose whether an
	// email is registered, which is a known, deliberate trade-off.
	ErrInvalidEmail    = errors.New("Invalid Email")
	ErrInvalidPassword = errors.New("Invalid Password")

	// ErrEmailAlreadyRegistered is returned on a signup uniqueness conflict.
	ErrEmailAlreadyRegistered = errors.New("email already registered")

	// ErrInvalidID is returned before any store access when an identifier
	// does not have a valid shape.
	ErrInvalidID = errors.New("Id is not valid")

	// ErrBookNotFound is returned when no record matches a well-formed id.
	ErrBookNotFound = errors.New("Book not found")

	// ErrUploadFailed is returned when any file in an upload batch fails.
	ErrUploadFailed = errors.New("Failed To Upload Files")

	// ErrInvalidCategory is returned for a category outside the fixed set.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrInvalidRole is returned for an unknown role name at signup.
	ErrInvalidRole = errors.New("invalid role")

	// ErrNegativePrice is returned when a price is below zero.
	ErrNegativePrice = errors.New("price must not be negative")
)
