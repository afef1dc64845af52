package services

import "errors"

// Common errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrNoteNotFound       = errors.New("note not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrShareNotFound      = errors.New("share not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidPermission  = errors.New("invalid permission")
	ErrInvalidInput       = errors.New("invalid input")
	ErrCategoryExists     = errors.New("category already exists")
	ErrInvalidShareLink   = errors.New("invalid share link")
	ErrShareLinkInactive  = errors.New("share link has expired")
)
