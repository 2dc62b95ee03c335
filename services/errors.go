package services

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrEmailRequired      = errors.New("email is required")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrPasswordRequired   = errors.New("password is required")
	ErrInvalidCredentials = errors.New("no active account found with the given credentials")
	ErrInactiveAccount    = errors.New("account is inactive")
	ErrInvalidToken       = errors.New("token is invalid or expired")
	ErrDocumentNotFound   = errors.New("reviewed document does not exist")
	ErrTitleRequired      = errors.New("title is required")
	ErrFileRequired       = errors.New("file is required")
)
