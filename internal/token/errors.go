package token

import "errors"

var (
	ErrEmptyUsername = errors.New("username cannot be empty")
	ErrInvalidUserID = errors.New("user id must be positive")
)
