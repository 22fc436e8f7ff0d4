package services

import "errors"

var (
	// ErrNotFound means no link matched the code, alias or id, or the link
	// is not owned by the caller.
	ErrNotFound = errors.New("URL not found")
	// ErrGone means the link matched but is past its expiry.
	ErrGone = errors.New("URL has expired")
	// ErrInvalidURL means the destination failed validation at creation.
	ErrInvalidURL = errors.New("Invalid URL")
	// ErrAliasTaken means the requested alias collides with an existing
	// code or alias.
	ErrAliasTaken = errors.New("Custom alias is already in use")
)
