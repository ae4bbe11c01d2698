package domain

import "errors"

var (
	ErrInvalidQuery        = errors.New("search query must be at least 2 characters long")
	ErrInvalidParameter    = errors.New("invalid parameter")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrNotFound            = errors.New("not found")
	ErrStreamNotFound      = errors.New("stream not available for this content")
)
