package repository

import "errors"

// Sentinel errors for the dataset store.
var (
	ErrNotFound   = errors.New("dataset not found")
	ErrInvalidID  = errors.New("dataset id must not be empty")
	ErrStoreClose = errors.New("dataset store is closed")
)
