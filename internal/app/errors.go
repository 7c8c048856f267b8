package service

import "errors"

// Sentinel errors for the service layer.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrUnknownChart = errors.New("unknown chart")
	ErrNoFilename   = errors.New("upload needs a file name to detect its format")
)
