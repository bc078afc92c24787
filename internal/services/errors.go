package services

import "errors"

// Service errors
var (
	ErrUnsupportedPolicy = errors.New("unsupported invalid-record policy")
)
