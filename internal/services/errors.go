package services

import "errors"

// Convert service errors
var (
	// ErrEmptyInput means the request carried no XML content at all.
	ErrEmptyInput = errors.New("no xml content provided")
)
