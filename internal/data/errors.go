package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	ErrNamespaceRequired = errors.New("namespace is required")
	ErrKeyRequired       = errors.New("key is required")
)
