package util

import "errors"

var (
	ErrAbstractOnly   = errors.New("paper is abstract-only, no full text available")
	ErrDuplicateTitle = errors.New("paper title already ingested")
)
