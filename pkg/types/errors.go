package types

import "errors"

// Domain errors for type validation
var (
	ErrInvalidPageNumber = errors.New("page number must be >= 1")
	ErrInvalidConfidence = errors.New("confidence must be a finite number")
	ErrInvalidStrategy   = errors.New("invalid match strategy")
	ErrInvalidTextIndex  = errors.New("text index must be >= 0")
	ErrEmptyChunk        = errors.New("chunk must contain at least one word")
	ErrChunkTextMismatch = errors.New("chunk text does not match its words")
)
