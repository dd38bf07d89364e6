package lsh

import "errors"

var (
	// ErrInvalidDimension is returned for a non-positive input dimension or
	// one too wide for the hyperplane matrix.
	ErrInvalidDimension = errors.New("lsh: invalid dimension")

	// ErrInvalidHashBits is returned for a non-positive code width.
	ErrInvalidHashBits = errors.New("lsh: hash bits must be positive")

	// ErrNoVectors is returned when building an index from an empty set.
	ErrNoVectors = errors.New("lsh: no vectors to index")

	// ErrCorruptCodes is returned when restored codes do not match the declared shape.
	ErrCorruptCodes = errors.New("lsh: code array does not match index shape")
)
