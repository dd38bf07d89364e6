package mmap

import "errors"

// AccessPattern is a paging hint passed to Advise.
type AccessPattern int

const (
	// AccessDefault clears any previous hint.
	AccessDefault AccessPattern = iota
	// AccessSequential suits snapshot decoding, which reads front to back.
	AccessSequential
	// AccessRandom suits ranged reads of individual layers.
	AccessRandom
	// AccessWillNeed asks the kernel to prefetch the whole mapping.
	AccessWillNeed
)

var (
	ErrClosed        = errors.New("mmap: mapping closed")
	ErrInvalidSize   = errors.New("mmap: file too large to map")
	ErrInvalidOffset = errors.New("mmap: negative offset")
)
