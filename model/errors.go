package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrInvalidNumClasses is returned when the label space is empty.
	ErrInvalidNumClasses = errors.New("number of classes must be positive")

	// ErrEmptyCalibrationSet is returned when calibration is attempted with zero samples.
	ErrEmptyCalibrationSet = errors.New("calibration set is empty")

	// ErrBatchSizeMismatch is returned when parallel sequences (layers, labels, votes)
	// disagree on the number of samples.
	ErrBatchSizeMismatch = errors.New("batch size mismatch")
)

// DimensionMismatchError indicates a vector whose length differs from the
// dimensionality the layer index was built with.
type DimensionMismatchError struct {
	Layer    string
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	if e.Layer == "" {
		return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
	}
	return fmt.Sprintf("dimension mismatch on layer %q: expected %d, got %d", e.Layer, e.Expected, e.Actual)
}

// UnknownLayerError indicates a layer name that is not registered.
type UnknownLayerError struct {
	Layer string
}

func (e *UnknownLayerError) Error() string {
	return fmt.Sprintf("unknown layer %q", e.Layer)
}

// DegenerateIndexError indicates that k exceeds the number of indexed points.
type DegenerateIndexError struct {
	Layer string
	K     int
	Size  int
}

func (e *DegenerateIndexError) Error() string {
	if e.Layer == "" {
		return fmt.Sprintf("degenerate index: k=%d exceeds %d indexed points", e.K, e.Size)
	}
	return fmt.Sprintf("degenerate index on layer %q: k=%d exceeds %d indexed points", e.Layer, e.K, e.Size)
}

// LabelRangeError indicates a label outside [0, NumClasses).
type LabelRangeError struct {
	Position   int
	Label      int
	NumClasses int
}

func (e *LabelRangeError) Error() string {
	return fmt.Sprintf("label %d at position %d outside [0, %d)", e.Label, e.Position, e.NumClasses)
}

// VoteTotalError indicates a vote row whose total does not match the
// k × layers budget a calibrator was built for. Rows produced from a
// partial layer set land here.
type VoteTotalError struct {
	Row      int
	Expected int
	Actual   int
}

func (e *VoteTotalError) Error() string {
	return fmt.Sprintf("vote row %d sums to %d, calibrated for %d", e.Row, e.Actual, e.Expected)
}
