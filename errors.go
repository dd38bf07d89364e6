package dknn

import (
	"errors"

	"github.com/hupe1980/dknn/model"
	"github.com/hupe1980/dknn/persistence"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = model.ErrInvalidK

	// ErrInvalidNumClasses is returned when the number of classes is not positive.
	ErrInvalidNumClasses = model.ErrInvalidNumClasses

	// ErrEmptyCalibrationSet is returned when the calibration dataset is empty.
	ErrEmptyCalibrationSet = model.ErrEmptyCalibrationSet

	// ErrBatchSizeMismatch is returned when inputs, labels and embeddings disagree in length.
	ErrBatchSizeMismatch = model.ErrBatchSizeMismatch

	// ErrInvalidConfig is returned by Build and Load for an unusable configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrClosed is returned when using a classifier after Close.
	ErrClosed = errors.New("classifier closed")

	// ErrSnapshotMismatch is returned when a snapshot was written with a
	// different hash width, k, class count or layer set than the loader expects.
	ErrSnapshotMismatch = persistence.ErrSnapshotMismatch
)

type (
	// DimensionMismatchError reports a vector whose length differs from its layer index.
	DimensionMismatchError = model.DimensionMismatchError

	// UnknownLayerError reports a layer that is not configured.
	UnknownLayerError = model.UnknownLayerError

	// DegenerateIndexError reports k larger than the training set.
	DegenerateIndexError = model.DegenerateIndexError

	// LabelRangeError reports a label outside [0, NumClasses).
	LabelRangeError = model.LabelRangeError

	// VoteTotalError reports a vote row that does not match the calibrated vote budget.
	VoteTotalError = model.VoteTotalError
)
