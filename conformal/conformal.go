// Package conformal calibrates neighbor vote counts into credibility values.
//
// A Calibrator stores the nonconformity of every calibration sample, that is
// the number of votes its true class did not receive. The credibility of a
// new vote row is the fraction of calibration samples that are at least as
// nonconforming as the row's best-supported class.
package conformal

import (
	"errors"
	"slices"
	"sort"

	"github.com/hupe1980/dknn/model"
)

// ErrInvalidLayerCount is returned when calibrating over zero layers.
var ErrInvalidLayerCount = errors.New("conformal: number of layers must be positive")

// Calibrator is immutable after construction and safe for concurrent use.
type Calibrator struct {
	scores   []int // ascending
	maxVotes int   // k × layers
}

// Calibrate computes the nonconformity α_i = k·numLayers − votes[i][labels_i]
// of every calibration sample.
func Calibrate(votes *model.VoteMatrix, labels *model.Labels, k, numLayers int) (*Calibrator, error) {
	if k <= 0 {
		return nil, model.ErrInvalidK
	}
	if numLayers <= 0 {
		return nil, ErrInvalidLayerCount
	}
	if labels.Len() == 0 || votes.Rows() == 0 {
		return nil, model.ErrEmptyCalibrationSet
	}
	if votes.Rows() != labels.Len() {
		return nil, model.ErrBatchSizeMismatch
	}

	maxVotes := k * numLayers
	scores := make([]int, votes.Rows())
	for i := range scores {
		label := labels.At(i)
		if label >= votes.Cols() {
			return nil, &model.LabelRangeError{Position: i, Label: label, NumClasses: votes.Cols()}
		}
		if sum := votes.RowSum(i); sum != maxVotes {
			return nil, &model.VoteTotalError{Row: i, Expected: maxVotes, Actual: sum}
		}
		scores[i] = maxVotes - votes.At(i, label)
	}
	slices.Sort(scores)

	return &Calibrator{scores: scores, maxVotes: maxVotes}, nil
}

// New restores a Calibrator from previously computed nonconformity scores.
func New(scores []int, maxVotes int) (*Calibrator, error) {
	if len(scores) == 0 {
		return nil, model.ErrEmptyCalibrationSet
	}
	if maxVotes <= 0 {
		return nil, model.ErrInvalidK
	}
	sorted := slices.Clone(scores)
	slices.Sort(sorted)
	return &Calibrator{scores: sorted, maxVotes: maxVotes}, nil
}

// Score returns the credibility of a vote row in [0, 1].
// Rows whose total differs from the calibrated vote budget are rejected.
func (c *Calibrator) Score(row []int) (float64, error) {
	if err := c.check(0, row); err != nil {
		return 0, err
	}
	return c.ScoreNonconformity(c.maxVotes - slices.Max(row)), nil
}

// ScoreMatrix scores every row of votes.
func (c *Calibrator) ScoreMatrix(votes *model.VoteMatrix) ([]float64, error) {
	out := make([]float64, votes.Rows())
	for i := range out {
		row := votes.Row(i)
		if err := c.check(i, row); err != nil {
			return nil, err
		}
		out[i] = c.ScoreNonconformity(c.maxVotes - slices.Max(row))
	}
	return out, nil
}

// ScoreNonconformity returns |{i : α_i ≥ a}| / n.
// It is non-increasing in a.
func (c *Calibrator) ScoreNonconformity(a int) float64 {
	n := len(c.scores)
	atLeast := n - sort.SearchInts(c.scores, a)
	return float64(atLeast) / float64(n)
}

// PValues returns the credibility of every class in row, treating each class
// in turn as the true one. The p-value of the argmax class equals Score(row).
func (c *Calibrator) PValues(row []int) ([]float64, error) {
	if err := c.check(0, row); err != nil {
		return nil, err
	}
	out := make([]float64, len(row))
	for class, v := range row {
		out[class] = c.ScoreNonconformity(c.maxVotes - v)
	}
	return out, nil
}

func (c *Calibrator) check(i int, row []int) error {
	sum := 0
	for _, v := range row {
		sum += v
	}
	if len(row) == 0 || sum != c.maxVotes {
		return &model.VoteTotalError{Row: i, Expected: c.maxVotes, Actual: sum}
	}
	return nil
}

// Scores returns a copy of the sorted nonconformity scores.
func (c *Calibrator) Scores() []int { return slices.Clone(c.scores) }

// Len returns the calibration set size.
func (c *Calibrator) Len() int { return len(c.scores) }

// MaxVotes returns the vote budget k × layers each row must sum to.
func (c *Calibrator) MaxVotes() int { return c.maxVotes }
