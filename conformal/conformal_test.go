package conformal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dknn/model"
)

// exampleCalibrator has nonconformity scores [0, 1, 1, 2, 4] with k=2 over 3 layers.
func exampleCalibrator(t *testing.T) *Calibrator {
	t.Helper()
	votes, err := model.VoteMatrixFromRows([][]int{
		{6, 0},
		{1, 5},
		{5, 1},
		{2, 4},
		{2, 4},
	})
	require.NoError(t, err)
	labels, err := model.NewLabels([]int{0, 1, 0, 1, 0}, 2)
	require.NoError(t, err)

	c, err := Calibrate(votes, labels, 2, 3)
	require.NoError(t, err)
	return c
}

func TestCalibrate(t *testing.T) {
	c := exampleCalibrator(t)
	assert.Equal(t, []int{0, 1, 1, 2, 4}, c.Scores())
	assert.Equal(t, 5, c.Len())
	assert.Equal(t, 6, c.MaxVotes())
}

func TestScoreExample(t *testing.T) {
	c := exampleCalibrator(t)

	assert.InDelta(t, 0.8, c.ScoreNonconformity(1), 1e-12)

	// max votes 5 of 6 gives a = 1
	cred, err := c.Score([]int{1, 5})
	require.NoError(t, err)
	assert.InDelta(t, 0.8, cred, 1e-12)
}

func TestScoreNonconformity(t *testing.T) {
	c := exampleCalibrator(t)

	tests := []struct {
		a    int
		want float64
	}{
		{-1, 1.0},
		{0, 1.0},
		{1, 0.8},
		{2, 0.4},
		{3, 0.2},
		{4, 0.2},
		{5, 0.0},
		{6, 0.0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, c.ScoreNonconformity(tt.a), 1e-12, "a=%d", tt.a)
	}
}

func TestScoreMonotoneAndInRange(t *testing.T) {
	c, err := New([]int{7, 3, 3, 0, 9, 1, 1, 1, 12, 4}, 12)
	require.NoError(t, err)

	prev := 2.0
	for a := -2; a <= 14; a++ {
		got := c.ScoreNonconformity(a)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0)
		assert.LessOrEqual(t, got, prev, "a=%d", a)
		prev = got
	}
}

func TestNewSortsCopy(t *testing.T) {
	in := []int{4, 0, 2}
	c, err := New(in, 6)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 4}, c.Scores())
	assert.Equal(t, []int{4, 0, 2}, in)
}

func TestPValues(t *testing.T) {
	c := exampleCalibrator(t)

	p, err := c.PValues([]int{1, 5})
	require.NoError(t, err)
	require.Len(t, p, 2)
	assert.InDelta(t, 0.0, p[0], 1e-12) // a = 5
	assert.InDelta(t, 0.8, p[1], 1e-12) // a = 1

	cred, err := c.Score([]int{1, 5})
	require.NoError(t, err)
	assert.Equal(t, cred, p[1])
}

func TestScoreMatrix(t *testing.T) {
	c := exampleCalibrator(t)
	votes, err := model.VoteMatrixFromRows([][]int{{6, 0}, {3, 3}, {0, 6}})
	require.NoError(t, err)

	got, err := c.ScoreMatrix(votes)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1.0, 0.2, 1.0}, got, 1e-12)
}

func TestScoreRejectsWrongTotals(t *testing.T) {
	c := exampleCalibrator(t)

	_, err := c.Score([]int{0, 4})
	var vte *model.VoteTotalError
	require.ErrorAs(t, err, &vte)
	assert.Equal(t, 6, vte.Expected)
	assert.Equal(t, 4, vte.Actual)

	_, err = c.Score(nil)
	assert.ErrorAs(t, err, &vte)

	votes, err := model.VoteMatrixFromRows([][]int{{6, 0}, {2, 2}})
	require.NoError(t, err)
	_, err = c.ScoreMatrix(votes)
	require.ErrorAs(t, err, &vte)
	assert.Equal(t, 1, vte.Row)

	_, err = c.PValues([]int{7, 0})
	assert.ErrorAs(t, err, &vte)
}

func TestCalibrateErrors(t *testing.T) {
	labels, err := model.NewLabels([]int{0, 1}, 2)
	require.NoError(t, err)
	votes, err := model.VoteMatrixFromRows([][]int{{2, 0}, {1, 1}})
	require.NoError(t, err)

	t.Run("empty", func(t *testing.T) {
		empty, err := model.NewLabels(nil, 2)
		require.NoError(t, err)
		_, err = Calibrate(model.NewVoteMatrix(0, 2), empty, 2, 1)
		assert.ErrorIs(t, err, model.ErrEmptyCalibrationSet)

		_, err = New(nil, 6)
		assert.ErrorIs(t, err, model.ErrEmptyCalibrationSet)
	})

	t.Run("invalid k", func(t *testing.T) {
		_, err := Calibrate(votes, labels, 0, 1)
		assert.ErrorIs(t, err, model.ErrInvalidK)
	})

	t.Run("invalid layer count", func(t *testing.T) {
		_, err := Calibrate(votes, labels, 2, 0)
		assert.ErrorIs(t, err, ErrInvalidLayerCount)
	})

	t.Run("row count mismatch", func(t *testing.T) {
		three, err := model.NewLabels([]int{0, 1, 1}, 2)
		require.NoError(t, err)
		_, err = Calibrate(votes, three, 2, 1)
		assert.ErrorIs(t, err, model.ErrBatchSizeMismatch)
	})

	t.Run("label outside vote columns", func(t *testing.T) {
		wide, err := model.NewLabels([]int{0, 2}, 3)
		require.NoError(t, err)
		_, err = Calibrate(votes, wide, 2, 1)
		var lre *model.LabelRangeError
		require.ErrorAs(t, err, &lre)
		assert.Equal(t, 1, lre.Position)
	})

	t.Run("partial layer votes", func(t *testing.T) {
		_, err := Calibrate(votes, labels, 2, 2)
		var vte *model.VoteTotalError
		require.ErrorAs(t, err, &vte)
		assert.Equal(t, 0, vte.Row)
	})
}
