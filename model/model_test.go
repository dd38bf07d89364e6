package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLabels(t *testing.T) {
	labels, err := NewLabels([]int{0, 0, 1, 1, 2}, 3)
	require.NoError(t, err)

	assert.Equal(t, 5, labels.Len())
	assert.Equal(t, 3, labels.NumClasses())
	assert.Equal(t, 1, labels.At(3))
	assert.Equal(t, []int{2, 2, 1}, labels.Support())
	assert.Equal(t, []uint32{2, 3}, labels.Members(1).ToArray())
	assert.True(t, labels.Members(7).IsEmpty())
}

func TestNewLabels_CopiesInput(t *testing.T) {
	in := []int{0, 1}
	labels, err := NewLabels(in, 2)
	require.NoError(t, err)

	in[0] = 1
	assert.Equal(t, 0, labels.At(0))

	out := labels.Values()
	out[1] = 0
	assert.Equal(t, 1, labels.At(1))
}

func TestNewLabels_Errors(t *testing.T) {
	tests := []struct {
		name       string
		values     []int
		numClasses int
		position   int
	}{
		{"Negative", []int{0, -1}, 2, 1},
		{"TooLarge", []int{0, 1, 2}, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLabels(tt.values, tt.numClasses)
			var lre *LabelRangeError
			require.ErrorAs(t, err, &lre)
			assert.Equal(t, tt.position, lre.Position)
			assert.Equal(t, tt.numClasses, lre.NumClasses)
		})
	}

	_, err := NewLabels([]int{0}, 0)
	assert.ErrorIs(t, err, ErrInvalidNumClasses)
}

func TestVoteMatrix(t *testing.T) {
	m := NewVoteMatrix(2, 3)
	m.Add(0, 1, 4)
	m.Add(0, 2, 2)
	m.Add(1, 0, 3)
	m.Add(1, 2, 3)

	assert.Equal(t, []int{0, 4, 2}, m.Row(0))
	assert.Equal(t, 6, m.RowSum(0))
	assert.Equal(t, 1, m.Argmax(0))
	assert.Equal(t, 4, m.Max(0))

	// Tie between class 0 and class 2 resolves to the lower index.
	assert.Equal(t, 0, m.Argmax(1))
	assert.Equal(t, 3, m.Max(1))
}

func TestVoteMatrixFromRows(t *testing.T) {
	m, err := VoteMatrixFromRows([][]int{{1, 2}, {3, 0}})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Rows())
	assert.Equal(t, 2, m.Cols())
	assert.Equal(t, 3, m.At(1, 0))

	other, err := VoteMatrixFromRows([][]int{{1, 2}, {3, 0}})
	require.NoError(t, err)
	assert.True(t, m.Equal(other))

	_, err = VoteMatrixFromRows([][]int{{1, 2}, {3}})
	assert.ErrorIs(t, err, ErrBatchSizeMismatch)
}

func TestArgmaxRow(t *testing.T) {
	assert.Equal(t, -1, ArgmaxRow(nil))
	assert.Equal(t, 0, ArgmaxRow([]int{5, 5, 5}))
	assert.Equal(t, 2, ArgmaxRow([]int{1, 2, 3}))
}

func TestEmbeddings_BatchSize(t *testing.T) {
	e := Embeddings{
		"a": {{1}, {2}},
		"b": {{1, 2}, {3, 4}},
	}
	n, err := e.BatchSize()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	e["c"] = [][]float32{{1}}
	_, err = e.BatchSize()
	assert.True(t, errors.Is(err, ErrBatchSizeMismatch))

	n, err = Embeddings{}.BatchSize()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestEmbeddings_Select(t *testing.T) {
	e := Embeddings{"a": {{1}}, "b": {{2}}}

	sel, err := e.Select([]string{"b"})
	require.NoError(t, err)
	assert.Len(t, sel, 1)

	_, err = e.Select([]string{"z"})
	var ule *UnknownLayerError
	require.ErrorAs(t, err, &ule)
	assert.Equal(t, "z", ule.Layer)
}
