package model

import (
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// Labels is the immutable training label array.
//
// Position i holds the class of training sample i. Every layer index
// resolves neighbor positions through the same Labels value, so all layers
// agree on the label of a sample by construction.
type Labels struct {
	values     []int
	numClasses int
	members    []*roaring.Bitmap // class → positions
}

// NewLabels validates values against [0, numClasses) and builds the label array.
// The input slice is copied.
func NewLabels(values []int, numClasses int) (*Labels, error) {
	if numClasses <= 0 {
		return nil, ErrInvalidNumClasses
	}

	members := make([]*roaring.Bitmap, numClasses)
	for c := range members {
		members[c] = roaring.New()
	}

	for i, v := range values {
		if v < 0 || v >= numClasses {
			return nil, &LabelRangeError{Position: i, Label: v, NumClasses: numClasses}
		}
		members[v].Add(uint32(i))
	}

	for _, bm := range members {
		bm.RunOptimize()
	}

	return &Labels{
		values:     slices.Clone(values),
		numClasses: numClasses,
		members:    members,
	}, nil
}

// At returns the label at position pos.
func (l *Labels) At(pos int) int {
	return l.values[pos]
}

// Len returns the number of labeled samples.
func (l *Labels) Len() int {
	return len(l.values)
}

// NumClasses returns the size of the label space.
func (l *Labels) NumClasses() int {
	return l.numClasses
}

// Values returns a copy of the label array.
func (l *Labels) Values() []int {
	return slices.Clone(l.values)
}

// Members returns the positions labeled with class.
// The returned bitmap is a copy and may be modified by the caller.
func (l *Labels) Members(class int) *roaring.Bitmap {
	if class < 0 || class >= l.numClasses {
		return roaring.New()
	}
	return l.members[class].Clone()
}

// Support returns the number of samples per class.
func (l *Labels) Support() []int {
	out := make([]int, l.numClasses)
	for c, bm := range l.members {
		out[c] = int(bm.GetCardinality())
	}
	return out
}
