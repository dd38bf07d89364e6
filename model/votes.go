package model

// VoteMatrix holds neighbor vote counts: one row per query sample, one
// column per class. Storage is a single row-major slice.
type VoteMatrix struct {
	rows int
	cols int
	data []int
}

// NewVoteMatrix allocates a zeroed rows × cols matrix.
func NewVoteMatrix(rows, cols int) *VoteMatrix {
	return &VoteMatrix{
		rows: rows,
		cols: cols,
		data: make([]int, rows*cols),
	}
}

// VoteMatrixFromRows builds a matrix from explicit rows.
// All rows must have the same length.
func VoteMatrixFromRows(rows [][]int) (*VoteMatrix, error) {
	if len(rows) == 0 {
		return NewVoteMatrix(0, 0), nil
	}
	cols := len(rows[0])
	m := NewVoteMatrix(len(rows), cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, ErrBatchSizeMismatch
		}
		copy(m.data[i*cols:(i+1)*cols], r)
	}
	return m, nil
}

// Rows returns the number of samples.
func (m *VoteMatrix) Rows() int { return m.rows }

// Cols returns the number of classes.
func (m *VoteMatrix) Cols() int { return m.cols }

// At returns the votes of sample i for class c.
func (m *VoteMatrix) At(i, c int) int {
	return m.data[i*m.cols+c]
}

// Add adds n votes for class c to sample i.
func (m *VoteMatrix) Add(i, c, n int) {
	m.data[i*m.cols+c] += n
}

// Row returns a copy of the votes of sample i.
func (m *VoteMatrix) Row(i int) []int {
	out := make([]int, m.cols)
	copy(out, m.data[i*m.cols:(i+1)*m.cols])
	return out
}

// RowSum returns the total votes cast for sample i.
func (m *VoteMatrix) RowSum(i int) int {
	var sum int
	for _, v := range m.data[i*m.cols : (i+1)*m.cols] {
		sum += v
	}
	return sum
}

// Argmax returns the best supported class for sample i.
// Ties resolve to the lowest class index.
func (m *VoteMatrix) Argmax(i int) int {
	return ArgmaxRow(m.data[i*m.cols : (i+1)*m.cols])
}

// Max returns the highest vote count for sample i.
func (m *VoteMatrix) Max(i int) int {
	row := m.data[i*m.cols : (i+1)*m.cols]
	if len(row) == 0 {
		return 0
	}
	return row[ArgmaxRow(row)]
}

// Equal reports whether both matrices have the same shape and counts.
func (m *VoteMatrix) Equal(o *VoteMatrix) bool {
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for i := range m.data {
		if m.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

// ArgmaxRow returns the index of the largest value, preferring the lowest
// index among equal values. It returns -1 for an empty row.
func ArgmaxRow(row []int) int {
	if len(row) == 0 {
		return -1
	}
	best := 0
	for c := 1; c < len(row); c++ {
		if row[c] > row[best] {
			best = c
		}
	}
	return best
}
