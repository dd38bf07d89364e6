package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDot(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Simple", []float32{1, 2, 3}, []float32{4, 5, 6}, 32},
		{"Zero", []float32{0, 0, 0}, []float32{0, 0, 0}, 0},
		{"Mixed", []float32{1, -1, 2}, []float32{1, 1, -2}, -4},
		{"Empty", []float32{}, []float32{}, 0},
		{"Single", []float32{2}, []float32{3}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Dot(tt.a, tt.b)
			assert.InDelta(t, tt.expected, got, 1e-5)
		})
	}
}

func TestHamming(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []uint64
		expected int
	}{
		{"Simple", []uint64{0xFF, 0x00}, []uint64{0x00, 0xFF}, 16},
		{"Identical", []uint64{0xAA, 0x55}, []uint64{0xAA, 0x55}, 0},
		{"Partial", []uint64{0b11110000}, []uint64{0b11111111}, 4},
		{"FullWord", []uint64{math.MaxUint64}, []uint64{0}, 64},
		{"Empty", []uint64{}, []uint64{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Hamming(tt.a, tt.b))
		})
	}
}

func TestNormalizeL2(t *testing.T) {
	t.Run("InPlace", func(t *testing.T) {
		v := []float32{3, 4}
		ok := NormalizeL2InPlace(v)
		assert.True(t, ok)
		assert.InDelta(t, float32(0.6), v[0], 1e-5)
		assert.InDelta(t, float32(0.8), v[1], 1e-5)
		assert.InDelta(t, float32(1.0), Norm(v), 1e-5)

		vZero := []float32{0, 0}
		ok = NormalizeL2InPlace(vZero)
		assert.False(t, ok)
		assert.Equal(t, []float32{0, 0}, vZero)

		vEmpty := []float32{}
		ok = NormalizeL2InPlace(vEmpty)
		assert.False(t, ok)
	})

	t.Run("Copy", func(t *testing.T) {
		v := []float32{2, 0}
		dst, ok := NormalizeL2Copy(v)
		assert.True(t, ok)
		assert.InDelta(t, float32(1), dst[0], 1e-6)
		assert.Equal(t, float32(2), v[0])

		dst, ok = NormalizeL2Copy([]float32{0, 0})
		assert.False(t, ok)
		assert.Nil(t, dst)
	})

	t.Run("Batch", func(t *testing.T) {
		src := [][]float32{{0, 5}, {0, 0}}
		out := NormalizeBatch(src)
		assert.InDelta(t, float32(0), out[0][0], 1e-6)
		assert.InDelta(t, float32(1), out[0][1], 1e-6)
		assert.Equal(t, []float32{0, 0}, out[1])
		assert.Equal(t, float32(5), src[0][1])
	})
}
