package lsh

// WordsFor returns the number of uint64 words needed for a bits-wide code.
func WordsFor(bits int) int {
	return (bits + 63) / 64
}

// CodeBytes returns the code memory of an n-point index built with optFns.
func CodeBytes(n int, optFns ...Option) int64 {
	return int64(n) * int64(WordsFor(applyOptions(optFns).HashBits)) * 8
}

// PackSigns sets bit i of dst when proj[i] > 0 and clears it otherwise.
// Bits are packed little-endian within each uint64 word; trailing bits of
// the last word stay zero so they never contribute to Hamming distance.
func PackSigns(dst []uint64, proj []float32) {
	for i := range dst {
		dst[i] = 0
	}
	for i, val := range proj {
		if val > 0 {
			dst[i/64] |= 1 << (i % 64)
		}
	}
}
