// Package safeconv provides integer conversions that panic instead of
// silently wrapping.
package safeconv

// MustIntToUint64 converts a size or count to uint64, panics if negative.
// Use only for values that are lengths of something.
func MustIntToUint64(v int) uint64 {
	if v < 0 {
		panic("safeconv: negative int to uint64 conversion")
	}

	return uint64(v)
}

// SumSizes adds up per-component sizes, panics if any is negative.
func SumSizes(sizes map[int]int) uint64 {
	var total uint64

	for _, size := range sizes {
		total += MustIntToUint64(size)
	}

	return total
}
