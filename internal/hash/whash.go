package hash

import (
	"image"
	"sort"
)

// Wavelet hash parameters: the image is reduced to waveletScale x waveletScale
// grayscale, a Haar wavelet transform is applied until the low-frequency band
// is waveletHashSize x waveletHashSize, and each coefficient is compared
// against the band's median to produce one bit.
const (
	waveletScale    = 64
	waveletHashSize = 8
)

// WaveletHash computes a 64-bit Haar wavelet hash of an image.
func WaveletHash(img image.Image) uint64 {
	gray := grayResize(img, waveletScale, waveletScale)

	// Copy into a mutable matrix for the in-place transform.
	m := make([][]float64, waveletScale)
	for y := range m {
		m[y] = make([]float64, waveletScale)
		for x := range m[y] {
			m[y][x] = gray.At(x, y)
		}
	}

	// Repeated single-level Haar decompositions, keeping only the
	// low-frequency quadrant, until it matches the hash size.
	for size := waveletScale; size > waveletHashSize; size /= 2 {
		haarStep(m, size)
	}

	// Threshold the low-frequency band against its median.
	coeffs := make([]float64, 0, waveletHashSize*waveletHashSize)
	for y := 0; y < waveletHashSize; y++ {
		for x := 0; x < waveletHashSize; x++ {
			coeffs = append(coeffs, m[y][x])
		}
	}
	med := median(coeffs)

	var h uint64
	for y := 0; y < waveletHashSize; y++ {
		for x := 0; x < waveletHashSize; x++ {
			h <<= 1
			if m[y][x] > med {
				h |= 1
			}
		}
	}
	return h
}

// haarStep performs one level of the 2D Haar decomposition on the top-left
// size x size block of m, writing averages into the top-left quadrant.
func haarStep(m [][]float64, size int) {
	half := size / 2
	row := make([]float64, size)

	// Rows: pairwise averages to the left half, differences to the right.
	for y := 0; y < size; y++ {
		copy(row, m[y][:size])
		for x := 0; x < half; x++ {
			m[y][x] = (row[2*x] + row[2*x+1]) / 2
			m[y][half+x] = (row[2*x] - row[2*x+1]) / 2
		}
	}

	// Columns: same over the transformed rows.
	col := make([]float64, size)
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			col[y] = m[y][x]
		}
		for y := 0; y < half; y++ {
			m[y][x] = (col[2*y] + col[2*y+1]) / 2
			m[half+y][x] = (col[2*y] - col[2*y+1]) / 2
		}
	}
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
