package hash

import (
	"errors"
	"fmt"

	"github.com/Parth7487/imagedup/internal/models"
)

// SSIM parameters. Pixel values are normalized to [0,1], so the dynamic range
// is 1.0; the window size matches the common 7x7 convention.
const (
	ssimWindow = 7
	ssimC1     = 0.01 * 0.01 // (k1 * L)^2
	ssimC2     = 0.03 * 0.03 // (k2 * L)^2
)

// ErrNoBuffer is returned when one of the compared images has no grayscale
// buffer attached.
var ErrNoBuffer = errors.New("missing grayscale buffer")

// SSIM computes the mean structural similarity between two equally sized
// grayscale buffers. The result is in [0,1]; 1.0 means identical images.
func SSIM(a, b *models.GrayImage) (float64, error) {
	if a == nil || b == nil {
		return 0, ErrNoBuffer
	}
	if a.Width != b.Width || a.Height != b.Height {
		return 0, fmt.Errorf("dimension mismatch: %dx%d vs %dx%d",
			a.Width, a.Height, b.Width, b.Height)
	}
	if a.Width < ssimWindow || a.Height < ssimWindow {
		return 0, fmt.Errorf("image smaller than %dx%d window", ssimWindow, ssimWindow)
	}

	var sum float64
	var windows int

	// Slide the window with a stride equal to its size; overlapping windows
	// change the score only marginally and cost an order of magnitude more.
	for y := 0; y+ssimWindow <= a.Height; y += ssimWindow {
		for x := 0; x+ssimWindow <= a.Width; x += ssimWindow {
			sum += windowSSIM(a, b, x, y)
			windows++
		}
	}

	score := sum / float64(windows)
	if score < 0 {
		score = 0
	}
	return score, nil
}

// windowSSIM computes the SSIM of one window anchored at (x0, y0).
func windowSSIM(a, b *models.GrayImage, x0, y0 int) float64 {
	n := float64(ssimWindow * ssimWindow)

	var meanA, meanB float64
	for y := y0; y < y0+ssimWindow; y++ {
		for x := x0; x < x0+ssimWindow; x++ {
			meanA += a.At(x, y)
			meanB += b.At(x, y)
		}
	}
	meanA /= n
	meanB /= n

	var varA, varB, cov float64
	for y := y0; y < y0+ssimWindow; y++ {
		for x := x0; x < x0+ssimWindow; x++ {
			da := a.At(x, y) - meanA
			db := b.At(x, y) - meanB
			varA += da * da
			varB += db * db
			cov += da * db
		}
	}
	varA /= n - 1
	varB /= n - 1
	cov /= n - 1

	num := (2*meanA*meanB + ssimC1) * (2*cov + ssimC2)
	den := (meanA*meanA + meanB*meanB + ssimC1) * (varA + varB + ssimC2)
	return num / den
}
