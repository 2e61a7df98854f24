// Package hash computes the comparable values the grouping engine consumes:
// content digests, perceptual hash variants, and normalized grayscale buffers.
package hash

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math/bits"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/corona10/goimagehash"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/spf13/afero"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Parth7487/imagedup/internal/models"
)

// hashBits is the bit length of every perceptual hash variant.
const hashBits = 64

// GraySize is the side length images are resized to before structural
// comparison.
const GraySize = 256

// FileHash computes the hex MD5 digest of a file's content.
func FileHash(fs afero.Fs, path string) (string, error) {
	file, err := fs.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	h := md5.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// QuickHash computes a fast xxhash content digest. It is used only to narrow
// down exact-duplicate candidates before the MD5 pass; differing quick hashes
// imply differing content, so skipping those files never changes the result.
func QuickHash(fs afero.Fs, path string) (uint64, error) {
	file, err := fs.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, file); err != nil {
		return 0, fmt.Errorf("failed to read file: %w", err)
	}

	return h.Sum64(), nil
}

// DecodeImage opens and decodes an image file.
func DecodeImage(fs afero.Fs, path string) (image.Image, string, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, strings.ToLower(format), nil
}

// ComputePerceptualHashes computes the four perceptual hash variants for a
// decoded image.
func ComputePerceptualHashes(img image.Image) (*models.PerceptualHashes, error) {
	avg, err := goimagehash.AverageHash(img)
	if err != nil {
		return nil, fmt.Errorf("average hash: %w", err)
	}
	diff, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return nil, fmt.Errorf("difference hash: %w", err)
	}
	perc, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return nil, fmt.Errorf("perception hash: %w", err)
	}

	return &models.PerceptualHashes{
		Average:    avg.GetHash(),
		Difference: diff.GetHash(),
		Perception: perc.GetHash(),
		Wavelet:    WaveletHash(img),
	}, nil
}

// GrayBuffer resizes an image to GraySize x GraySize and converts it to a
// normalized grayscale buffer for structural comparison.
func GrayBuffer(img image.Image) *models.GrayImage {
	return grayResize(img, GraySize, GraySize)
}

// grayResize scales an image to w x h and converts it to [0,1] grayscale
// using the luminance weights of image/color.
func grayResize(img image.Image, w, h int) *models.GrayImage {
	dst := image.NewGray(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)

	pix := make([]float64, w*h)
	for i, p := range dst.Pix {
		pix[i] = float64(p) / 255.0
	}
	return &models.GrayImage{Width: w, Height: h, Pix: pix}
}

// HammingDistance counts the differing bits between two hash values.
func HammingDistance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Similarity converts the Hamming distance between two hash values of the
// same variant into a [0,1] score; 1.0 means identical bit patterns.
func Similarity(a, b uint64) float64 {
	return 1.0 - float64(HammingDistance(a, b))/float64(hashBits)
}

// MaxSimilarity returns the best similarity score across all perceptual hash
// variants. Two images count as similar when they agree closely under any
// single variant, not all of them.
func MaxSimilarity(a, b *models.PerceptualHashes) float64 {
	av, bv := a.Variants(), b.Variants()
	best := 0.0
	for i := range av {
		if s := Similarity(av[i], bv[i]); s > best {
			best = s
		}
	}
	return best
}

// HasExif reports whether the file carries EXIF metadata.
func HasExif(fs afero.Fs, path string) bool {
	file, err := fs.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	_, err = exif.Decode(file)
	return err == nil
}

// IsSupportedImage checks if a file has a supported image extension.
func IsSupportedImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tiff", ".tif":
		return true
	default:
		return false
	}
}
