package models

import "time"

// Strategy labels used as categories in results and reports.
const (
	StrategyExact      = "exact_duplicates"
	StrategyPerceptual = "similar_images"
	StrategyStructural = "structural_similar"
)

// PerceptualHashes holds the four perceptual hash variants computed for an
// image. Each variant is a 64-bit pattern and is only comparable to the same
// variant of another image.
type PerceptualHashes struct {
	Average    uint64 `json:"average"`
	Difference uint64 `json:"difference"`
	Perception uint64 `json:"perception"`
	Wavelet    uint64 `json:"wavelet"`
}

// Variants returns the hash values in a fixed order (average, difference,
// perception, wavelet).
func (p *PerceptualHashes) Variants() [4]uint64 {
	return [4]uint64{p.Average, p.Difference, p.Perception, p.Wavelet}
}

// GrayImage is a normalized grayscale pixel buffer used for structural
// comparison. Pixel values are in [0,1], stored row-major.
type GrayImage struct {
	Width  int
	Height int
	Pix    []float64
}

// At returns the pixel value at (x, y).
func (g *GrayImage) At(x, y int) float64 {
	return g.Pix[y*g.Width+x]
}

// ImageInfo holds metadata and lazily computed digests for one image file.
// Path is the record's identity and never changes; digests and pixel buffers
// are attached once per run and cached for the record's lifetime.
type ImageInfo struct {
	Path     string    `json:"path"`
	FileSize int64     `json:"file_size"`
	ModTime  time.Time `json:"mod_time"`
	Width    int       `json:"width,omitempty"`
	Height   int       `json:"height,omitempty"`
	Format   string    `json:"format,omitempty"`
	HasExif  bool      `json:"has_exif,omitempty"`

	// FileHash is the hex MD5 digest of the file content, computed on demand
	// by the exact strategy.
	FileHash string `json:"file_hash,omitempty"`
	// QuickHash is a cheap content hash used only to prefilter exact-match
	// candidates; it never decides final group membership.
	QuickHash uint64 `json:"-"`

	PHashes *PerceptualHashes `json:"perceptual_hashes,omitempty"`
	Gray    *GrayImage        `json:"-"`
}

// DuplicateGroup is an ordered set of images considered duplicates under one
// strategy. Member order is discovery order; the first member is the seed for
// similarity-based strategies.
type DuplicateGroup struct {
	Label    string       `json:"label"`
	Strategy string       `json:"strategy"`
	Digest   string       `json:"digest,omitempty"` // exact strategy only
	Images   []*ImageInfo `json:"images"`
}

// Recommendation describes which file of a group to keep and which to delete,
// with the space reclaimed by deleting them.
type Recommendation struct {
	Keep       string   `json:"keep"`
	Delete     []string `json:"delete"`
	FileSize   int64    `json:"file_size"`
	SpaceSaved int64    `json:"space_saved"`
}

// Analysis aggregates recommendations over all duplicate groups.
type Analysis struct {
	TotalGroups     int               `json:"total_groups"`
	TotalDuplicates int               `json:"total_duplicate_files"`
	TotalWasted     int64             `json:"total_wasted_space"`
	Recommendations []*Recommendation `json:"recommendations"`
}

// Warning records a non-fatal per-file or per-pair failure. The run always
// completes; warnings are returned alongside normal output.
type Warning struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ScanResult is the complete outcome of one scan: all duplicate groups across
// strategies, the analyzer output, and collected warnings. It is a plain
// serializable aggregate with no opaque handles.
type ScanResult struct {
	Directory   string            `json:"directory"`
	ScannedAt   time.Time         `json:"scanned_at"`
	TotalImages int               `json:"total_images"`
	Groups      []*DuplicateGroup `json:"groups"`
	Analysis    *Analysis         `json:"analysis"`
	Warnings    []Warning         `json:"warnings,omitempty"`
}

// StrategyGroups returns the groups found by one strategy, in result order.
func (r *ScanResult) StrategyGroups(strategy string) []*DuplicateGroup {
	var groups []*DuplicateGroup
	for _, g := range r.Groups {
		if g.Strategy == strategy {
			groups = append(groups, g)
		}
	}
	return groups
}
