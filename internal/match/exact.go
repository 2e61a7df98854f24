package match

import (
	"github.com/spf13/afero"

	"github.com/Parth7487/imagedup/internal/hash"
	"github.com/Parth7487/imagedup/internal/models"
)

// ExactMatcher finds groups of byte-identical files via content digests.
type ExactMatcher struct {
	fs afero.Fs

	// SizePrefilter skips digesting files whose size matches no other file.
	// Purely an optimization; the resulting groups are identical either way.
	SizePrefilter bool
}

// NewExactMatcher creates an ExactMatcher reading files from fs.
func NewExactMatcher(fs afero.Fs, sizePrefilter bool) *ExactMatcher {
	return &ExactMatcher{fs: fs, SizePrefilter: sizePrefilter}
}

// FindGroups groups images by MD5 digest. Unreadable files are excluded and
// reported as warnings without stopping the pass. Group membership and group
// order follow the input order.
func (m *ExactMatcher) FindGroups(images []*models.ImageInfo) ([]*models.DuplicateGroup, []models.Warning) {
	var warnings []models.Warning

	candidates := images
	if m.SizePrefilter {
		candidates = m.filterBySize(images)
	}
	candidates = m.filterByQuickHash(candidates, &warnings)

	// Group by full digest, preserving first-seen digest order.
	byDigest := make(map[string][]*models.ImageInfo)
	var order []string
	for _, img := range candidates {
		if img.FileHash == "" {
			digest, err := hash.FileHash(m.fs, img.Path)
			if err != nil {
				warnings = append(warnings, models.Warning{Path: img.Path, Message: err.Error()})
				continue
			}
			img.FileHash = digest
		}
		if _, seen := byDigest[img.FileHash]; !seen {
			order = append(order, img.FileHash)
		}
		byDigest[img.FileHash] = append(byDigest[img.FileHash], img)
	}

	var groups []*models.DuplicateGroup
	for _, digest := range order {
		imgs := byDigest[digest]
		if len(imgs) < 2 {
			continue
		}
		groups = append(groups, &models.DuplicateGroup{
			Strategy: models.StrategyExact,
			Digest:   digest,
			Images:   imgs,
		})
	}
	for i, g := range groups {
		g.Label = groupLabel("group", i)
	}

	return groups, warnings
}

// filterBySize keeps only files sharing their byte size with at least one
// other file, so unique-size files never have their content read.
func (m *ExactMatcher) filterBySize(images []*models.ImageInfo) []*models.ImageInfo {
	bySize := make(map[int64]int)
	for _, img := range images {
		bySize[img.FileSize]++
	}

	var candidates []*models.ImageInfo
	for _, img := range images {
		if bySize[img.FileSize] > 1 {
			candidates = append(candidates, img)
		}
	}
	return candidates
}

// filterByQuickHash narrows candidates further with a cheap content hash.
// Files with a unique quick hash cannot be exact duplicates of anything, so
// only colliding files go on to the MD5 pass.
func (m *ExactMatcher) filterByQuickHash(images []*models.ImageInfo, warnings *[]models.Warning) []*models.ImageInfo {
	byQuick := make(map[uint64]int)
	hashed := make([]*models.ImageInfo, 0, len(images))
	for _, img := range images {
		if img.QuickHash == 0 {
			qh, err := hash.QuickHash(m.fs, img.Path)
			if err != nil {
				*warnings = append(*warnings, models.Warning{Path: img.Path, Message: err.Error()})
				continue
			}
			img.QuickHash = qh
		}
		byQuick[img.QuickHash]++
		hashed = append(hashed, img)
	}

	var candidates []*models.ImageInfo
	for _, img := range hashed {
		if byQuick[img.QuickHash] > 1 {
			candidates = append(candidates, img)
		}
	}
	return candidates
}
