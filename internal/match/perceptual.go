package match

import (
	"github.com/Parth7487/imagedup/internal/hash"
	"github.com/Parth7487/imagedup/internal/models"
)

// PerceptualMatcher finds groups of visually similar images using the greedy
// grouping pass over perceptual hash distances.
type PerceptualMatcher struct {
	threshold float64
}

// NewPerceptualMatcher creates a PerceptualMatcher. The threshold is a
// similarity score in [0,1]; images scoring at or above it under any hash
// variant join the seed's group.
func NewPerceptualMatcher(threshold float64) *PerceptualMatcher {
	if threshold < 0 || threshold > 1 {
		threshold = 0.9
	}
	return &PerceptualMatcher{threshold: threshold}
}

// Threshold returns the configured similarity threshold.
func (m *PerceptualMatcher) Threshold() float64 {
	return m.threshold
}

// FindGroups groups images whose best per-variant similarity against a group
// seed reaches the threshold. Images without perceptual hashes (failed
// decodes) are skipped; the scanner already reported those.
func (m *PerceptualMatcher) FindGroups(images []*models.ImageInfo) ([]*models.DuplicateGroup, []models.Warning) {
	var candidates []*models.ImageInfo
	for _, img := range images {
		if img.PHashes != nil {
			candidates = append(candidates, img)
		}
	}
	if len(candidates) < 2 {
		return nil, nil
	}

	sim := func(a, b *models.ImageInfo) (float64, error) {
		return hash.MaxSimilarity(a.PHashes, b.PHashes), nil
	}

	members := groupGreedy(candidates, sim, m.threshold, nil)
	return buildGroups(models.StrategyPerceptual, "group", members), nil
}
