package match

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Parth7487/imagedup/internal/hash"
	"github.com/Parth7487/imagedup/internal/models"
)

// DefaultStructuralLimit caps the candidate set for the structural strategy.
// The pass is O(n²) in comparisons and holds every resized buffer in memory,
// so past this size the strategy is skipped entirely.
const DefaultStructuralLimit = 500

// StructuralMatcher finds groups of structurally similar images by running
// the greedy grouping pass over pairwise SSIM scores.
type StructuralMatcher struct {
	threshold float64
	limit     int
	log       zerolog.Logger
}

// NewStructuralMatcher creates a StructuralMatcher. limit <= 0 selects
// DefaultStructuralLimit.
func NewStructuralMatcher(threshold float64, limit int, log zerolog.Logger) *StructuralMatcher {
	if threshold < 0 || threshold > 1 {
		threshold = 0.9
	}
	if limit <= 0 {
		limit = DefaultStructuralLimit
	}
	return &StructuralMatcher{threshold: threshold, limit: limit, log: log}
}

// FindGroups groups images whose SSIM score against a group seed reaches the
// threshold. A failed comparison between two images is reported as a warning
// and treated as "not similar" for that pair only. When the candidate count
// exceeds the configured limit the strategy reports zero groups.
func (m *StructuralMatcher) FindGroups(images []*models.ImageInfo) ([]*models.DuplicateGroup, []models.Warning) {
	var candidates []*models.ImageInfo
	for _, img := range images {
		if img.Gray != nil {
			candidates = append(candidates, img)
		}
	}
	if len(candidates) < 2 {
		return nil, nil
	}
	if len(candidates) > m.limit {
		m.log.Warn().
			Int("images", len(candidates)).
			Int("limit", m.limit).
			Msg("skipping structural similarity pass, too many images")
		return nil, nil
	}

	var warnings []models.Warning
	sim := func(a, b *models.ImageInfo) (float64, error) {
		return hash.SSIM(a.Gray, b.Gray)
	}
	onError := func(a, b *models.ImageInfo, err error) {
		m.log.Warn().Str("path", a.Path).Str("other", b.Path).Err(err).
			Msg("structural comparison failed")
		warnings = append(warnings, models.Warning{
			Path:    a.Path,
			Message: fmt.Sprintf("comparison with %s failed: %v", b.Path, err),
		})
	}

	members := groupGreedy(candidates, sim, m.threshold, onError)
	return buildGroups(models.StrategyStructural, "structural_group", members), warnings
}
