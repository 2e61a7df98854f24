// Package analyze turns duplicate groups into keep/delete recommendations
// and space-savings estimates.
package analyze

import (
	"sort"

	"github.com/Parth7487/imagedup/internal/models"
)

// Groups designates a file to keep per duplicate group and computes per-group
// and aggregate wasted space.
//
// The keep choice is the most recently modified file; among equal timestamps
// the one with the shortest path wins, which makes the pick reproducible
// across runs. Wasted space is (groupSize-1) * size of the kept file; for
// exact groups all members have equal size, for perceptual and structural
// groups this is an approximation kept for compatibility with the report
// format rather than a per-file sum.
func Groups(groups []*models.DuplicateGroup) *models.Analysis {
	analysis := &models.Analysis{
		Recommendations: []*models.Recommendation{},
	}

	for _, group := range groups {
		if len(group.Images) < 2 {
			continue
		}

		sorted := make([]*models.ImageInfo, len(group.Images))
		copy(sorted, group.Images)
		sort.SliceStable(sorted, func(i, j int) bool {
			a, b := sorted[i], sorted[j]
			if !a.ModTime.Equal(b.ModTime) {
				return a.ModTime.After(b.ModTime)
			}
			return len(a.Path) < len(b.Path)
		})

		keep := sorted[0]
		wasted := keep.FileSize * int64(len(sorted)-1)

		rec := &models.Recommendation{
			Keep:       keep.Path,
			FileSize:   keep.FileSize,
			SpaceSaved: wasted,
		}
		for _, img := range sorted[1:] {
			rec.Delete = append(rec.Delete, img.Path)
		}

		analysis.TotalGroups++
		analysis.TotalDuplicates += len(sorted) - 1
		analysis.TotalWasted += wasted
		analysis.Recommendations = append(analysis.Recommendations, rec)
	}

	return analysis
}
