// Package match implements the duplicate grouping engine: digest-equality
// grouping for exact duplicates and a single greedy, seed-anchored clustering
// routine shared by the perceptual and structural strategies.
package match

import (
	"fmt"

	"github.com/Parth7487/imagedup/internal/models"
)

// Matcher is the interface for duplicate detection strategies.
type Matcher interface {
	// FindGroups partitions the input into duplicate groups. The input order
	// must be stable; the partition depends on it. Non-fatal per-file or
	// per-pair failures are returned as warnings alongside the groups.
	FindGroups(images []*models.ImageInfo) ([]*models.DuplicateGroup, []models.Warning)
}

// SimilarityFunc scores the closeness of two images in [0,1] under one
// strategy; 1.0 means identical. A returned error means the pair could not be
// compared and is treated as "not similar" for that pair only.
type SimilarityFunc func(a, b *models.ImageInfo) (float64, error)

// groupGreedy partitions images with a single-pass greedy algorithm. Each
// record not yet placed in a group seeds a new group and pulls in every
// subsequent unprocessed record scoring >= threshold against it. Records are
// only ever compared against seeds, never against other members, so the
// partition is intentionally not transitive: a record similar to a member but
// not to the seed stays out. Groups of size 1 are dropped.
//
// The pass must run strictly in input order; reordering the input changes
// which records become seeds and therefore the resulting partition.
func groupGreedy(images []*models.ImageInfo, sim SimilarityFunc, threshold float64, onError func(a, b *models.ImageInfo, err error)) [][]*models.ImageInfo {
	var groups [][]*models.ImageInfo
	processed := make([]bool, len(images))

	for i, seed := range images {
		if processed[i] {
			continue
		}

		group := []*models.ImageInfo{seed}
		processed[i] = true

		for j := i + 1; j < len(images); j++ {
			if processed[j] {
				continue
			}
			score, err := sim(seed, images[j])
			if err != nil {
				if onError != nil {
					onError(seed, images[j], err)
				}
				continue
			}
			if score >= threshold {
				group = append(group, images[j])
				processed[j] = true
			}
		}

		if len(group) > 1 {
			groups = append(groups, group)
		}
	}

	return groups
}

// buildGroups wraps raw member lists into labeled DuplicateGroups. Labels are
// numbered in result order so repeated runs produce identical output.
func buildGroups(strategy, labelPrefix string, members [][]*models.ImageInfo) []*models.DuplicateGroup {
	groups := make([]*models.DuplicateGroup, 0, len(members))
	for i, imgs := range members {
		groups = append(groups, &models.DuplicateGroup{
			Label:    groupLabel(labelPrefix, i),
			Strategy: strategy,
			Images:   imgs,
		})
	}
	return groups
}

func groupLabel(prefix string, n int) string {
	return fmt.Sprintf("%s_%d", prefix, n)
}
