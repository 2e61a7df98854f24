package match

import (
	"reflect"
	"testing"

	"github.com/Parth7487/imagedup/internal/models"
)

func phashes(average, difference, perception, wavelet uint64) *models.PerceptualHashes {
	return &models.PerceptualHashes{
		Average:    average,
		Difference: difference,
		Perception: perception,
		Wavelet:    wavelet,
	}
}

func TestPerceptualMatcher_Empty(t *testing.T) {
	matcher := NewPerceptualMatcher(0.9)
	if groups, _ := matcher.FindGroups(nil); groups != nil {
		t.Errorf("expected nil for empty input, got %v", groups)
	}
}

func TestPerceptualMatcher_IdenticalHashes(t *testing.T) {
	matcher := NewPerceptualMatcher(0.9)
	images := []*models.ImageInfo{
		{Path: "a.jpg", PHashes: phashes(0xABCD, 0x1234, 0x5678, 0x9ABC)},
		{Path: "b.jpg", PHashes: phashes(0xABCD, 0x1234, 0x5678, 0x9ABC)},
		{Path: "c.jpg", PHashes: phashes(^uint64(0xABCD), ^uint64(0x1234), ^uint64(0x5678), ^uint64(0x9ABC))},
	}
	groups, warnings := matcher.FindGroups(images)
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	want := []string{"a.jpg", "b.jpg"}
	if got := paths(groups[0].Images); !reflect.DeepEqual(got, want) {
		t.Errorf("group = %v, want %v", got, want)
	}
	if groups[0].Strategy != models.StrategyPerceptual {
		t.Errorf("strategy = %q, want %q", groups[0].Strategy, models.StrategyPerceptual)
	}
}

func TestPerceptualMatcher_AnyVariantSuffices(t *testing.T) {
	// Three hash variants disagree completely; agreement under the wavelet
	// variant alone must still group the images.
	matcher := NewPerceptualMatcher(0.9)
	images := []*models.ImageInfo{
		{Path: "a.jpg", PHashes: phashes(0, 0, 0, 0xFF00FF00FF00FF00)},
		{Path: "b.jpg", PHashes: phashes(^uint64(0), ^uint64(0), ^uint64(0), 0xFF00FF00FF00FF00)},
	}
	groups, _ := matcher.FindGroups(images)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group from a single agreeing variant, got %d", len(groups))
	}
}

func TestPerceptualMatcher_ThresholdBoundary(t *testing.T) {
	// 64-bit hashes: 6 differing bits score 1-6/64 ~ 0.906, 7 bits ~ 0.891.
	tests := []struct {
		name       string
		bits       uint64
		wantGroups int
	}{
		{"six bits inside threshold", 0x3F, 1},
		{"seven bits outside threshold", 0x7F, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matcher := NewPerceptualMatcher(0.9)
			images := []*models.ImageInfo{
				{Path: "a.jpg", PHashes: phashes(0, 0, 0, 0)},
				{Path: "b.jpg", PHashes: phashes(tt.bits, tt.bits, tt.bits, tt.bits)},
			}
			groups, _ := matcher.FindGroups(images)
			if len(groups) != tt.wantGroups {
				t.Errorf("got %d groups, want %d", len(groups), tt.wantGroups)
			}
		})
	}
}

func TestPerceptualMatcher_SkipsUnhashedImages(t *testing.T) {
	matcher := NewPerceptualMatcher(0.9)
	images := []*models.ImageInfo{
		{Path: "a.jpg", PHashes: phashes(1, 1, 1, 1)},
		{Path: "broken.jpg"}, // decode failed during scanning
		{Path: "b.jpg", PHashes: phashes(1, 1, 1, 1)},
	}
	groups, _ := matcher.FindGroups(images)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	for _, img := range groups[0].Images {
		if img.Path == "broken.jpg" {
			t.Error("unhashed image must not appear in any group")
		}
	}
}

func TestPerceptualMatcher_InvalidThresholdFallsBack(t *testing.T) {
	matcher := NewPerceptualMatcher(1.5)
	if matcher.Threshold() != 0.9 {
		t.Errorf("threshold = %v, want default 0.9", matcher.Threshold())
	}
}
