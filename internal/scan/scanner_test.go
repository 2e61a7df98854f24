package scan

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sort"
	"testing"

	"github.com/spf13/afero"
)

// pngBytes encodes a small gradient PNG. seed shifts the colors so different
// seeds produce visually different images.
func pngBytes(t *testing.T, seed uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{uint8(x*16) + seed, uint8(y * 16), seed, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newTestFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	data := pngBytes(t, 0)
	// Two identical images, one different, one undecodable, one ignored.
	afero.WriteFile(fs, "photos/a.png", data, 0644)
	afero.WriteFile(fs, "photos/sub/b.png", data, 0644)
	afero.WriteFile(fs, "photos/c.png", pngBytes(t, 90), 0644)
	afero.WriteFile(fs, "photos/bad.jpg", []byte("not an image"), 0644)
	afero.WriteFile(fs, "photos/notes.txt", []byte("ignore me"), 0644)
	return fs
}

func TestScanFolder(t *testing.T) {
	fs := newTestFs(t)
	s := NewScanner(WithFs(fs), WithWorkers(4))

	images, warnings, err := s.ScanFolder("photos")
	if err != nil {
		t.Fatalf("ScanFolder() error = %v", err)
	}

	// All four image files are recorded; the text file is not.
	if len(images) != 4 {
		t.Fatalf("got %d records, want 4", len(images))
	}

	// Records come back sorted by path regardless of worker completion order.
	if !sort.SliceIsSorted(images, func(i, j int) bool {
		return images[i].Path < images[j].Path
	}) {
		t.Error("records not sorted by path")
	}

	byPath := make(map[string]bool)
	for _, img := range images {
		byPath[img.Path] = true
		if img.FileSize == 0 {
			t.Errorf("%s: FileSize not set", img.Path)
		}
	}
	if byPath["photos/notes.txt"] {
		t.Error("non-image file was recorded")
	}

	// The undecodable image keeps its record for exact matching but carries
	// no comparable values, and the failure is reported.
	var sawBad bool
	for _, img := range images {
		if img.Path == "photos/bad.jpg" {
			sawBad = true
			if img.PHashes != nil || img.Gray != nil {
				t.Error("undecodable image must not carry hashes or buffers")
			}
		} else {
			if img.PHashes == nil {
				t.Errorf("%s: missing perceptual hashes", img.Path)
			}
			if img.Gray == nil {
				t.Errorf("%s: missing grayscale buffer", img.Path)
			}
		}
	}
	if !sawBad {
		t.Error("undecodable image record missing entirely")
	}

	var warned bool
	for _, w := range warnings {
		if w.Path == "photos/bad.jpg" {
			warned = true
		}
	}
	if !warned {
		t.Errorf("expected a warning for photos/bad.jpg, got %v", warnings)
	}
}

func TestScanFolder_IdenticalImagesSameHashes(t *testing.T) {
	fs := newTestFs(t)
	s := NewScanner(WithFs(fs))

	images, _, err := s.ScanFolder("photos")
	if err != nil {
		t.Fatalf("ScanFolder() error = %v", err)
	}

	byPath := make(map[string]*struct{ a, d, p, w uint64 })
	for _, img := range images {
		if img.PHashes != nil {
			byPath[img.Path] = &struct{ a, d, p, w uint64 }{
				img.PHashes.Average, img.PHashes.Difference,
				img.PHashes.Perception, img.PHashes.Wavelet,
			}
		}
	}

	a, b := byPath["photos/a.png"], byPath["photos/sub/b.png"]
	if a == nil || b == nil {
		t.Fatal("expected hashes for a.png and b.png")
	}
	if *a != *b {
		t.Errorf("identical images got different hashes: %+v vs %+v", a, b)
	}
}

func TestScanFolder_SkipsDisabledStrategies(t *testing.T) {
	fs := newTestFs(t)
	s := NewScanner(WithFs(fs), WithStrategies(false, false))

	images, _, err := s.ScanFolder("photos")
	if err != nil {
		t.Fatalf("ScanFolder() error = %v", err)
	}
	for _, img := range images {
		if img.PHashes != nil || img.Gray != nil {
			t.Errorf("%s: comparable values computed with strategies disabled", img.Path)
		}
	}
}

func TestScanFolder_MissingRoot(t *testing.T) {
	s := NewScanner(WithFs(afero.NewMemMapFs()))
	if _, _, err := s.ScanFolder("nope"); err == nil {
		t.Error("expected error for missing folder")
	}
}

func TestScanFolder_RootIsFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "file.jpg", []byte("x"), 0644)

	s := NewScanner(WithFs(fs))
	if _, _, err := s.ScanFolder("file.jpg"); err == nil {
		t.Error("expected error for non-directory root")
	}
}

func TestScanFolder_EmptyFolder(t *testing.T) {
	fs := afero.NewMemMapFs()
	fs.MkdirAll("empty", 0755)

	s := NewScanner(WithFs(fs))
	images, warnings, err := s.ScanFolder("empty")
	if err != nil {
		t.Fatalf("ScanFolder() error = %v", err)
	}
	if len(images) != 0 || len(warnings) != 0 {
		t.Errorf("expected no records, got %d images, %d warnings", len(images), len(warnings))
	}
}
