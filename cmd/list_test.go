package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Parth7487/imagedup/internal/analyze"
	"github.com/Parth7487/imagedup/internal/models"
	"github.com/Parth7487/imagedup/internal/storage"
)

func historyTestStore(t *testing.T, scans int) *storage.Storage {
	t.Helper()
	store, err := storage.NewStorage(filepath.Join(t.TempDir(), "imagedup.db"))
	if err != nil {
		t.Fatalf("NewStorage() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	mod := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	groups := []*models.DuplicateGroup{
		{
			Label:    "group_0",
			Strategy: models.StrategyExact,
			Images: []*models.ImageInfo{
				{Path: "/photos/a.jpg", FileSize: 100, ModTime: mod},
				{Path: "/photos/b.jpg", FileSize: 100, ModTime: mod},
			},
		},
	}
	for i := 0; i < scans; i++ {
		result := &models.ScanResult{
			Directory:   "/photos",
			ScannedAt:   mod.Add(time.Duration(i) * time.Hour),
			TotalImages: 2,
			Groups:      groups,
			Analysis:    analyze.Groups(groups),
		}
		if err := store.SaveResult(result); err != nil {
			t.Fatalf("SaveResult() error = %v", err)
		}
	}
	return store
}

func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = old
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatal(err)
	}
	if fnErr != nil {
		t.Fatalf("unexpected error: %v", fnErr)
	}
	return buf.String()
}

func TestPrintHistory_HonorsLimit(t *testing.T) {
	store := historyTestStore(t, 3)

	out := captureStdout(t, func() error {
		return printHistory(store, 2)
	})

	if got := strings.Count(out, "/photos"); got != 2 {
		t.Errorf("history shows %d scans, want 2:\n%s", got, out)
	}
}

func TestPrintHistory_Empty(t *testing.T) {
	store := historyTestStore(t, 0)

	out := captureStdout(t, func() error {
		return printHistory(store, 10)
	})

	if !strings.Contains(out, "No scans recorded yet.") {
		t.Errorf("unexpected output for empty history:\n%s", out)
	}
}
