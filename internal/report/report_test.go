package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/Parth7487/imagedup/internal/analyze"
	"github.com/Parth7487/imagedup/internal/models"
)

func testResult() *models.ScanResult {
	mod := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	groups := []*models.DuplicateGroup{
		{
			Label:    "group_0",
			Strategy: models.StrategyExact,
			Digest:   "abc123",
			Images: []*models.ImageInfo{
				{Path: "/p/a.jpg", FileSize: 500, ModTime: mod},
				{Path: "/p/b.jpg", FileSize: 500, ModTime: mod},
			},
		},
		{
			Label:    "structural_group_0",
			Strategy: models.StrategyStructural,
			Images: []*models.ImageInfo{
				{Path: "/p/c.jpg", FileSize: 700, ModTime: mod},
				{Path: "/p/d.jpg", FileSize: 650, ModTime: mod},
			},
		},
	}
	return &models.ScanResult{
		Directory:   "/p",
		ScannedAt:   time.Date(2026, 5, 1, 11, 0, 0, 0, time.UTC),
		TotalImages: 4,
		Groups:      groups,
		Analysis:    analyze.Groups(groups),
		Warnings:    []models.Warning{{Path: "/p/bad.jpg", Message: "failed to decode image"}},
	}
}

func TestWriteJSON(t *testing.T) {
	fs := afero.NewMemMapFs()

	if err := WriteJSON(fs, testResult(), "report.json"); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	data, err := afero.ReadFile(fs, "report.json")
	if err != nil {
		t.Fatal(err)
	}

	var parsed struct {
		ScanInfo struct {
			Directory   string `json:"directory"`
			TotalGroups int    `json:"total_groups"`
		} `json:"scan_info"`
		DuplicateGroups map[string]map[string]struct {
			Hash      string   `json:"hash"`
			Files     []string `json:"files"`
			FileCount int      `json:"file_count"`
		} `json:"duplicate_groups"`
		Recommendations []*models.Recommendation `json:"recommendations"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}

	if parsed.ScanInfo.Directory != "/p" {
		t.Errorf("directory = %q, want /p", parsed.ScanInfo.Directory)
	}
	if parsed.ScanInfo.TotalGroups != 2 {
		t.Errorf("total_groups = %d, want 2", parsed.ScanInfo.TotalGroups)
	}

	exact := parsed.DuplicateGroups[models.StrategyExact]["group_0"]
	if exact.Hash != "abc123" {
		t.Errorf("hash = %q, want abc123", exact.Hash)
	}
	if exact.FileCount != 2 || len(exact.Files) != 2 {
		t.Errorf("file count = %d / %d files", exact.FileCount, len(exact.Files))
	}
	if exact.Files[0] != "/p/a.jpg" {
		t.Errorf("member order not preserved: %v", exact.Files)
	}

	if _, ok := parsed.DuplicateGroups[models.StrategyStructural]["structural_group_0"]; !ok {
		t.Error("structural group missing from report")
	}
	if len(parsed.Recommendations) != 2 {
		t.Errorf("got %d recommendations, want 2", len(parsed.Recommendations))
	}
}

func TestWriteCleanupScript(t *testing.T) {
	fs := afero.NewMemMapFs()
	result := testResult()

	if err := WriteCleanupScript(fs, result.Analysis, "cleanup.sh"); err != nil {
		t.Fatalf("WriteCleanupScript() error = %v", err)
	}

	data, err := afero.ReadFile(fs, "cleanup.sh")
	if err != nil {
		t.Fatal(err)
	}
	script := string(data)

	if !strings.HasPrefix(script, "#!/bin/bash\n") {
		t.Error("script missing shebang")
	}
	if !strings.Contains(script, "set -e") {
		t.Error("script missing set -e")
	}
	for _, rec := range result.Analysis.Recommendations {
		if strings.Contains(script, "rm '"+rec.Keep+"'") {
			t.Errorf("script deletes the kept file %s", rec.Keep)
		}
		for _, del := range rec.Delete {
			if !strings.Contains(script, "rm '"+del+"'") {
				t.Errorf("script does not delete %s", del)
			}
		}
	}
}

func TestWriteCleanupScript_QuotesShellMetacharacters(t *testing.T) {
	// Paths are single-quoted so $, backticks, and embedded quotes reach rm
	// literally instead of being expanded by the shell.
	fs := afero.NewMemMapFs()
	analysis := &models.Analysis{
		Recommendations: []*models.Recommendation{
			{
				Keep:   "/p/keep.jpg",
				Delete: []string{"/p/$HOME `whoami` it's.jpg"},
			},
		},
	}

	if err := WriteCleanupScript(fs, analysis, "cleanup.sh"); err != nil {
		t.Fatalf("WriteCleanupScript() error = %v", err)
	}
	data, err := afero.ReadFile(fs, "cleanup.sh")
	if err != nil {
		t.Fatal(err)
	}
	script := string(data)

	want := "rm '/p/$HOME `whoami` it'\\''s.jpg'\n"
	if !strings.Contains(script, want) {
		t.Errorf("script does not quote the path safely:\n%s", script)
	}
	if strings.Contains(script, `rm "`) {
		t.Error("script uses double quotes, which permit shell expansion")
	}
}
