// Package report writes scan results as a JSON report and as an optional
// cleanup shell script.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/Parth7487/imagedup/internal/models"
)

// jsonReport is the serialized report layout: scan info, one label->group
// map per strategy, and the analyzer's recommendations.
type jsonReport struct {
	ScanInfo        scanInfo                        `json:"scan_info"`
	DuplicateGroups map[string]map[string]jsonGroup `json:"duplicate_groups"`
	Recommendations []*models.Recommendation        `json:"recommendations"`
	Warnings        []models.Warning                `json:"warnings,omitempty"`
}

type scanInfo struct {
	Directory       string `json:"directory"`
	ScanTime        string `json:"scan_time"`
	TotalImages     int    `json:"total_images"`
	TotalGroups     int    `json:"total_groups"`
	TotalDuplicates int    `json:"total_duplicate_files"`
	TotalWastedMB   string `json:"total_wasted_space_mb"`
}

type jsonGroup struct {
	Hash      string   `json:"hash,omitempty"`
	Files     []string `json:"files"`
	FileCount int      `json:"file_count"`
}

// WriteJSON writes the full scan result as an indented JSON report.
func WriteJSON(fs afero.Fs, result *models.ScanResult, path string) error {
	groups := make(map[string]map[string]jsonGroup)
	for _, strategy := range []string{models.StrategyExact, models.StrategyPerceptual, models.StrategyStructural} {
		category := make(map[string]jsonGroup)
		for _, g := range result.StrategyGroups(strategy) {
			files := make([]string, 0, len(g.Images))
			for _, img := range g.Images {
				files = append(files, img.Path)
			}
			category[g.Label] = jsonGroup{
				Hash:      g.Digest,
				Files:     files,
				FileCount: len(files),
			}
		}
		groups[strategy] = category
	}

	rep := jsonReport{
		ScanInfo: scanInfo{
			Directory:       result.Directory,
			ScanTime:        result.ScannedAt.Format(time.DateTime),
			TotalImages:     result.TotalImages,
			TotalGroups:     result.Analysis.TotalGroups,
			TotalDuplicates: result.Analysis.TotalDuplicates,
			TotalWastedMB:   fmt.Sprintf("%.2f", float64(result.Analysis.TotalWasted)/1024/1024),
		},
		DuplicateGroups: groups,
		Recommendations: result.Analysis.Recommendations,
		Warnings:        result.Warnings,
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// WriteCleanupScript generates a shell script that deletes every recommended
// duplicate. The script is written with the executable bit set and is meant
// to be reviewed before running.
func WriteCleanupScript(fs afero.Fs, analysis *models.Analysis, path string) error {
	var b strings.Builder
	b.WriteString("#!/bin/bash\n")
	b.WriteString("# Generated script to clean up duplicate images\n")
	b.WriteString("# Review carefully before running!\n\n")
	b.WriteString("set -e\n\n")

	var totalFiles int
	var totalSpace int64
	for i, rec := range analysis.Recommendations {
		fmt.Fprintf(&b, "# Group %d - Keep: %s\n", i+1, rec.Keep)
		for _, del := range rec.Delete {
			fmt.Fprintf(&b, "echo %s\n", shellQuote("Deleting: "+del))
			fmt.Fprintf(&b, "rm %s\n", shellQuote(del))
			totalFiles++
		}
		totalSpace += rec.SpaceSaved
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "# Summary: deletes %d files, saving %.1f KB\n", totalFiles, float64(totalSpace)/1024)
	b.WriteString("echo \"Cleanup completed!\"\n")

	if err := afero.WriteFile(fs, path, []byte(b.String()), 0755); err != nil {
		return fmt.Errorf("failed to write cleanup script: %w", err)
	}
	if err := fs.Chmod(path, 0755); err != nil {
		return fmt.Errorf("failed to chmod cleanup script: %w", err)
	}
	return nil
}

// shellQuote single-quotes s for safe use in a shell command. Single quotes
// inhibit all expansion; embedded quotes are closed, escaped, and reopened.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
