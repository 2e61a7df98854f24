package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Parth7487/imagedup/internal/analyze"
	"github.com/Parth7487/imagedup/internal/match"
	"github.com/Parth7487/imagedup/internal/models"
	"github.com/Parth7487/imagedup/internal/report"
	"github.com/Parth7487/imagedup/internal/scan"
	"github.com/Parth7487/imagedup/internal/storage"
)

var (
	outputPath      string
	noScript        bool
	structuralLimit int
	noExact         bool
	noPerceptual    bool
	noStructural    bool
	noSizePrefilter bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <folder>",
	Short: "Scan a folder for duplicate images",
	Long: `Scan a folder recursively for images and detect duplicates.

The scan runs up to three strategies:
1. Exact duplicates by content digest, with a file-size prefilter
2. Similar images by perceptual hashing (any of four hash variants)
3. Structurally similar images by SSIM (skipped above --ssim-limit images)

Results are printed, written to a JSON report, and stored for 'list' and
'clean'. A reviewable cleanup script is generated unless --no-script is set.

Example:
  imagedup scan ./photos
  imagedup scan /path/to/images --threshold 0.95 --no-structural`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&outputPath, "output", "o", "duplicate_images_report.json", "Output file for the JSON report")
	scanCmd.Flags().BoolVar(&noScript, "no-script", false, "Don't generate a cleanup script")
	scanCmd.Flags().IntVar(&structuralLimit, "ssim-limit", match.DefaultStructuralLimit, "Max images for the structural strategy (0 = config default)")
	scanCmd.Flags().BoolVar(&noExact, "no-exact", false, "Skip exact duplicate detection")
	scanCmd.Flags().BoolVar(&noPerceptual, "no-perceptual", false, "Skip perceptual similarity detection")
	scanCmd.Flags().BoolVar(&noStructural, "no-structural", false, "Skip structural similarity detection")
	scanCmd.Flags().BoolVar(&noSizePrefilter, "no-size-prefilter", false, "Digest every file instead of only size-colliding ones")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	folder, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	// A missing or non-directory root is the only fatal input condition.
	info, err := os.Stat(folder)
	if err != nil {
		return fmt.Errorf("folder not found: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", folder)
	}

	if !cmd.Flags().Changed("ssim-limit") && cfg.Scan.StructuralLimit > 0 {
		structuralLimit = cfg.Scan.StructuralLimit
	}
	sizePrefilter := cfg.Scan.SizePrefilter && !noSizePrefilter

	fmt.Printf("Scanning: %s\n", folder)
	fmt.Printf("Threshold: %.2f\n", threshold)
	fmt.Printf("Workers: %d\n\n", workers)

	fs := afero.NewOsFs()

	lastLine := ""
	scanner := scan.NewScanner(
		scan.WithFs(fs),
		scan.WithLogger(log),
		scan.WithWorkers(workers),
		scan.WithStrategies(!noPerceptual, !noStructural),
		scan.WithProgress(func(scanned, total int, current string) {
			if lastLine != "" {
				fmt.Print("\r" + strings.Repeat(" ", len(lastLine)) + "\r")
			}
			shortPath := current
			if len(shortPath) > 50 {
				shortPath = "..." + shortPath[len(shortPath)-47:]
			}
			lastLine = fmt.Sprintf("Progress: %d/%d  %s", scanned, total, shortPath)
			fmt.Print(lastLine)
		}),
	)

	images, warnings, err := scanner.ScanFolder(folder)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	if lastLine != "" {
		fmt.Print("\r" + strings.Repeat(" ", len(lastLine)) + "\r")
	}

	fmt.Printf("Scanned: %d images\n", len(images))
	if len(images) == 0 {
		fmt.Println("No image files found.")
		return nil
	}

	result := &models.ScanResult{
		Directory:   folder,
		ScannedAt:   time.Now(),
		TotalImages: len(images),
		Warnings:    warnings,
	}

	var matchers []match.Matcher
	if !noExact {
		matchers = append(matchers, match.NewExactMatcher(fs, sizePrefilter))
	}
	if !noPerceptual {
		matchers = append(matchers, match.NewPerceptualMatcher(threshold))
	}
	if !noStructural {
		matchers = append(matchers, match.NewStructuralMatcher(threshold, structuralLimit, log))
	}

	fmt.Println("Finding duplicates...")
	for _, m := range matchers {
		groups, warns := m.FindGroups(images)
		result.Groups = append(result.Groups, groups...)
		result.Warnings = append(result.Warnings, warns...)
	}

	result.Analysis = analyze.Groups(result.Groups)

	printResult(result)

	if err := report.WriteJSON(fs, result, outputPath); err != nil {
		return err
	}
	fmt.Printf("Results saved to %s\n", outputPath)

	if !noScript && len(result.Analysis.Recommendations) > 0 {
		scriptPath := "cleanup_duplicates.sh"
		if err := report.WriteCleanupScript(fs, result.Analysis, scriptPath); err != nil {
			return err
		}
		fmt.Printf("Cleanup script generated: %s\n", scriptPath)
		fmt.Println("Review the script carefully before running it!")
	}

	store, err := storage.NewStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	if err := store.SaveResult(result); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	return nil
}

func printResult(result *models.ScanResult) {
	categories := []struct {
		strategy string
		title    string
	}{
		{models.StrategyExact, "EXACT DUPLICATES"},
		{models.StrategyPerceptual, "SIMILAR IMAGES"},
		{models.StrategyStructural, "STRUCTURALLY SIMILAR"},
	}

	for _, cat := range categories {
		groups := result.StrategyGroups(cat.strategy)
		if len(groups) == 0 {
			continue
		}

		fmt.Println()
		fmt.Println(strings.Repeat("=", 50))
		fmt.Println(cat.title)
		fmt.Println(strings.Repeat("=", 50))

		for _, group := range groups {
			fmt.Printf("\n%s:\n", group.Label)
			for i, img := range group.Images {
				fmt.Printf("  %d. %s (%s)\n", i+1, img.Path, humanize.Bytes(uint64(img.FileSize)))
			}
		}
	}

	fmt.Println()
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("SUMMARY")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Duplicate groups found: %d\n", result.Analysis.TotalGroups)
	fmt.Printf("Total duplicate files:  %d\n", result.Analysis.TotalDuplicates)
	fmt.Printf("Potential savings:      %s\n", humanize.Bytes(uint64(result.Analysis.TotalWasted)))

	if len(result.Warnings) > 0 {
		fmt.Printf("Warnings:               %d (see JSON report)\n", len(result.Warnings))
	}

	if result.Analysis.TotalGroups > 0 {
		fmt.Println()
		fmt.Println("Run 'imagedup list' to see duplicate groups")
		fmt.Println("Run 'imagedup clean --dry-run' to preview deletions")
	}
}
