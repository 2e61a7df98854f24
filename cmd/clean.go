package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Parth7487/imagedup/internal/fileutil"
	"github.com/Parth7487/imagedup/internal/storage"
)

var (
	dryRun    bool
	moveTo    string
	permanent bool
	noConfirm bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove duplicate images from the last scan",
	Long: `Remove the duplicates the analyzer recommended deleting, keeping the
recommended file of each group.

Options:
  --dry-run     Preview what would be removed without actually removing
  --permanent   Delete files permanently instead of moving to trash
  --move-to     Move duplicates to a specific folder
  --yes         Skip confirmation prompt

Example:
  imagedup clean                     # Move to trash (default)
  imagedup clean --permanent         # Delete permanently
  imagedup clean --move-to=./backup  # Move to a folder
  imagedup clean --dry-run           # Preview only`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview without removing")
	cleanCmd.Flags().BoolVar(&permanent, "permanent", false, "Delete permanently instead of moving to trash")
	cleanCmd.Flags().StringVar(&moveTo, "move-to", "", "Move duplicates to this folder")
	cleanCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	store, err := storage.NewStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	result, err := store.LatestResult()
	if err != nil {
		return fmt.Errorf("failed to load last scan: %w", err)
	}
	if result == nil || len(result.Analysis.Recommendations) == 0 {
		fmt.Println("No duplicate groups found.")
		return nil
	}

	// Collect files that still exist. Several strategies may have flagged the
	// same file; remove it only once.
	seen := make(map[string]bool)
	var toRemove []string
	var totalSize int64
	for _, rec := range result.Analysis.Recommendations {
		for _, path := range rec.Delete {
			if seen[path] {
				continue
			}
			seen[path] = true
			if info, err := os.Stat(path); err == nil {
				toRemove = append(toRemove, path)
				totalSize += info.Size()
			}
		}
	}

	if len(toRemove) == 0 {
		fmt.Println("No files to remove (files may have been already deleted).")
		return nil
	}

	var action string
	switch {
	case moveTo != "":
		action = fmt.Sprintf("move to %s", moveTo)
	case permanent:
		action = "permanently delete"
	default:
		action = "move to trash"
	}

	fmt.Printf("Will %s %d files (%s)\n\n", action, len(toRemove), humanize.Bytes(uint64(totalSize)))

	if dryRun {
		fmt.Println("Files to be removed:")
		for _, path := range toRemove {
			fmt.Printf("  %s\n", path)
		}
		fmt.Println()
		fmt.Println("(Dry run - no files were modified)")
		return nil
	}

	if !noConfirm {
		fmt.Printf("Are you sure you want to %s %d files? [y/N]: ", action, len(toRemove))
		reader := bufio.NewReader(os.Stdin)
		response, _ := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	var processed, failed int
	for _, path := range toRemove {
		var err error
		switch {
		case moveTo != "":
			err = fileutil.MoveFile(path, moveTo)
		case permanent:
			err = os.Remove(path)
		default:
			err = fileutil.MoveToTrash(path)
		}

		if err != nil {
			log.Error().Str("path", path).Err(err).Msg("failed to remove file")
			failed++
		} else {
			processed++
		}
	}

	fmt.Println()
	switch {
	case moveTo != "":
		fmt.Printf("Moved %d files to %s\n", processed, moveTo)
	case permanent:
		fmt.Printf("Permanently deleted %d files\n", processed)
	default:
		fmt.Printf("Moved %d files to trash\n", processed)
	}
	if failed > 0 {
		fmt.Printf("Failed: %d files\n", failed)
	}
	fmt.Printf("Space reclaimed: %s\n", humanize.Bytes(uint64(totalSize)))

	return nil
}
