package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Parth7487/imagedup/internal/storage"
)

var (
	listJSON    bool
	listHistory bool
	listLimit   int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List duplicate groups from the last scan",
	Long: `Display the duplicate groups found by the most recent scan.

Each group shows its detection strategy, its members, which file the analyzer
recommends keeping (marked KEEP), and the space reclaimed by deleting the
rest.

Example:
  imagedup list              # Show first 10 groups
  imagedup list -n 0         # Show all groups
  imagedup list --json       # Machine-readable output
  imagedup list --history    # Show past scans`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().BoolVar(&listHistory, "history", false, "Show scan history instead of groups")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 10, "Limit number of groups to display (0 = all)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := storage.NewStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	if listHistory {
		return printHistory(store, listLimit)
	}

	result, err := store.LatestResult()
	if err != nil {
		return fmt.Errorf("failed to load last scan: %w", err)
	}
	if result == nil || len(result.Groups) == 0 {
		fmt.Println("No duplicate groups found.")
		fmt.Println("Run 'imagedup scan <folder>' to scan for duplicates.")
		return nil
	}

	if listJSON {
		return json.NewEncoder(os.Stdout).Encode(result)
	}

	fmt.Printf("Scan of %s (%s)\n", result.Directory, result.ScannedAt.Format("2006-01-02 15:04"))
	fmt.Printf("Found %d duplicate groups (%d duplicates, %s reclaimable)\n",
		len(result.Groups), result.Analysis.TotalDuplicates,
		humanize.Bytes(uint64(result.Analysis.TotalWasted)))

	groups := result.Groups
	if listLimit > 0 && listLimit < len(groups) {
		groups = groups[:listLimit]
	}

	keepByGroup := make(map[int]string)
	for i, rec := range result.Analysis.Recommendations {
		keepByGroup[i] = rec.Keep
	}

	for i, group := range groups {
		keep := keepByGroup[i]
		fmt.Printf("\n[%s] %s (%d files)\n", group.Strategy, group.Label, len(group.Images))
		for _, img := range group.Images {
			marker := "  "
			if img.Path == keep {
				marker = "KEEP"
			}
			fmt.Printf("  %-4s %s (%s)\n", marker, img.Path, humanize.Bytes(uint64(img.FileSize)))
		}
	}

	if listLimit > 0 && listLimit < len(result.Groups) {
		fmt.Printf("\n... and %d more groups. Use -n 0 to show all.\n", len(result.Groups)-listLimit)
	}

	return nil
}

func printHistory(store *storage.Storage, limit int) error {
	records, err := store.History(limit)
	if err != nil {
		return fmt.Errorf("failed to load scan history: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No scans recorded yet.")
		return nil
	}

	fmt.Printf("%-20s %-8s %-8s %-8s %-10s %s\n",
		"SCANNED", "IMAGES", "GROUPS", "DUPES", "WASTED", "DIRECTORY")
	fmt.Println(strings.Repeat("-", 80))
	for _, rec := range records {
		fmt.Printf("%-20s %-8d %-8d %-8d %-10s %s\n",
			rec.ScannedAt.Format("2006-01-02 15:04"),
			rec.TotalImages, rec.TotalGroups, rec.TotalDuplicates,
			humanize.Bytes(uint64(rec.TotalWasted)), rec.Directory)
	}

	return nil
}
