package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/sungheyn/hadamirror/archive"
)

var (
	listLimit int

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Show recently mirrored articles from the archive",
		Run:   runList,
	}
)

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "number of entries to show")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	if cfg.ArchivePath == "" {
		fmt.Fprintln(os.Stderr, "Archive is disabled (archive_path is empty)")
		os.Exit(1)
	}

	arch, err := archive.Open(cfg.ArchivePath)
	if err != nil {
		log.Fatalf("Failed to open archive: %v", err)
	}
	defer arch.Close()

	total, err := arch.Count()
	if err != nil {
		log.Fatalf("Failed to count archive: %v", err)
	}

	entries, err := arch.Recent(listLimit)
	if err != nil {
		log.Fatalf("Failed to read archive: %v", err)
	}

	if len(entries) == 0 {
		fmt.Println("No mirrored articles yet.")
		return
	}

	fmt.Printf("%-8s %-10s %-7s %-16s %s\n", "ID", "DATE", "POINTS", "AUTHOR", "TITLE")
	for _, e := range entries {
		title := e.Title
		if len([]rune(title)) > 60 {
			title = string([]rune(title)[:57]) + "..."
		}
		fmt.Printf("%-8s %-10s %-7d %-16s %s\n",
			e.ID,
			e.MirroredAt.Format("2006-01-02"),
			e.Points,
			e.Author,
			title,
		)
	}
	fmt.Printf("\n%d of %d mirrored articles\n", len(entries), total)
}
