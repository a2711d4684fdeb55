package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/sungheyn/hadamirror/archive"
	"github.com/sungheyn/hadamirror/config"
	"github.com/sungheyn/hadamirror/hada"
	"github.com/sungheyn/hadamirror/ledger"
	"github.com/sungheyn/hadamirror/mirror"
)

var (
	syncPostsDir string
	syncSource   string

	syncCmd = &cobra.Command{
		Use:   "sync",
		Short: "Fetch new articles and render them as posts",
		Run:   runSync,
	}
)

func init() {
	syncCmd.Flags().StringVar(&syncPostsDir, "posts", "", "override posts directory")
	syncCmd.Flags().StringVar(&syncSource, "source", "", "listing source: html or rss")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	if syncPostsDir != "" {
		cfg.PostsDir = syncPostsDir
	}
	if syncSource != "" {
		cfg.Source = syncSource
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	led, err := ledger.Load(cfg.LedgerPath)
	if err != nil {
		log.Fatalf("Failed to load ledger: %v", err)
	}
	fmt.Printf("Tracking %d mirrored articles", led.Len())
	if last := led.LastUpdate(); last != "" {
		fmt.Printf(" (last update %s)", last)
	}
	fmt.Println()

	client, err := hada.NewClient(cfg.BaseURL, cfg.UserAgent, cfg.Timeout)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	var listing mirror.ListingSource
	switch cfg.Source {
	case config.SourceRSS:
		listing = hada.NewFeedFetcher(cfg.FeedURL, cfg.UserAgent, cfg.SiteName, cfg.FeedTimeout)
	default:
		listing = hada.NewListingFetcher(client, cfg.SiteName)
	}
	detail := hada.NewDetailFetcher(client, cfg.MaxContentLen)

	var arch *archive.Store
	if cfg.ArchivePath != "" {
		arch, err = archive.Open(cfg.ArchivePath)
		if err != nil {
			// The archive is supplementary; a broken archive never
			// blocks mirroring.
			log.Printf("WARN: archive unavailable: %v", err)
			arch = nil
		} else {
			defer arch.Close()
		}
	}

	syncer := mirror.New(cfg, led, listing, detail, arch)
	sum, err := syncer.Run()
	if err != nil {
		log.Fatalf("Sync failed: %v", err)
	}

	fmt.Println()
	fmt.Println("Sync completed:")
	fmt.Printf("  Articles on site: %d\n", sum.Found)
	fmt.Printf("  New candidates:   %d\n", sum.New)
	fmt.Printf("  Posts created:    %d\n", sum.Created)
	if sum.Skipped > 0 {
		fmt.Printf("  Skipped:          %d\n", sum.Skipped)
	}
	if sum.Failed > 0 {
		fmt.Printf("  Failed:           %d\n", sum.Failed)
	}

	if sum.AllFailed() {
		os.Exit(1)
	}
}
