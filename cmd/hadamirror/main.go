package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/sungheyn/hadamirror/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "hadamirror",
	Short: "Mirror news.hada.io articles into Jekyll posts",
	Long: `hadamirror keeps a Jekyll blog in sync with news.hada.io: it fetches
the current listing, skips articles already mirrored, renders the rest as
frontmatter posts, and records them in a JSON ledger so re-runs are
idempotent. It also includes an interactive helper for authoring posts
by hand.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
}

// loadConfig loads the effective configuration or exits.
func loadConfig() config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
