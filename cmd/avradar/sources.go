package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/amishk599/avradar/internal/adapter"
	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List all configured sources",
	Long:  "Reads the config and prints a table of job sources and career portals.",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath, newLogger(os.Stderr, debug))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	src := cfg.Sources
	fmt.Printf("%-18s %-9s %-7s %s\n", "Source", "Status", "Pause", "Searches")
	fmt.Println(strings.Repeat("─", 72))
	fmt.Printf("%-18s %-9s %-7s %s\n", adapter.MCFSourceName, status(src.MCF.Enabled), src.MCF.Pause, strings.Join(src.MCF.ActiveTerms(), ", "))
	fmt.Printf("%-18s %-9s %-7s %s\n", adapter.IndeedSourceName, status(src.Indeed.Enabled), src.Indeed.Pause, strings.Join(src.Indeed.Terms, ", "))
	linkedIn := strings.Join(src.LinkedIn.Terms, ", ")
	if src.LinkedIn.ExcludeSenior {
		linkedIn += " (senior titles excluded)"
	}
	fmt.Printf("%-18s %-9s %-7s %s\n", adapter.LinkedInSourceName, status(src.LinkedIn.Enabled), src.LinkedIn.Pause, linkedIn)
	fmt.Printf("%-18s %-9s %-7s %d portal(s)\n", adapter.PortalsSourceName, status(src.Portals.Enabled), src.Portals.Pause, len(src.Portals.List))

	if len(src.Portals.List) > 0 {
		fmt.Printf("\n%-25s %-25s %s\n", "Portal", "Company", "URL")
		fmt.Println(strings.Repeat("─", 72))
		for _, p := range src.Portals.List {
			fmt.Printf("%-25s %-25s %s\n", p.Name, p.Company, p.URL)
		}
	}

	fmt.Printf("\nSchedule: %v (%s), top %d results\n", formatOptions(cfg).Schedule, cfg.ZoneLabel, cfg.Pipeline.MaxResults)
	return nil
}

func status(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
