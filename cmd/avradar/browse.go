package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/amishk599/avradar/internal/audit"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse one fetch cycle interactively (TUI)",
	Long:  "Runs one fetch cycle, shows the source picker, then the split-pane browser with score breakdowns.",
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath, newLogger(os.Stderr, debug))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Log output while the TUI is up corrupts the display.
	silentLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p, scorer, sourceCount := buildPipeline(cfg, silentLogger)
	if sourceCount == 0 {
		fmt.Println("No enabled sources in config.")
		return nil
	}

	res, err := audit.RunLoader(sourceCount, p.Run)
	if errors.Is(err, audit.ErrCancelled) {
		return nil
	}
	if err != nil {
		fmt.Printf("Error fetching jobs: %v\n", err)
		return nil
	}

	for {
		choice, ok, err := audit.RunSourcePicker(res)
		if err != nil {
			return fmt.Errorf("picker: %w", err)
		}
		if !ok {
			return nil
		}

		wantQuit, err := audit.RunBrowser(res, scorer, choice)
		if err != nil {
			return fmt.Errorf("browser: %w", err)
		}
		if wantQuit {
			return nil
		}
		// esc: back to the picker
	}
}
