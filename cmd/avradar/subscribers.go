package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/amishk599/avradar/internal/store"
	"github.com/spf13/cobra"
)

var subscribersCmd = &cobra.Command{
	Use:   "subscribers",
	Short: "List subscribed Telegram chats",
	RunE:  runSubscribers,
}

func init() {
	rootCmd.AddCommand(subscribersCmd)
}

func runSubscribers(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath, newLogger(os.Stderr, debug))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	sqlStore, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer sqlStore.Close()

	ids, err := sqlStore.List()
	if err != nil {
		return fmt.Errorf("list subscribers: %w", err)
	}

	fmt.Printf("%-16s %s\n", "Chat ID", "Role")
	fmt.Println(strings.Repeat("─", 28))
	for _, id := range ids {
		role := "subscriber"
		if id == cfg.Telegram.OwnerChatID {
			role = "owner"
		}
		fmt.Printf("%-16d %s\n", id, role)
	}
	fmt.Printf("\nTotal: %d subscriber(s) in %s\n", len(ids), cfg.Store.Path)
	return nil
}
