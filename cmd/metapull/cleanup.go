package main

import (
	"fmt"
	"time"

	"github.com/akorchak/metapull/internal/export"
	"github.com/akorchak/metapull/pkg/config"
	"github.com/spf13/cobra"
)

// NewCleanupCmd creates the artifact cleanup command
func NewCleanupCmd() *cobra.Command {
	var olderThanStr string

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete generated artifacts older than the retention period",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCleanup(olderThanStr)
		},
	}

	cmd.Flags().StringVar(&olderThanStr, "older-than", "", "Age threshold (e.g. 7d, 30d; overrides config retention)")

	return cmd
}

func runCleanup(olderThanStr string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	maxAge := cfg.Retention
	if olderThanStr != "" {
		maxAge, err = config.ParseDuration(olderThanStr)
		if err != nil {
			return fmt.Errorf("invalid --older-than duration: %w", err)
		}
	}

	now := time.Now()
	total := 0
	for _, dir := range []string{cfg.OutputDir, cfg.LogDir} {
		removed, err := export.Cleanup(dir, maxAge, now)
		if err != nil {
			return fmt.Errorf("cleanup of %s failed: %w", dir, err)
		}
		total += removed
	}

	fmt.Printf("✓ Removed %d artifacts older than %s\n", total, maxAge)
	return nil
}
