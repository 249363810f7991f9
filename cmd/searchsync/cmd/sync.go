package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/filmoteka/searchsync/internal/config"
	"github.com/filmoteka/searchsync/pkg/di"
)

var fullRefresh bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one synchronization pass",
	Long: `Run one full synchronization pass: load index schemas, create
missing indices, extract everything modified since the stored watermark,
and bulk-load the denormalized documents.

The watermark advances only after a successful pass, so a failed run is
safe to repeat. Use --full to ignore the stored watermark and re-extract
everything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		container, err := di.New(cfg, slog.Default())
		if err != nil {
			return err
		}
		defer container.Close()

		watermark, err := config.LoadWatermark(cfg.WatermarkFile)
		if err != nil {
			return err
		}
		if fullRefresh {
			watermark = time.Time{}
		}

		result, err := container.Syncer(watermark).Run(ctx)
		if err != nil {
			return fmt.Errorf("sync run: %w", err)
		}

		if err := config.StoreWatermark(cfg.WatermarkFile, result.NextWatermark); err != nil {
			return err
		}

		fmt.Printf("synced %d genres, %d persons, %d movies\n", result.Genres, result.Persons, result.Movies)
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&fullRefresh, "full", false, "ignore the stored watermark and re-extract everything")
	rootCmd.AddCommand(syncCmd)
}
