package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "searchsync",
	Short: "Keeps the film search index in sync with the relational source",
	Long: `searchsync denormalizes films, persons and genres out of the
relational database and bulk-loads them into the search index. Reads are
served elsewhere through the cache-aside repository; this binary runs the
write path.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)
}
