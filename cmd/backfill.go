package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	backfillTable string
	backfillLive  bool
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Propagate known customer ids within one table",
	Long:  "Groups a table's rows by normalized company name and fills missing ID_Customer values from rows that already have one. Without --live the pending updates are only previewed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, cleanup, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		sum, err := p.Backfill(ctx, backfillTable, backfillLive)
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, sum.Render())
		return nil
	},
}

func init() {
	backfillCmd.Flags().StringVar(&backfillTable, "table", "", "table to backfill (default: the design list)")
	backfillCmd.Flags().BoolVar(&backfillLive, "live", false, "execute writes (default is a dry-run preview)")
	rootCmd.AddCommand(backfillCmd)
}
