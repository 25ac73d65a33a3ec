package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rebuildLive bool

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the unified design catalog from all sources",
	Long:  "Merges the design list with the art request, quote, and legacy catalogs, resolves customer identities, and replaces the unified catalog table. Without --live nothing is written.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, cleanup, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		sum, err := p.Rebuild(ctx, rebuildLive)
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, sum.Render())
		return nil
	},
}

func init() {
	rebuildCmd.Flags().BoolVar(&rebuildLive, "live", false, "execute writes (default is a dry-run preview)")
	rootCmd.AddCommand(rebuildCmd)
}
