package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nwcapparel/catalog-sync/internal/audit"
)

var (
	auditReps []string
	auditDays int
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit order ownership against the rep rosters",
	Long:  "Classifies recent orders as outbound (a rep wrote for an account they don't own) or inbound (someone else wrote for their account), plus orders for customers on no roster at all.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, cleanup, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		sum, rep, err := p.Audit(ctx, auditReps, auditDays)
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, sum.Render())
		printConflicts(rep)
		return nil
	},
}

func printConflicts(rep *audit.Report) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	for _, owner := range bucketOwners(rep.Outbound) {
		printBucket(w, owner+" wrote outside their book", rep.Outbound[owner])
	}
	for _, owner := range bucketOwners(rep.Inbound) {
		printBucket(w, "others wrote in "+owner+"'s book", rep.Inbound[owner])
	}
	printBucket(w, "customers on no roster", rep.Unassigned)
}

// bucketOwners returns the bucket keys sorted, so output order is stable.
func bucketOwners(buckets map[string][]audit.CustomerSummary) []string {
	owners := make([]string, 0, len(buckets))
	for owner := range buckets {
		owners = append(owners, owner)
	}
	sort.Strings(owners)
	return owners
}

func printBucket(w *tabwriter.Writer, title string, bucket []audit.CustomerSummary) {
	if len(bucket) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	fmt.Fprintln(w, "customer\towner\torders\ttotal\twriters")
	for _, s := range bucket {
		owner := s.Owner
		if owner == "" {
			owner = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t$%.2f\t%v\n", s.CustomerID, owner, s.OrderCount, s.TotalAmount, s.Writers)
	}
}

func init() {
	auditCmd.Flags().StringSliceVar(&auditReps, "rep", nil, "rep(s) to evaluate (default: every rostered rep)")
	auditCmd.Flags().IntVar(&auditDays, "days", 90, "trailing window of orders to audit")
	rootCmd.AddCommand(auditCmd)
}
