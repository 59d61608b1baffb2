package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mmynk/billsplit/internal/config"
	"github.com/mmynk/billsplit/internal/models"
)

func summaryCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary [bill-id]",
		Short: "Print who owes what for a bill (the active bill by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, store, err := openRepository(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			defer store.Close()

			id := repo.ActiveBillID()
			if len(args) == 1 {
				id = args[0]
			}
			bill, ok := repo.Bill(id)
			if !ok {
				return fmt.Errorf("bill not found: %q", id)
			}
			summary, _ := repo.Summary(id)
			return printSummary(cmd.OutOrStdout(), bill, summary)
		},
	}
	return cmd
}

func printSummary(out io.Writer, bill models.Bill, s models.BillSummary) error {
	title := bill.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(out, "%s  %s\n", title, bill.CreatedAt.Format("Jan 2, 2006 15:04"))
	fmt.Fprintf(out, "tax %.2f%%  service %.2f%%\n\n", bill.TaxRate, bill.ServiceRate)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "PARTICIPANT\tSUBTOTAL\tTAX\tSERVICE\tTOTAL\t")
	for _, share := range s.Shares {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t\n",
			share.ParticipantName, share.Subtotal, share.TaxAmount, share.ServiceAmount, share.TotalDue)
	}
	fmt.Fprintf(w, "BILL\t%.2f\t%.2f\t%.2f\t%.2f\t\n", s.Subtotal, s.TotalTax, s.TotalService, s.GrandTotal)
	return w.Flush()
}
