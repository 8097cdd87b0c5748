package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"organizer-api/internal/utils"
)

var (
	showHistory bool

	metricsCmd = &cobra.Command{
		Use:   "metrics",
		Short: "Print lifetime usage metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newAppState(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			snap, err := rt.organizer.GetMetrics(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Files organized: %d\n", snap.TotalFiles)
			fmt.Fprintf(out, "Data moved:      %s\n", utils.FormatFileSize(snap.TotalBytes))
			fmt.Fprintf(out, "Time saved:      %ds\n", snap.TotalTimeSaved)

			if !showHistory {
				return nil
			}
			records, err := rt.organizer.GetHistory(cmd.Context(), 20)
			if err != nil {
				return err
			}
			return printJSON(out, records)
		},
	}
)

func registerMetricsCommand() {
	metricsCmd.Flags().BoolVar(&showHistory, "history", false, "also print the most recent moves")
	rootCmd.AddCommand(metricsCmd)
}
