package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ai-speech-confidence-service/internal/history"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent scored attempts, most recent first",
		RunE:  runHistory,
	}
	cmd.PersistentFlags().String("db", "", "Path to the history database (overrides HISTORY_DB_PATH)")
	cmd.Flags().IntP("limit", "n", 20, "Number of attempts to show (0 for all)")
	cmd.Flags().Bool("json", false, "Print records as JSON")

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded attempt",
		RunE:  runHistoryClear,
	})
	return cmd
}

func openHistory(cmd *cobra.Command) (*history.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return history.OpenFile(resolveDBPath(cmd, cfg), cfg.History.MaxRecords)
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	recs, err := store.List(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if recs == nil {
			recs = []history.Record{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}

	if len(recs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No attempts recorded yet.")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tOVERALL\tGRAMMAR\tCONFIDENCE\tWPM\tLANG\tTRANSCRIPT")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
			r.Timestamp.Local().Format("2006-01-02 15:04"),
			r.OverallPerformance, r.GrammarAccuracy, r.ConfidenceLevel, r.WPM, r.Language,
			truncate(r.Transcript, 60))
	}
	return tw.Flush()
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Clear(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
