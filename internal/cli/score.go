package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ai-speech-confidence-service/internal/history"
	"ai-speech-confidence-service/internal/models"
	"ai-speech-confidence-service/internal/scoring"
	"ai-speech-confidence-service/internal/service/analysis"
	"ai-speech-confidence-service/internal/service/capture"
)

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score [transcript]",
		Short: "Score a transcript given as an argument, a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScore,
	}
	cmd.Flags().StringP("file", "f", "", "Read the transcript from a file")
	cmd.Flags().Float64P("duration", "d", 0, "Spoken duration in seconds, used for words per minute")
	cmd.Flags().StringP("language", "l", capture.DefaultLanguage, "Transcript language")
	cmd.Flags().String("db", "", "Record the score in this history database")
	cmd.Flags().Bool("json", false, "Print the full result as JSON")
	return cmd
}

func runScore(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(cmd); err != nil {
		return err
	}

	transcript, err := readTranscript(cmd, args)
	if err != nil {
		return err
	}
	duration, _ := cmd.Flags().GetFloat64("duration")
	if duration < 0 {
		return errors.New("--duration must not be negative")
	}
	lang, _ := cmd.Flags().GetString("language")
	if lang, err = capture.ResolveLanguage(lang); err != nil {
		return err
	}

	cfg := analysis.Config{}
	if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
		store, err := history.OpenFile(dbPath, 0)
		if err != nil {
			return err
		}
		defer store.Close()
		cfg.History = store
	}

	out, err := analysis.New(cfg).Analyze(cmd.Context(), analysis.Request{
		Transcript:      transcript,
		DurationSeconds: duration,
		Language:        lang,
		Source:          models.SourceCLI,
	})
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out.Response())
	}
	printSummary(cmd.OutOrStdout(), out.Response())
	return nil
}

func readTranscript(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(b), nil
}

func printSummary(w io.Writer, resp analysis.Response) {
	res := resp.Result
	fmt.Fprintf(w, "Overall performance: %d (%s)\n", res.OverallPerformance, res.Feedback)
	fmt.Fprintf(w, "Grammar accuracy:    %d\n", res.GrammarAccuracy)
	fmt.Fprintf(w, "Confidence level:    %d\n", res.ConfidenceLevel)
	fmt.Fprintf(w, "Words: %d  Fillers: %d (%.1f%%)  Vocabulary richness: %.2f",
		res.Metrics.TotalWords, res.Metrics.FillerCount, res.Metrics.FillerPercentage, res.Metrics.VocabRichness)
	if res.Metrics.WordsPerMinute > 0 {
		fmt.Fprintf(w, "  WPM: %.0f", res.Metrics.WordsPerMinute)
	}
	fmt.Fprintln(w)

	if len(resp.Corrections) > 0 {
		fmt.Fprintln(w, "\nGrammar:")
		for _, c := range resp.Corrections {
			line := fmt.Sprintf("  - %s: %q", c.Category, c.Detail)
			if c.Suggestion != "" {
				line += " -> " + c.Suggestion
			}
			fmt.Fprintln(w, line)
		}
	}
	printIssues(w, "Fluency", res.FluencyIssues)
	printIssues(w, "Fillers", res.FillerIssues)
	printIssues(w, "Vocabulary", res.VocabIssues)
}

func printIssues(w io.Writer, title string, issues []scoring.Issue) {
	if len(issues) == 0 {
		return
	}
	details := make([]string, 0, len(issues))
	for _, issue := range issues {
		details = append(details, issue.Detail)
	}
	fmt.Fprintf(w, "\n%s:\n  - %s\n", title, strings.Join(details, "\n  - "))
}
