package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var summaryFile string

var askCmd = &cobra.Command{
	Use:   "ask --summary-file <file> <question>",
	Short: "Ask a question about a summary",
	Long: `Answer a question using a summary produced by "newslens summarize".

Example:
  newslens summarize article.txt > summary.html
  newslens ask --summary-file summary.html "Who funded the project?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringVar(&summaryFile, "summary-file", "", "file holding the summary (required)")
	_ = askCmd.MarkFlagRequired("summary-file")
}

func runAsk(cmd *cobra.Command, args []string) error {
	summary, err := os.ReadFile(summaryFile)
	if err != nil {
		return fmt.Errorf("read summary: %w", err)
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	analyzer, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}

	answer, err := analyzer.Answer(logger.WithContext(cmd.Context()), string(summary), strings.Join(args, " "))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), answer)
	return err
}
