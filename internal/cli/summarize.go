package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	videoURL      string
	summarizeJSON bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file|-]",
	Short: "Summarize a text file, stdin or a video",
	Long: `Summarize long text into HTML. The text is split into overlapping
chunks that are summarized concurrently; a chunk the model cannot
summarize falls back to its opening characters instead of failing the run.

Example:
  newslens summarize article.txt
  cat article.txt | newslens summarize -
  newslens summarize --video https://youtu.be/dQw4w9WgXcQ`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)

	summarizeCmd.Flags().StringVar(&videoURL, "video", "", "summarize the transcript of this video URL")
	summarizeCmd.Flags().BoolVar(&summarizeJSON, "json", false, "print the full result as JSON")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	analyzer, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}
	ctx := logger.WithContext(cmd.Context())

	var result any
	var html string
	var warnings []string
	var degraded int

	if videoURL != "" {
		res, err := analyzer.SummarizeVideo(ctx, videoURL)
		if err != nil {
			return err
		}
		result, html, warnings, degraded = res, res.HTML, res.Warnings, res.Degraded()
	} else {
		text, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		res, err := analyzer.Summarize(ctx, text)
		if err != nil {
			return err
		}
		result, html, warnings, degraded = res, res.HTML, res.Warnings, res.Degraded()
	}

	for _, w := range warnings {
		logger.Warn().Msg(w)
	}
	if degraded > 0 {
		logger.Warn().Int("chunks", degraded).Msg("some chunks fell back to their original text")
	}

	out := cmd.OutOrStdout()
	if summarizeJSON {
		return writeIndented(out, result)
	}
	_, err = fmt.Fprintln(out, html)
	return err
}
