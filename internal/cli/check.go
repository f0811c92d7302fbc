package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ppiankov/newslens/internal/factcheck"
	"github.com/ppiankov/newslens/internal/model"
)

var (
	checkEnsemble bool
	checkJSON     bool
)

var checkCmd = &cobra.Command{
	Use:   "check [file|-]",
	Short: "Check text for fake news",
	Long: `Analyze text for signs of fake news.

By default an LLM weighs sources, separates facts from opinion and counts
red flags. A fake verdict below the confidence threshold is reported as
not verified instead.

With --ensemble the four configured classifiers vote instead, but only for
content from the year they were trained on; otherwise the result is
"Cannot determine".

Example:
  newslens check article.txt
  newslens check --ensemble - < article.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkEnsemble, "ensemble", false, "use the temporal gate and classifier ensemble")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print the result as JSON")
}

func runCheck(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	analyzer, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}
	ctx := logger.WithContext(cmd.Context())
	out := cmd.OutOrStdout()

	if checkEnsemble {
		res, err := analyzer.EnsembleCheck(ctx, text)
		if err != nil {
			return err
		}
		if checkJSON {
			return writeIndented(out, res)
		}
		printEnsemble(out, res)
		return nil
	}

	verdict, err := analyzer.DetectFakeNews(ctx, text)
	if err != nil {
		return err
	}
	if checkJSON {
		return writeIndented(out, verdict)
	}
	printVerdict(out, verdict)
	return nil
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printVerdict(w io.Writer, v *model.FakeNewsVerdict) {
	headline := color.New(color.FgGreen, color.Bold).Sprint("NOT FAKE")
	if v.IsFake {
		headline = color.New(color.FgRed, color.Bold).Sprint("LIKELY FAKE")
	}
	fmt.Fprintf(w, "%s  (confidence %.0f%%)\n", headline, v.Confidence*100)

	if len(v.Reasons) > 0 {
		fmt.Fprintln(w, color.New(color.Bold).Sprint("\nReasons:"))
		for _, r := range v.Reasons {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}
	if len(v.Suggestions) > 0 {
		fmt.Fprintln(w, color.New(color.Bold).Sprint("\nHow to verify:"))
		for _, s := range v.Suggestions {
			fmt.Fprintf(w, "  - %s\n", color.CyanString(s))
		}
	}
}

func printEnsemble(w io.Writer, res *factcheck.EnsembleResult) {
	var label string
	switch res.Label {
	case model.EnsembleReal:
		label = color.GreenString(string(res.Label))
	case model.EnsembleFake:
		label = color.RedString(string(res.Label))
	default:
		label = color.YellowString(string(res.Label))
	}
	fmt.Fprintf(w, "Ensemble: %s\n", label)

	if !res.InReferenceYear {
		fmt.Fprintln(w, color.New(color.Faint).Sprint("Content is outside the classifiers' training period."))
		return
	}
	for _, v := range res.Votes {
		fmt.Fprintf(w, "  %-12s %s\n", v.Classifier, v.Label)
	}
}
