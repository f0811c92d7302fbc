package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ppiankov/newslens/internal/server"
	"github.com/ppiankov/newslens/internal/worker"
)

var (
	batchConcurrency int
	batchOutputDir   string
	batchTimeout     time.Duration
)

var batchCmd = &cobra.Command{
	Use:   "batch <list-file>",
	Short: "Summarize many files or videos in parallel",
	Long: `Batch reads one input per line (a text file path or a video URL),
summarizes each concurrently and writes <name>.html into the output
directory. Blank lines and lines starting with # are skipped.

Example:
  newslens batch inputs.txt --output-dir ./summaries --concurrency 4`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 2, "documents processed at once")
	batchCmd.Flags().StringVar(&batchOutputDir, "output-dir", "./newslens-summaries", "output directory")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for the batch")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	analyzer, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}

	inputs, err := worker.ReadInputsFromFile(args[0])
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no inputs in %s", args[0])
	}
	if err := os.MkdirAll(batchOutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(logger.WithContext(cmd.Context()), batchTimeout)
	defer cancel()

	bar := progressbar.NewOptions(len(inputs),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription(color.BlueString("summarizing")),
		progressbar.OptionSetItsString("docs"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)

	processor := worker.NewBatchProcessor(summarizeTo(analyzer, batchOutputDir), batchConcurrency)
	processor.OnResult(func(*worker.ItemResult) { _ = bar.Add(1) })
	results := processor.ProcessInputs(ctx, inputs)
	_ = bar.Finish()

	out := cmd.ErrOrStderr()
	fmt.Fprintln(out)
	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
			fmt.Fprintf(out, "%s %s: %v\n", color.RedString("✗"), r.Input, r.Error)
			continue
		}
		fmt.Fprintf(out, "%s %s -> %s\n", color.GreenString("✓"), r.Input, r.Output)
	}
	fmt.Fprintf(out, "\n%d of %d succeeded\n", len(results)-failed, len(results))

	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(results))
	}
	return nil
}

// summarizeTo returns a processor that summarizes one input and writes
// the HTML into dir, returning the written path
func summarizeTo(analyzer server.Analyzer, dir string) worker.Processor {
	return worker.ProcessorFunc(func(ctx context.Context, input string) (string, error) {
		var html string
		if isURL(input) {
			res, err := analyzer.SummarizeVideo(ctx, input)
			if err != nil {
				return "", err
			}
			html = res.HTML
		} else {
			text, err := os.ReadFile(input)
			if err != nil {
				return "", fmt.Errorf("read input: %w", err)
			}
			res, err := analyzer.Summarize(ctx, string(text))
			if err != nil {
				return "", err
			}
			html = res.HTML
		}

		path := filepath.Join(dir, sanitizeFilename(input)+".html")
		if err := os.WriteFile(path, []byte(html+"\n"), 0o644); err != nil {
			return "", fmt.Errorf("write summary: %w", err)
		}
		return path, nil
	})
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// sanitizeFilename derives a safe file stem from a path or URL
func sanitizeFilename(s string) string {
	if isURL(s) {
		s = strings.TrimPrefix(strings.TrimPrefix(s, "https://"), "http://")
	} else {
		s = strings.TrimSuffix(filepath.Base(s), filepath.Ext(s))
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	name := strings.Trim(b.String(), "._")
	if len(name) > 100 {
		name = name[:100]
	}
	if name == "" {
		name = "summary"
	}
	return name
}
