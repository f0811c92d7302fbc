package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Processor turns one batch input (a file path or a video URL) into output text
type Processor interface {
	Process(ctx context.Context, input string) (string, error)
}

// ProcessorFunc adapts a function to Processor
type ProcessorFunc func(ctx context.Context, input string) (string, error)

// Process calls f
func (f ProcessorFunc) Process(ctx context.Context, input string) (string, error) {
	return f(ctx, input)
}

// ItemJob processes a single batch input
type ItemJob struct {
	Index     int
	Input     string
	Processor Processor
}

// Execute executes the job
func (j *ItemJob) Execute(ctx context.Context) Result {
	output, err := j.Processor.Process(ctx, j.Input)
	return &ItemResult{
		Index:  j.Index,
		Input:  j.Input,
		Output: output,
		Error:  err,
	}
}

// ItemResult is the outcome of one batch input
type ItemResult struct {
	Index  int
	Input  string
	Output string
	Error  error
}

// GetError returns the error from the item result
func (r *ItemResult) GetError() error {
	return r.Error
}

// BatchProcessor processes many inputs concurrently
type BatchProcessor struct {
	processor   Processor
	concurrency int
	onResult    func(*ItemResult)
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(processor Processor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		processor:   processor,
		concurrency: concurrency,
	}
}

// OnResult registers a progress callback, called once per finished input
func (b *BatchProcessor) OnResult(fn func(*ItemResult)) {
	b.onResult = fn
}

// ProcessInputs runs every input and returns results in input order
func (b *BatchProcessor) ProcessInputs(ctx context.Context, inputs []string) []*ItemResult {
	if len(inputs) == 0 {
		return []*ItemResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	if b.onResult != nil {
		pool.OnResult(func(r Result) { b.onResult(r.(*ItemResult)) })
	}
	pool.Start()

	for i, input := range inputs {
		pool.Submit(&ItemJob{
			Index:     i,
			Input:     input,
			Processor: b.processor,
		})
	}

	results := pool.Wait()

	items := make([]*ItemResult, len(results))
	for i, result := range results {
		items[i] = result.(*ItemResult)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Index < items[j].Index })

	return items
}

// ProcessFile reads inputs from a list file and processes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ItemResult, error) {
	inputs, err := ReadInputsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read inputs: %w", err)
	}

	return b.ProcessInputs(ctx, inputs), nil
}

// ReadInputsFromFile reads one input per line, skipping blanks, comments and duplicates
func ReadInputsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var inputs []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			inputs = append(inputs, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return inputs, nil
}
