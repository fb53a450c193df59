package worker

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"github.com/claimlens/claimlens/internal/model"
)

// Auditor defines the interface for auditing a single project path
type Auditor interface {
	AuditPath(ctx context.Context, path string) (*model.Report, error)
}

// AuditResult represents the outcome of one batched audit
type AuditResult struct {
	Path   string
	Report *model.Report
	Error  error
}

// BatchProcessor audits multiple project paths concurrently
type BatchProcessor struct {
	auditor     Auditor
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(auditor Auditor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		auditor:     auditor,
		concurrency: concurrency,
	}
}

// ProcessPaths audits multiple paths concurrently. Results come back
// in submission order.
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*AuditResult {
	if len(paths) == 0 {
		return []*AuditResult{}
	}

	pool := NewPool[*AuditResult](ctx, b.concurrency)
	pool.Start()

	for _, p := range paths {
		path := p
		pool.Submit(func(ctx context.Context) *AuditResult {
			report, err := b.auditor.AuditPath(ctx, path)
			return &AuditResult{Path: path, Report: report, Error: err}
		})
	}

	results := pool.Wait()

	// Pool results arrive in completion order; restore input order
	byPath := make(map[string]*AuditResult, len(results))
	for _, r := range results {
		byPath[r.Path] = r
	}
	ordered := make([]*AuditResult, 0, len(paths))
	for _, p := range paths {
		if r, ok := byPath[p]; ok {
			ordered = append(ordered, r)
		}
	}
	return ordered
}

// ProcessFile reads project paths from a file and audits them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, fs afero.Fs, filePath string) ([]*AuditResult, error) {
	paths, err := ReadPathsFromFile(fs, filePath)
	if err != nil {
		return nil, fmt.Errorf("read paths: %w", err)
	}

	return b.ProcessPaths(ctx, paths), nil
}

// ReadPathsFromFile reads project paths from a file, one per line.
// Blank lines and #-comments are skipped; duplicates are dropped.
func ReadPathsFromFile(fs afero.Fs, filePath string) ([]string, error) {
	content, err := afero.ReadFile(fs, filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	var paths []string
	seen := make(map[string]bool)

	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		paths = append(paths, line)
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no paths found in %s", filePath)
	}

	return paths, nil
}
