package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/credlens/credlens/internal/common"
	"github.com/credlens/credlens/internal/config"
	"github.com/credlens/credlens/internal/engine"
	"github.com/credlens/credlens/internal/model"
	"github.com/credlens/credlens/internal/storage"
)

// Document file names expected inside each applicant directory.
const (
	batchStatementJSON = "statement.json"
	batchStatementOFX  = "statement.ofx"
	batchSalarySlip    = "salary_slip.json"
	batchTaxReturn     = "tax_return.json"
)

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <directory>",
		Short: "Analyze a directory of applicant folders",
		Long: `Analyze every applicant folder under a directory. Each folder may contain
statement.json (or statement.ofx), salary_slip.json, and tax_return.json;
missing documents degrade gracefully per applicant.

Example:
  credlens batch ./applicants --workers 4 --save`,
		Args: cobra.ExactArgs(1),
		RunE: runBatch,
	}

	cmd.Flags().Int("workers", 4, "number of applicants analyzed concurrently")
	cmd.Flags().Bool("save", false, "persist each report to the audit store")

	return cmd
}

type batchOutcome struct {
	applicant string
	report    model.AnalysisReport
	err       error
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	workers, _ := cmd.Flags().GetInt("workers")
	save, _ := cmd.Flags().GetBool("save")
	if workers < 1 {
		workers = 1
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	applicants, err := listApplicantDirs(args[0])
	if err != nil {
		return err
	}
	if len(applicants) == 0 {
		return common.NewUserError(
			fmt.Sprintf("no applicant folders found under %s", args[0]),
			common.ErrNoDocuments)
	}

	var store *storage.ReportStore
	if save {
		var cleanup func()
		store, cleanup, err = openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()
	}

	bar := progressbar.NewOptions(len(applicants),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Analyzing applicants...[reset]"),
	)

	analysisEngine := engine.New(cfg)

	jobs := make(chan string)
	outcomes := make(chan batchOutcome, len(applicants))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for dir := range jobs {
				outcomes <- analyzeApplicantDir(ctx, analysisEngine, dir)
				if err := bar.Add(1); err != nil {
					slog.Debug("Failed to advance progress bar", "error", err)
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, dir := range applicants {
			select {
			case <-ctx.Done():
				return
			case jobs <- dir:
			}
		}
	}()

	wg.Wait()
	close(outcomes)

	collected := make([]batchOutcome, 0, len(applicants))
	for o := range outcomes {
		collected = append(collected, o)
	}
	sort.Slice(collected, func(i, j int) bool { return collected[i].applicant < collected[j].applicant })

	failures := 0
	for _, o := range collected {
		if o.err != nil {
			failures++
			common.LogError(o.err, "Applicant analysis failed", common.Fields{"applicant": o.applicant})
			continue
		}

		if store != nil {
			if _, err := store.SaveReport(ctx, &o.report); err != nil {
				slog.Warn("Failed to persist report", "applicant", o.applicant, "error", err)
			}
		}

		fmt.Printf("%-30s FOIR %6.2f%% %-9s CIBIL %d (%s)\n",
			o.applicant,
			o.report.FOIR.Percentage, o.report.FOIR.Status,
			o.report.CIBIL.Score, o.report.CIBIL.RiskLevel)
	}

	slog.Info("Batch analysis complete",
		"applicants", len(collected),
		"failures", failures)
	return nil
}

// analyzeApplicantDir runs the pipeline over one applicant folder.
func analyzeApplicantDir(ctx context.Context, analysisEngine *engine.AnalysisEngine, dir string) batchOutcome {
	applicant := filepath.Base(dir)

	statement := firstExisting(
		filepath.Join(dir, batchStatementJSON),
		filepath.Join(dir, batchStatementOFX),
	)
	slip := firstExisting(filepath.Join(dir, batchSalarySlip))
	tax := firstExisting(filepath.Join(dir, batchTaxReturn))

	extractors := buildExtractors(statement, slip, tax)
	if len(extractors) == 0 {
		return batchOutcome{
			applicant: applicant,
			err:       fmt.Errorf("%w: no recognized documents in %s", common.ErrNoDocuments, dir),
		}
	}

	input, extractErrs := engine.RunExtractions(ctx, applicant, extractors, engine.DefaultExtractionWorkers)
	for _, err := range extractErrs {
		slog.Warn("Partial extraction", "applicant", applicant, "error", err)
	}

	return batchOutcome{
		applicant: applicant,
		report:    analysisEngine.Analyze(input),
	}
}

// listApplicantDirs returns the sorted subdirectories of root.
func listApplicantDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", root, err)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, filepath.Join(root, entry.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// firstExisting returns the first path that exists, or empty.
func firstExisting(paths ...string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
