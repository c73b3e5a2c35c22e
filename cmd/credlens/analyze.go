package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/credlens/credlens/internal/common"
	"github.com/credlens/credlens/internal/config"
	"github.com/credlens/credlens/internal/engine"
	"github.com/credlens/credlens/internal/render"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze one applicant's extracted documents",
		Long: `Run the scoring pipeline over an applicant's extracted documents.

Each document is optional; missing sources degrade gracefully through the
income trust chain (salary slip > bank-detected salary > tax return).

Examples:
  # Full document set
  credlens analyze --statement ledger.json --salary-slip slip.json --tax-return itr.json

  # Bank statement only (OFX accepted)
  credlens analyze --statement statement.ofx --employer "Acme Industries"

  # Persist the report for audit
  credlens analyze --statement ledger.json --save`,
		RunE: runAnalyze,
	}

	cmd.Flags().String("statement", "", "extracted bank ledger (JSON) or OFX/QFX statement")
	cmd.Flags().String("salary-slip", "", "extracted salary-slip summary (JSON)")
	cmd.Flags().String("tax-return", "", "extracted tax-return summary (JSON)")
	cmd.Flags().String("applicant", "", "applicant label for the report")
	cmd.Flags().String("employer", "", "employer name hint for salary detection")
	cmd.Flags().Bool("json", false, "emit the report as JSON instead of styled output")
	cmd.Flags().Bool("save", false, "persist the report to the audit store")

	return cmd
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	statementPath, _ := cmd.Flags().GetString("statement")
	slipPath, _ := cmd.Flags().GetString("salary-slip")
	taxPath, _ := cmd.Flags().GetString("tax-return")
	applicant, _ := cmd.Flags().GetString("applicant")
	employer, _ := cmd.Flags().GetString("employer")
	asJSON, _ := cmd.Flags().GetBool("json")
	save, _ := cmd.Flags().GetBool("save")

	extractors := buildExtractors(statementPath, slipPath, taxPath)
	if len(extractors) == 0 {
		return common.NewUserError(
			"supply at least one of --statement, --salary-slip, --tax-return",
			common.ErrNoDocuments)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	input, extractErrs := engine.RunExtractions(ctx, applicant, extractors, engine.DefaultExtractionWorkers)
	for _, extractErr := range extractErrs {
		slog.Warn("Continuing with partial documents", "error", extractErr)
	}
	if employer != "" {
		input.EmployerHint = employer
	}

	report := engine.New(cfg).Analyze(input)

	if save {
		store, cleanup, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		id, err := store.SaveReport(ctx, &report)
		if err != nil {
			return fmt.Errorf("failed to persist report: %w", err)
		}
		slog.Info("Report saved", "id", id)
	}

	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	fmt.Println(render.NewCLIFormatter().FormatReport(&report))
	return nil
}
