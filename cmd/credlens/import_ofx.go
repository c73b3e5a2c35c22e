package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/credlens/credlens/internal/ingest"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx <file>",
		Short: "Convert an OFX/QFX bank statement to an extracted ledger document",
		Long: `Convert an OFX or QFX statement exported from a bank into the JSON ledger
document the analyze command consumes. Running balances are reconstructed
from the statement's closing ledger balance.

Example:
  credlens import-ofx statement.ofx -o ledger.json`,
		Args: cobra.ExactArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().StringP("output", "o", "", "output path (default: stdout)")
	cmd.Flags().String("applicant", "", "applicant label embedded in the document")

	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")
	applicant, _ := cmd.Flags().GetString("applicant")

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open OFX file: %w", err)
	}
	defer func() { _ = f.Close() }()

	txns, err := ingest.NewOFXParser().ParseStatement(f)
	if err != nil {
		return err
	}

	doc := ingest.LedgerDocument{
		Applicant:    applicant,
		Confidence:   0.95,
		Transactions: make([]ingest.LedgerRow, 0, len(txns)),
	}
	for _, t := range txns {
		row := ingest.LedgerRow{
			Date:      t.Date.Format("2006-01-02"),
			Narration: t.Narration,
		}
		if t.Debit > 0 {
			debit := t.Debit
			row.Debit = &debit
		}
		if t.Credit > 0 {
			credit := t.Credit
			row.Credit = &credit
		}
		if t.Balance >= 0 {
			balance := t.Balance
			row.Balance = &balance
		}
		doc.Transactions = append(doc.Transactions, row)
	}

	out := os.Stdout
	if outputPath != "" {
		out, err = os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = out.Close() }()
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to write ledger document: %w", err)
	}

	slog.Info("Converted OFX statement",
		"transactions", len(txns),
		"output", outputPath)
	return nil
}
