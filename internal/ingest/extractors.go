package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/credlens/credlens/internal/engine"
)

// ofxLedgerConfidence is the extraction confidence assigned to OFX
// statements. OFX is machine-generated, so it ranks above typical OCR
// output but below 1 to account for balance reconstruction.
const ofxLedgerConfidence = 0.95

// LedgerFileExtractor reads an extracted bank ledger from disk. JSON
// documents and OFX/QFX statements are both accepted, chosen by extension.
type LedgerFileExtractor struct {
	Path string
}

// Kind implements engine.Extractor.
func (e LedgerFileExtractor) Kind() engine.DocumentKind {
	return engine.DocBankStatement
}

// Extract implements engine.Extractor.
func (e LedgerFileExtractor) Extract(ctx context.Context) (*engine.Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(e.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger file: %w", err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(e.Path)) {
	case ".ofx", ".qfx":
		txns, err := NewOFXParser().ParseStatement(f)
		if err != nil {
			return nil, err
		}
		return &engine.Extraction{
			Kind:       engine.DocBankStatement,
			Ledger:     txns,
			Confidence: ofxLedgerConfidence,
		}, nil
	default:
		doc, txns, err := ParseLedger(f)
		if err != nil {
			return nil, err
		}
		return &engine.Extraction{
			Kind:       engine.DocBankStatement,
			Ledger:     txns,
			Confidence: doc.Confidence,
		}, nil
	}
}

// SalarySlipFileExtractor reads an extracted salary-slip summary from disk.
type SalarySlipFileExtractor struct {
	Path string
}

// Kind implements engine.Extractor.
func (e SalarySlipFileExtractor) Kind() engine.DocumentKind {
	return engine.DocSalarySlip
}

// Extract implements engine.Extractor.
func (e SalarySlipFileExtractor) Extract(ctx context.Context) (*engine.Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(e.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open salary-slip file: %w", err)
	}
	defer func() { _ = f.Close() }()

	doc, summary, err := ParseSalarySlip(f)
	if err != nil {
		return nil, err
	}
	return &engine.Extraction{
		Kind:       engine.DocSalarySlip,
		SalarySlip: summary,
		Confidence: doc.Confidence,
	}, nil
}

// TaxReturnFileExtractor reads an extracted tax-return summary from disk.
type TaxReturnFileExtractor struct {
	Path string
}

// Kind implements engine.Extractor.
func (e TaxReturnFileExtractor) Kind() engine.DocumentKind {
	return engine.DocTaxReturn
}

// Extract implements engine.Extractor.
func (e TaxReturnFileExtractor) Extract(ctx context.Context) (*engine.Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(e.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tax-return file: %w", err)
	}
	defer func() { _ = f.Close() }()

	doc, summary, err := ParseTaxReturn(f)
	if err != nil {
		return nil, err
	}
	return &engine.Extraction{
		Kind:       engine.DocTaxReturn,
		TaxReturn:  summary,
		Confidence: doc.Confidence,
	}, nil
}
