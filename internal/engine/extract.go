package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/credlens/credlens/internal/model"
)

// DocumentKind identifies one extraction source document.
type DocumentKind string

// Extraction source kinds.
const (
	DocBankStatement DocumentKind = "bank_statement"
	DocSalarySlip    DocumentKind = "salary_slip"
	DocTaxReturn     DocumentKind = "tax_return"
)

// DefaultExtractionWorkers is the fixed size of the extraction worker group.
const DefaultExtractionWorkers = 3

// Extraction is the typed output of one extraction task. Only the fields
// matching the Kind are populated.
type Extraction struct {
	Kind       DocumentKind
	Ledger     []model.Transaction
	SalarySlip *model.SalarySlipSummary
	TaxReturn  *model.TaxReturnSummary
	Confidence float64
}

// Extractor produces one typed document extraction. Implementations live at
// the ingest boundary; the core never reads raw documents itself.
type Extractor interface {
	Kind() DocumentKind
	Extract(ctx context.Context) (*Extraction, error)
}

// RunExtractions fans the extractors out over a fixed-size worker group and
// joins all results into one engine Input. Failures are collected, not
// fatal: a failed source simply leaves its slot empty and the pipeline
// degrades through the income trust chain. Context cancellation stops
// dispatching unstarted tasks.
func RunExtractions(ctx context.Context, applicant string, extractors []Extractor, workers int) (Input, []error) {
	if workers < 1 {
		workers = DefaultExtractionWorkers
	}

	type outcome struct {
		extraction *Extraction
		err        error
		kind       DocumentKind
		index      int
	}

	jobs := make(chan int)
	outcomes := make(chan outcome, len(extractors))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				ext := extractors[idx]
				result, err := ext.Extract(ctx)
				outcomes <- outcome{extraction: result, err: err, kind: ext.Kind(), index: idx}
			}
		}()
	}

	dispatched := 0
dispatch:
	for i := range extractors {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
			dispatched++
		}
	}
	close(jobs)
	wg.Wait()
	close(outcomes)

	collected := make([]outcome, 0, dispatched)
	for o := range outcomes {
		collected = append(collected, o)
	}
	// Join in submission order so the assembled input and the error list are
	// deterministic regardless of worker scheduling.
	sort.Slice(collected, func(i, j int) bool { return collected[i].index < collected[j].index })

	input := Input{Applicant: applicant}
	var errs []error
	for _, o := range collected {
		if o.err != nil {
			errs = append(errs, fmt.Errorf("extraction of %s failed: %w", o.kind, o.err))
			slog.Warn("Document extraction failed", "kind", o.kind, "error", o.err)
			continue
		}
		if o.extraction == nil {
			continue
		}

		switch o.kind {
		case DocBankStatement:
			input.Ledger = o.extraction.Ledger
		case DocSalarySlip:
			input.SalarySlip = o.extraction.SalarySlip
		case DocTaxReturn:
			input.TaxReturn = o.extraction.TaxReturn
		}
		input.Confidences = append(input.Confidences, o.extraction.Confidence)
	}

	if err := ctx.Err(); err != nil && dispatched < len(extractors) {
		errs = append(errs, fmt.Errorf("extraction canceled before all documents were processed: %w", err))
	}

	return input, errs
}
