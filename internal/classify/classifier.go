package classify

import (
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/credlens/credlens/internal/model"
)

// minEmployerTokenLen is the shortest employer-name token considered
// meaningful salary evidence.
const minEmployerTokenLen = 4

// DefaultRecurrenceMonths is the number of distinct calendar months an EMI
// amount must appear in before it is promoted to confirmed-recurring.
const DefaultRecurrenceMonths = 3

// Result is the classified view of one ledger: disjoint salary and EMI
// transaction sets plus the three bounce counters. Classification is a pure
// function of the ledger, so identical input always yields identical Results.
type Result struct {
	SalaryCredits []model.Transaction
	EMIDebits     []model.Transaction

	BounceCount            int
	DishonorCount          int
	InsufficientFundsCount int
}

// PaymentIncidents returns the total count of rejected-payment evidence
// across all three counters.
func (r Result) PaymentIncidents() int {
	return r.BounceCount + r.DishonorCount + r.InsufficientFundsCount
}

// AverageMonthlySalary returns the mean of the detected monthly salary
// credits, or 0 when no salary evidence exists.
func (r Result) AverageMonthlySalary() float64 {
	if len(r.SalaryCredits) == 0 {
		return 0
	}
	var total float64
	for _, t := range r.SalaryCredits {
		total += t.Credit
	}
	return total / float64(len(r.SalaryCredits))
}

// ConsecutiveSalaryMonths returns the longest run of consecutive calendar
// months with salary evidence.
func (r Result) ConsecutiveSalaryMonths() int {
	if len(r.SalaryCredits) == 0 {
		return 0
	}

	months := make([]time.Time, 0, len(r.SalaryCredits))
	for _, t := range r.SalaryCredits {
		d := t.Date
		months = append(months, time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC))
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	best, run := 1, 1
	for i := 1; i < len(months); i++ {
		if months[i].Equal(months[i-1].AddDate(0, 1, 0)) {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 1
		}
	}
	return best
}

// DistinctEMISources returns the number of distinct recurring obligation
// amounts in the final EMI set, a proxy for active loan accounts.
func (r Result) DistinctEMISources() int {
	amounts := make(map[float64]bool)
	for _, t := range r.EMIDebits {
		amounts[math.Round(t.Debit)] = true
	}
	return len(amounts)
}

// TotalMonthlyEMI returns the summed monthly obligation: each distinct
// recurring amount contributes its per-month average once, so an EMI that
// appears in six months still counts as one installment.
func (r Result) TotalMonthlyEMI() float64 {
	sums := make(map[float64]float64)
	counts := make(map[float64]int)
	for _, t := range r.EMIDebits {
		key := math.Round(t.Debit)
		sums[key] += t.Debit
		counts[key]++
	}

	var total float64
	for key, sum := range sums {
		total += sum / float64(counts[key])
	}
	return total
}

// Classifier labels ledger entries using a compiled vocabulary.
type Classifier struct {
	vocab            *Vocabulary
	recurrenceMonths int
}

// NewClassifier creates a classifier over the given vocabulary with the
// default recurrence threshold.
func NewClassifier(vocab *Vocabulary) *Classifier {
	return &Classifier{vocab: vocab, recurrenceMonths: DefaultRecurrenceMonths}
}

// NewClassifierWithRecurrence creates a classifier with a custom recurrence
// threshold. Values below 1 fall back to the default.
func NewClassifierWithRecurrence(vocab *Vocabulary, months int) *Classifier {
	if months < 1 {
		months = DefaultRecurrenceMonths
	}
	return &Classifier{vocab: vocab, recurrenceMonths: months}
}

// Classify labels the ledger. Entries with a zero date are excluded as
// malformed rows; the method never fails.
func (c *Classifier) Classify(txns []model.Transaction, employerHint string) Result {
	ordered := make([]model.Transaction, 0, len(txns))
	dropped := 0
	for _, t := range model.NormalizeTransactions(txns) {
		if t.Date.IsZero() {
			dropped++
			continue
		}
		ordered = append(ordered, t)
	}
	if dropped > 0 {
		slog.Debug("Excluded undated ledger rows from classification", "count", dropped)
	}

	result := Result{
		SalaryCredits: c.detectSalary(ordered, employerHint),
		EMIDebits:     c.detectEMI(ordered),
	}
	c.countBounces(ordered, &result)
	return result
}

// detectSalary finds salary credits and retains at most the single highest
// credit per calendar month, so multiple employer credits in one month never
// double-count.
func (c *Classifier) detectSalary(txns []model.Transaction, employerHint string) []model.Transaction {
	tokens := employerTokens(employerHint)

	byMonth := make(map[string]model.Transaction)
	var order []string
	for _, t := range txns {
		if !t.IsCredit() {
			continue
		}
		if !c.vocab.Matches(CategorySalary, t.Narration) && !matchesEmployer(t.Narration, tokens) {
			continue
		}

		month := t.Month()
		prev, seen := byMonth[month]
		if !seen {
			order = append(order, month)
		}
		if !seen || t.Credit > prev.Credit {
			byMonth[month] = t
		}
	}

	hits := make([]model.Transaction, 0, len(order))
	for _, month := range order {
		hits = append(hits, byMonth[month])
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Date.Before(hits[j].Date) })
	return hits
}

// detectEMI finds installment debits, promotes amounts recurring in enough
// distinct months, and deduplicates by date, rounded amount, and normalized
// narration. When no amount group recurs, the raw candidates are used
// unfiltered rather than reporting zero obligation.
func (c *Classifier) detectEMI(txns []model.Transaction) []model.Transaction {
	var candidates []model.Transaction
	for _, t := range txns {
		if t.IsDebit() && c.vocab.Matches(CategoryEMI, t.Narration) {
			candidates = append(candidates, t)
		}
	}

	if len(candidates) == 0 {
		for _, t := range txns {
			if t.IsDebit() && c.vocab.Matches(CategoryMandate, t.Narration) {
				candidates = append(candidates, t)
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	monthsByAmount := make(map[float64]map[string]bool)
	for _, t := range candidates {
		key := math.Round(t.Debit)
		if monthsByAmount[key] == nil {
			monthsByAmount[key] = make(map[string]bool)
		}
		monthsByAmount[key][t.Month()] = true
	}

	confirmed := make([]model.Transaction, 0, len(candidates))
	for _, t := range candidates {
		if len(monthsByAmount[math.Round(t.Debit)]) >= c.recurrenceMonths {
			confirmed = append(confirmed, t)
		}
	}
	if len(confirmed) == 0 {
		confirmed = candidates
	}

	return dedupeEMI(confirmed)
}

// dedupeEMI removes repeated (date, rounded amount, normalized narration)
// entries while preserving order.
func dedupeEMI(txns []model.Transaction) []model.Transaction {
	type emiKey struct {
		date      string
		amount    float64
		narration string
	}

	seen := make(map[emiKey]bool, len(txns))
	out := make([]model.Transaction, 0, len(txns))
	for _, t := range txns {
		key := emiKey{
			date:      t.Date.Format("2006-01-02"),
			amount:    math.Round(t.Debit),
			narration: normalizeNarration(t.Narration),
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

// countBounces increments the three incident counters. A transaction that
// matches the outer vocabulary but no sub-pattern still increments the
// generic bounce counter, so an outer match is never silently dropped.
func (c *Classifier) countBounces(txns []model.Transaction, result *Result) {
	for _, t := range txns {
		if !c.vocab.Matches(CategoryBounce, t.Narration) {
			continue
		}

		matched := false
		if c.vocab.Matches(CategoryDishonor, t.Narration) {
			result.DishonorCount++
			matched = true
		}
		if c.vocab.Matches(CategoryInsufficientFunds, t.Narration) {
			result.InsufficientFundsCount++
			matched = true
		}
		if c.vocab.Matches(CategoryBounceGeneric, t.Narration) {
			result.BounceCount++
			matched = true
		}
		if !matched {
			result.BounceCount++
		}
	}
}

// employerTokens extracts lowercase alphanumeric tokens of useful length
// from the employer hint.
func employerTokens(hint string) []string {
	fields := strings.FieldsFunc(strings.ToLower(hint), func(r rune) bool {
		return !isAlnum(r)
	})

	var tokens []string
	for _, f := range fields {
		if len(f) >= minEmployerTokenLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// matchesEmployer reports whether the narration contains any employer token.
func matchesEmployer(narration string, tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	normalized := normalizeNarration(narration)
	for _, token := range tokens {
		if strings.Contains(normalized, token) {
			return true
		}
	}
	return false
}

// normalizeNarration lowercases and strips non-alphanumeric characters.
func normalizeNarration(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if isAlnum(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
