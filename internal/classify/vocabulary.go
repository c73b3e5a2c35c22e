// Package classify labels bank ledger entries as salary credits, EMI debits,
// or bounce incidents using vocabulary rules and recurrence analysis.
package classify

import (
	"fmt"
	"regexp"
)

// Category identifies a vocabulary rule category.
type Category string

// Vocabulary categories.
const (
	// CategorySalary matches salary and payroll credits.
	CategorySalary Category = "salary"
	// CategoryEMI matches loan installment debits.
	CategoryEMI Category = "emi"
	// CategoryMandate matches NACH/ECS/ACH mandate debits, the fallback
	// pool when no EMI-vocabulary debit exists.
	CategoryMandate Category = "mandate"
	// CategoryBounce is the outer bounce/dishonor vocabulary.
	CategoryBounce Category = "bounce"
	// CategoryBounceGeneric is the generic bounce sub-pattern.
	CategoryBounceGeneric Category = "bounce_generic"
	// CategoryDishonor is the cheque/mandate dishonor sub-pattern.
	CategoryDishonor Category = "dishonor"
	// CategoryInsufficientFunds is the insufficient-balance sub-pattern.
	CategoryInsufficientFunds Category = "insufficient_funds"
)

// VocabularyVersion identifies the rule table revision. Bump it whenever a
// rule is added, removed, or its regex changes, so audit trails can pin the
// exact vocabulary a classification ran against.
const VocabularyVersion = 3

// Rule is one named vocabulary entry. Rules are matched case-insensitively
// against the raw narration text.
type Rule struct {
	Name     string
	Category Category
	Regex    string
}

// DefaultRules returns the built-in classification vocabulary.
func DefaultRules() []Rule {
	return []Rule{
		// Salary credits
		{
			Name:     "Salary Credit",
			Category: CategorySalary,
			Regex:    `\bSAL(ARY)?\b`,
		},
		{
			Name:     "Payroll Credit",
			Category: CategorySalary,
			Regex:    `\b(PAYROLL|WAGES|STIPEND|PAY\s*CREDIT)\b`,
		},

		// EMI / loan installment debits
		{
			Name:     "EMI Debit",
			Category: CategoryEMI,
			Regex:    `\bEMI\b`,
		},
		{
			Name:     "Loan Installment",
			Category: CategoryEMI,
			Regex:    `\b(LOAN|INSTAL?LMENT|FINANCE|FIN\s*SERV)\b`,
		},
		{
			Name:     "Mandate EMI",
			Category: CategoryEMI,
			Regex:    `\b(NACH|ECS|ACH|AUTO[-\s]?DEBIT|SI\s*DEBIT)\b`,
		},

		// Mandate-tagged debits, used as the EMI fallback pool
		{
			Name:     "Clearing Mandate",
			Category: CategoryMandate,
			Regex:    `\b(NACH|ECS|ACH)\b`,
		},

		// Bounce / dishonor incidents
		{
			Name:     "Bounce Vocabulary",
			Category: CategoryBounce,
			Regex:    `\b(BOUNCE|RETURN(ED)?|RTN|DISHONOU?R|INSUFF(ICIENT)?|PAYMENT\s*FAILED|CHQ\s*RET|PENAL)\b`,
		},
		{
			Name:     "Dishonor Sub-pattern",
			Category: CategoryDishonor,
			Regex:    `(DISHONOU?R|CHQ\s*RET|CHEQUE\s*RET(URN)?|\b(ECS|NACH)\s*RET)`,
		},
		{
			Name:     "Insufficient Funds Sub-pattern",
			Category: CategoryInsufficientFunds,
			Regex:    `(INSUFF(ICIENT)?\s*(FUNDS?|BAL(ANCE)?)?|\bNSF\b|MIN(IMUM)?\s*BAL)`,
		},
		{
			Name:     "Generic Bounce Sub-pattern",
			Category: CategoryBounceGeneric,
			Regex:    `\b(BOUNCE|RTN|RETURN(ED)?|PAYMENT\s*FAILED|PENAL)\b`,
		},
	}
}

// Vocabulary holds compiled rules grouped by category.
type Vocabulary struct {
	rules    []Rule
	compiled map[Category][]*regexp.Regexp
}

// NewVocabulary compiles a rule table. Every regex is compiled
// case-insensitively; an invalid rule is a construction error, never a
// silent skip.
func NewVocabulary(rules []Rule) (*Vocabulary, error) {
	v := &Vocabulary{
		rules:    rules,
		compiled: make(map[Category][]*regexp.Regexp),
	}

	for _, r := range rules {
		re, err := regexp.Compile("(?i)" + r.Regex)
		if err != nil {
			return nil, fmt.Errorf("failed to compile vocabulary rule %q: %w", r.Name, err)
		}
		v.compiled[r.Category] = append(v.compiled[r.Category], re)
	}

	return v, nil
}

// MustDefaultVocabulary returns the compiled built-in vocabulary. The
// built-in rules are covered by tests, so compilation cannot fail at
// runtime.
func MustDefaultVocabulary() *Vocabulary {
	v, err := NewVocabulary(DefaultRules())
	if err != nil {
		panic(err)
	}
	return v
}

// Rules returns the rule table backing this vocabulary.
func (v *Vocabulary) Rules() []Rule {
	return v.rules
}

// Matches reports whether any rule in the category matches the narration.
func (v *Vocabulary) Matches(category Category, narration string) bool {
	for _, re := range v.compiled[category] {
		if re.MatchString(narration) {
			return true
		}
	}
	return false
}
