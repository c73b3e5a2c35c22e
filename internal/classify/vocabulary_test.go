package classify

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRules_AllCompile(t *testing.T) {
	for _, rule := range DefaultRules() {
		t.Run(rule.Name, func(t *testing.T) {
			_, err := regexp.Compile("(?i)" + rule.Regex)
			assert.NoError(t, err)
		})
	}
}

func TestDefaultRules_CoverEveryCategory(t *testing.T) {
	covered := make(map[Category]bool)
	for _, rule := range DefaultRules() {
		covered[rule.Category] = true
	}

	for _, category := range []Category{
		CategorySalary,
		CategoryEMI,
		CategoryMandate,
		CategoryBounce,
		CategoryBounceGeneric,
		CategoryDishonor,
		CategoryInsufficientFunds,
	} {
		assert.True(t, covered[category], "no rule for category %s", category)
	}
}

func TestNewVocabulary_RejectsInvalidRegex(t *testing.T) {
	_, err := NewVocabulary([]Rule{{Name: "broken", Category: CategorySalary, Regex: "("}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestVocabulary_Matches(t *testing.T) {
	vocab := MustDefaultVocabulary()

	tests := []struct {
		name      string
		category  Category
		narration string
		want      bool
	}{
		{name: "salary lowercase", category: CategorySalary, narration: "neft salary credit", want: true},
		{name: "sal abbreviation", category: CategorySalary, narration: "IMPS SAL MAR", want: true},
		{name: "salary requires word boundary", category: CategorySalary, narration: "REVERSAL ENTRY", want: false},
		{name: "emi", category: CategoryEMI, narration: "ACH D- EMI HDFC", want: true},
		{name: "loan", category: CategoryEMI, narration: "AUTO LOAN 00123", want: true},
		{name: "mandate", category: CategoryMandate, narration: "NACH DR BAJAJ", want: true},
		{name: "dishonour british spelling", category: CategoryDishonor, narration: "CHQ DISHONOUR CHGS", want: true},
		{name: "insufficient funds", category: CategoryInsufficientFunds, narration: "RTN INSUFF FUNDS", want: true},
		{name: "plain purchase", category: CategoryBounce, narration: "POS SWIGGY BANGALORE", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, vocab.Matches(tt.category, tt.narration))
		})
	}
}
