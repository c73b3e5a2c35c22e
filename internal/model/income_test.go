package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIncomeSource_TrustPriority(t *testing.T) {
	assert.Less(t, SourceSalarySlip.TrustPriority(), SourceBankSalary.TrustPriority())
	assert.Less(t, SourceBankSalary.TrustPriority(), SourceTaxReturn.TrustPriority())
	assert.Less(t, SourceTaxReturn.TrustPriority(), SourceNone.TrustPriority())
	assert.Equal(t, SourceNone.TrustPriority(), IncomeSource("garbage").TrustPriority())
}
