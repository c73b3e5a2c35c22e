package model

// RiskLevel is the qualitative credit risk, ordered from low to high.
type RiskLevel string

// Risk levels.
const (
	RiskLow        RiskLevel = "LOW"
	RiskMediumLow  RiskLevel = "MEDIUM-LOW"
	RiskMedium     RiskLevel = "MEDIUM"
	RiskMediumHigh RiskLevel = "MEDIUM-HIGH"
	RiskHigh       RiskLevel = "HIGH"
)

// CIBILComponents holds the four normalized sub-scores, each in [0,1].
type CIBILComponents struct {
	PaymentHistory    float64
	CreditUtilization float64
	IncomeStability   float64
	CreditMix         float64
}

// CIBILEstimate is a weighted multi-factor estimate of a CIBIL-style score.
// The factor and indicator lists are explanatory strings for audit and are
// never re-consumed computationally.
type CIBILEstimate struct {
	Score           int
	Band            string
	RiskLevel       RiskLevel
	Components      CIBILComponents
	PositiveFactors []string
	NegativeFactors []string
	RiskIndicators  []string
}

// Score range boundaries for the CIBIL scale.
const (
	CIBILMinScore = 300
	CIBILMaxScore = 900
)
