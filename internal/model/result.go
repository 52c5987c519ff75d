package model

// QualificationResult is the engine's verdict for one (client, lender) pair.
type QualificationResult struct {
	LenderName      string   `json:"lender_name"`
	Specialty       *string  `json:"specialty"`
	IsQualified     bool     `json:"is_qualified"`
	MatchScore      int      `json:"match_score"`
	MatchedCriteria []string `json:"matched_criteria"`
	FailedCriteria  []string `json:"failed_criteria"`
	Warnings        []string `json:"warnings"`
	MinFunding      *float64 `json:"min_funding"`
	MaxFunding      *float64 `json:"max_funding"`
	PaymentType     *string  `json:"payment_type"`
}

// FundingBasis records which rule produced a funding-potential estimate.
type FundingBasis string

// Funding-potential bases.
const (
	FundingBasisQualified FundingBasis = "qualified_lenders"
	FundingBasisRequested FundingBasis = "requested_fallback"
	FundingBasisNone      FundingBasis = "none"
)

// FundingPotential is an advisory, non-binding ceiling on obtainable capital.
type FundingPotential struct {
	Estimate         float64      `json:"estimate"`
	RevenueCap       float64      `json:"revenue_cap"`
	QualifiedLenders int          `json:"qualified_lenders"`
	Basis            FundingBasis `json:"basis"`
}
