package model

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// CreditBucket is the self-reported credit range collected on the intake form.
type CreditBucket string

// Credit buckets offered by the intake form.
const (
	Credit700Plus   CreditBucket = "700+"
	Credit650To700  CreditBucket = "650-700"
	Credit600To650  CreditBucket = "600-650"
	Credit550To600  CreditBucket = "550-600"
	CreditBelow550  CreditBucket = "Below 550"
	creditBucketMin              = 500
)

// bucketFloors maps each bucket to the lowest score it represents.
var bucketFloors = map[CreditBucket]int{
	Credit700Plus:  700,
	Credit650To700: 650,
	Credit600To650: 600,
	Credit550To600: 550,
	CreditBelow550: creditBucketMin,
}

// Floor returns the lowest score in the bucket. Unrecognized buckets map to 500.
func (b CreditBucket) Floor() int {
	if v, ok := bucketFloors[b]; ok {
		return v
	}
	return creditBucketMin
}

// Valid reports whether b is one of the buckets offered by the intake form.
func (b CreditBucket) Valid() bool {
	_, ok := bucketFloors[b]
	return ok
}

// DateLayout is the ISO date format used for BusinessStartDate.
const DateLayout = "2006-01-02"

// ClientProfile is a snapshot of one applicant's business and financial
// situation at evaluation time. It is never mutated by the qualification engine.
type ClientProfile struct {
	// Identity and business facts.
	Name          string `json:"name"`
	Company       string `json:"company"`
	State         string `json:"state"`
	City          string `json:"city"`
	EntityType    string `json:"entity_type"`
	Industry      string `json:"industry,omitempty"`
	EmployeeCount int    `json:"employee_count"`
	HomeBased     bool   `json:"home_based"`

	// Financials.
	CapitalRequested       float64 `json:"capital_requested"`
	AvgMonthlyDeposits     float64 `json:"avg_monthly_deposits"`
	AvgMonthlyDepositCount *int    `json:"avg_monthly_deposit_count,omitempty"`
	AvgAnnualRevenue       float64 `json:"avg_annual_revenue"`
	BusinessStartDate      string  `json:"business_start_date"`

	// Credit. ExactCreditScore takes precedence over CreditScore when set.
	CreditScore      CreditBucket `json:"credit_score"`
	ExactCreditScore *int         `json:"exact_credit_score,omitempty"`

	// Risk flags. Nil means the question was not asked or is unknown.
	HasExistingLoans      bool  `json:"has_existing_loans"`
	HasDefaultedMCA       *bool `json:"has_defaulted_mca,omitempty"`
	MCAWasSatisfied       *bool `json:"mca_was_satisfied,omitempty"`
	HasReducedMCAPayments *bool `json:"has_reduced_mca_payments,omitempty"`
	OwnsRealEstate        *bool `json:"owns_real_estate,omitempty"`
	PersonalDebtOver75k   *bool `json:"personal_debt_over_75k,omitempty"`
	BankruptcyLast3Years  *bool `json:"bankruptcy_last_3_years,omitempty"`
	HasTaxLiens           *bool `json:"has_tax_liens,omitempty"`
	HasActiveJudgements   *bool `json:"has_active_judgements,omitempty"`
	HasZeroBalanceLetter  *bool `json:"has_zero_balance_letter,omitempty"`

	// Narrative.
	LoanPurpose     string `json:"loan_purpose"`
	LoanType        string `json:"loan_type,omitempty"`
	FundingUrgency  string `json:"funding_urgency,omitempty"`
	AdditionalNotes string `json:"additional_notes,omitempty"`
}

// Flag reads a nullable risk flag, treating nil as false.
func Flag(b *bool) bool {
	return b != nil && *b
}

// StartDate parses BusinessStartDate. Both plain ISO dates and RFC 3339
// timestamps are accepted.
func (p *ClientProfile) StartDate() (time.Time, error) {
	s := strings.TrimSpace(p.BusinessStartDate)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "profile: parse business_start_date %q", p.BusinessStartDate)
	}
	return t, nil
}

// Validate checks the invariants the engine assumes but never enforces.
// It is meant for form and API layers.
func (p *ClientProfile) Validate(now time.Time) error {
	var errs []string

	if p.CapitalRequested < 0 {
		errs = append(errs, "capital_requested must be >= 0")
	}
	if p.AvgMonthlyDeposits < 0 {
		errs = append(errs, "avg_monthly_deposits must be >= 0")
	}
	if p.AvgAnnualRevenue < 0 {
		errs = append(errs, "avg_annual_revenue must be >= 0")
	}
	if p.AvgMonthlyDepositCount != nil && *p.AvgMonthlyDepositCount < 0 {
		errs = append(errs, "avg_monthly_deposit_count must be >= 0")
	}
	if p.CreditScore != "" && !p.CreditScore.Valid() {
		errs = append(errs, "credit_score must be one of 700+, 650-700, 600-650, 550-600, Below 550")
	}
	if p.ExactCreditScore != nil && (*p.ExactCreditScore < 300 || *p.ExactCreditScore > 850) {
		errs = append(errs, "exact_credit_score must be between 300 and 850")
	}

	start, err := p.StartDate()
	switch {
	case err != nil:
		errs = append(errs, "business_start_date must be an ISO date (YYYY-MM-DD)")
	case start.After(now):
		errs = append(errs, "business_start_date must not be in the future")
	}

	if len(errs) > 0 {
		return eris.Errorf("profile: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
