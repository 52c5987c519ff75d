package model

// LenderCriteria holds one lender's eligibility rules as published in the
// lender matrix spreadsheet. A nil threshold means the lender does not
// publish or enforce that constraint.
type LenderCriteria struct {
	LenderName string  `json:"lender_name"`
	Specialty  *string `json:"specialty"`

	// Hard thresholds.
	MinFICO                     *float64 `json:"min_fico"`
	MinSBSS                     *float64 `json:"min_sbss"`
	TimeInBusinessMonths        *float64 `json:"time_in_business_months"`
	MonthlyDepositsRequired     *float64 `json:"monthly_deposits_required"`
	AverageDailyBalance         *float64 `json:"average_daily_balance"`
	AverageMonthlyRevenue       *float64 `json:"average_monthly_revenue"`
	RequiredOwnershipPercentage *float64 `json:"required_ownership_percentage"`
	MaxPositions                *float64 `json:"max_positions"`
	MaxTaxLienAmount            *float64 `json:"max_tax_lien_amount"`
	MinFundingSize              *float64 `json:"min_funding_size"`
	MaxFundingSize              *float64 `json:"max_funding_size"`

	// Policy fields.
	AllowsBankruptcies           *bool    `json:"allows_bankruptcies"`
	PreferredIndustries          *string  `json:"preferred_industries"`
	RestrictedIndustries         *string  `json:"restricted_industries"`
	RestrictedStates             *string  `json:"restricted_states"`
	RestrictedIndustryExceptions *string  `json:"restricted_industry_exceptions"`
	AutoDeclineReason            *string  `json:"auto_decline_reason"`
	HoldbackPercentage           *float64 `json:"holdback_percentage"`
	TermLength                   *string  `json:"term_length"`
	PaymentType                  *string  `json:"payment_type"`
	ConsolidationPositions       *float64 `json:"consolidation_positions"`
	AdditionalInfo               *string  `json:"additional_info"`
}
