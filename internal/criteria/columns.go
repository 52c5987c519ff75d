// Package criteria parses the lender matrix spreadsheet into LenderCriteria
// records. Parsing is positional: each column index maps to one field.
package criteria

import "github.com/sells-group/lender-qualify/internal/model"

// Column indexes of the lender matrix spreadsheet. The two gap columns are
// present in the sheet but carry nothing the loader reads; removing them
// would shift every later field.
const (
	ColLenderName                   = 0
	ColSpecialty                    = 1
	ColMinFICO                      = 2
	ColMinSBSS                      = 3
	ColTimeInBusinessMonths         = 4
	ColMonthlyDepositsRequired      = 5
	ColAverageDailyBalance          = 6
	ColAverageMonthlyRevenue        = 7
	ColRequiredOwnershipPercentage  = 8
	ColPreferredIndustries          = 9
	ColRestrictedIndustries         = 10
	ColGapAfterRestrictedIndustries = 11
	ColRestrictedIndustryExceptions = 12
	ColRestrictedStates             = 13
	ColMaxPositions                 = 14
	ColMaxTaxLienAmount             = 15
	ColAllowsBankruptcies           = 16
	ColAutoDeclineReason            = 17
	ColMinFundingSize               = 18
	ColMaxFundingSize               = 19
	ColHoldbackPercentage           = 20
	ColTermLength                   = 21
	ColPaymentType                  = 22
	ColGapAfterPaymentType          = 23
	ColConsolidationPositions       = 24
	ColAdditionalInfo               = 25

	// ColumnCount is the width of a full lender row.
	ColumnCount = 26
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindNumber
	kindBool
)

// column binds one spreadsheet index to a LenderCriteria field. Exactly one
// accessor is set, matching kind.
type column struct {
	index  int
	name   string
	kind   fieldKind
	text   func(c *model.LenderCriteria) **string
	number func(c *model.LenderCriteria) **float64
	flag   func(c *model.LenderCriteria) **bool
}

func textCol(index int, name string, f func(c *model.LenderCriteria) **string) column {
	return column{index: index, name: name, kind: kindText, text: f}
}

func numberCol(index int, name string, f func(c *model.LenderCriteria) **float64) column {
	return column{index: index, name: name, kind: kindNumber, number: f}
}

func boolCol(index int, name string, f func(c *model.LenderCriteria) **bool) column {
	return column{index: index, name: name, kind: kindBool, flag: f}
}

// columns lists every optional field in sheet order. The lender name is
// handled separately because it decides whether a row is kept.
var columns = []column{
	textCol(ColSpecialty, "specialty", func(c *model.LenderCriteria) **string { return &c.Specialty }),
	numberCol(ColMinFICO, "min_fico", func(c *model.LenderCriteria) **float64 { return &c.MinFICO }),
	numberCol(ColMinSBSS, "min_sbss", func(c *model.LenderCriteria) **float64 { return &c.MinSBSS }),
	numberCol(ColTimeInBusinessMonths, "time_in_business_months", func(c *model.LenderCriteria) **float64 { return &c.TimeInBusinessMonths }),
	numberCol(ColMonthlyDepositsRequired, "monthly_deposits_required", func(c *model.LenderCriteria) **float64 { return &c.MonthlyDepositsRequired }),
	numberCol(ColAverageDailyBalance, "average_daily_balance", func(c *model.LenderCriteria) **float64 { return &c.AverageDailyBalance }),
	numberCol(ColAverageMonthlyRevenue, "average_monthly_revenue", func(c *model.LenderCriteria) **float64 { return &c.AverageMonthlyRevenue }),
	numberCol(ColRequiredOwnershipPercentage, "required_ownership_percentage", func(c *model.LenderCriteria) **float64 { return &c.RequiredOwnershipPercentage }),
	textCol(ColPreferredIndustries, "preferred_industries", func(c *model.LenderCriteria) **string { return &c.PreferredIndustries }),
	textCol(ColRestrictedIndustries, "restricted_industries", func(c *model.LenderCriteria) **string { return &c.RestrictedIndustries }),
	textCol(ColRestrictedIndustryExceptions, "restricted_industry_exceptions", func(c *model.LenderCriteria) **string { return &c.RestrictedIndustryExceptions }),
	textCol(ColRestrictedStates, "restricted_states", func(c *model.LenderCriteria) **string { return &c.RestrictedStates }),
	numberCol(ColMaxPositions, "max_positions", func(c *model.LenderCriteria) **float64 { return &c.MaxPositions }),
	numberCol(ColMaxTaxLienAmount, "max_tax_lien_amount", func(c *model.LenderCriteria) **float64 { return &c.MaxTaxLienAmount }),
	boolCol(ColAllowsBankruptcies, "allows_bankruptcies", func(c *model.LenderCriteria) **bool { return &c.AllowsBankruptcies }),
	textCol(ColAutoDeclineReason, "auto_decline_reason", func(c *model.LenderCriteria) **string { return &c.AutoDeclineReason }),
	numberCol(ColMinFundingSize, "min_funding_size", func(c *model.LenderCriteria) **float64 { return &c.MinFundingSize }),
	numberCol(ColMaxFundingSize, "max_funding_size", func(c *model.LenderCriteria) **float64 { return &c.MaxFundingSize }),
	numberCol(ColHoldbackPercentage, "holdback_percentage", func(c *model.LenderCriteria) **float64 { return &c.HoldbackPercentage }),
	textCol(ColTermLength, "term_length", func(c *model.LenderCriteria) **string { return &c.TermLength }),
	textCol(ColPaymentType, "payment_type", func(c *model.LenderCriteria) **string { return &c.PaymentType }),
	numberCol(ColConsolidationPositions, "consolidation_positions", func(c *model.LenderCriteria) **float64 { return &c.ConsolidationPositions }),
	textCol(ColAdditionalInfo, "additional_info", func(c *model.LenderCriteria) **string { return &c.AdditionalInfo }),
}

// Header returns the canonical header row, with empty names for gap columns.
func Header() []string {
	h := make([]string, ColumnCount)
	h[ColLenderName] = "lender_name"
	for _, col := range columns {
		h[col.index] = col.name
	}
	return h
}
