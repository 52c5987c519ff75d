package qualify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckFICO_Threshold(t *testing.T) {
	for _, minFICO := range []float64{1, 550, 640, 720} {
		l := acmeLender()
		l.MinFICO = ptrFloat64(minFICO)

		at := strongProfile()
		at.ExactCreditScore = ptrInt(int(minFICO))
		ok, _ := run(checkFICO, at, l)
		assert.True(t, ok, "score equal to min %v should pass", minFICO)

		below := strongProfile()
		below.ExactCreditScore = ptrInt(int(minFICO) - 1)
		ok, tl := run(checkFICO, below, l)
		assert.False(t, ok, "score one below min %v should fail", minFICO)
		require.Len(t, tl.failed, 1)
	}
}

func TestCheckFICO_BaselineWhenUnpublished(t *testing.T) {
	l := acmeLender()
	l.MinFICO = nil

	p := strongProfile()
	p.ExactCreditScore = ptrInt(499)
	ok, tl := run(checkFICO, p, l)
	assert.False(t, ok)
	assert.Contains(t, tl.failed[0], "499")

	p.ExactCreditScore = ptrInt(500)
	ok, tl = run(checkFICO, p, l)
	assert.True(t, ok)
	assert.Len(t, tl.passed, 1)
}

func TestCheckTimeInBusiness(t *testing.T) {
	l := acmeLender()
	l.TimeInBusinessMonths = ptrFloat64(12)

	p := strongProfile()
	p.BusinessStartDate = "2025-09-15" // 13 months before testNow
	ok, _ := run(checkTimeInBusiness, p, l)
	assert.True(t, ok)

	p.BusinessStartDate = "2026-01-10"
	ok, tl := run(checkTimeInBusiness, p, l)
	assert.False(t, ok)
	assert.Contains(t, tl.failed[0], "9 months")

	l.TimeInBusinessMonths = nil
	ok, _ = run(checkTimeInBusiness, p, l)
	assert.True(t, ok)
}

func TestCheckMonthlyRevenue(t *testing.T) {
	tests := []struct {
		name     string
		min      *float64
		deposits float64
		want     bool
	}{
		{"baseline fail", nil, 9_999, false},
		{"baseline pass", nil, 10_000, true},
		{"lender min pass", ptrFloat64(25_000), 25_000, true},
		{"lender min fail", ptrFloat64(25_000), 24_999, false},
		{"lender min below baseline", ptrFloat64(5_000), 6_000, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := acmeLender()
			l.AverageMonthlyRevenue = tt.min
			p := strongProfile()
			p.AvgMonthlyDeposits = tt.deposits
			ok, _ := run(checkMonthlyRevenue, p, l)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestCheckDepositCount(t *testing.T) {
	l := acmeLender()
	l.MonthlyDepositsRequired = ptrFloat64(10)

	p := strongProfile()
	p.AvgMonthlyDepositCount = nil
	p.AvgMonthlyDeposits = 0
	p.ExactCreditScore = ptrInt(300)
	ok, tl := run(checkDepositCount, p, l)
	assert.True(t, ok, "missing deposit count is skipped, not failed")
	assert.Empty(t, tl.failed)

	p.AvgMonthlyDepositCount = ptrInt(9)
	ok, _ = run(checkDepositCount, p, l)
	assert.False(t, ok)

	p.AvgMonthlyDepositCount = ptrInt(10)
	ok, _ = run(checkDepositCount, p, l)
	assert.True(t, ok)

	l.MonthlyDepositsRequired = nil
	p.AvgMonthlyDepositCount = ptrInt(0)
	ok, _ = run(checkDepositCount, p, l)
	assert.True(t, ok)
}

func TestCheckFundingAmount(t *testing.T) {
	l := acmeLender()

	p := strongProfile()
	p.CapitalRequested = 4000
	ok, tl := run(checkFundingAmount, p, l)
	assert.False(t, ok)
	assert.Len(t, tl.failed, 1)
	assert.Empty(t, tl.warnings)

	p.CapitalRequested = 300_000
	ok, tl = run(checkFundingAmount, p, l)
	assert.True(t, ok)
	assert.Empty(t, tl.failed)
	require.Len(t, tl.warnings, 1)
	assert.Contains(t, tl.warnings[0], "maximum")

	p.CapitalRequested = 100_000
	ok, tl = run(checkFundingAmount, p, l)
	assert.True(t, ok)
	assert.Empty(t, tl.warnings)

	l.MinFundingSize, l.MaxFundingSize = ptrFloat64(500_000), ptrFloat64(250_000)
	p.CapitalRequested = 300_000
	ok, tl = run(checkFundingAmount, p, l)
	assert.False(t, ok)
	require.Len(t, tl.failed, 1)
	assert.Contains(t, tl.failed[0], "minimum")
	require.Len(t, tl.warnings, 1)
	assert.Contains(t, tl.warnings[0], "maximum")

	l.MinFundingSize, l.MaxFundingSize = nil, nil
	ok, tl = run(checkFundingAmount, p, l)
	assert.True(t, ok)
	require.Len(t, tl.passed, 1)
	assert.Contains(t, tl.passed[0], "No funding size limits")
}

func TestCheckStateRestriction(t *testing.T) {
	tests := []struct {
		name       string
		restricted *string
		state      string
		want       bool
	}{
		{"restricted", ptrString("CA,NY"), "CA", false},
		{"case and spaces", ptrString(" ca , ny "), " ny", false},
		{"not restricted", ptrString("CA,NY"), "TX", true},
		{"no list", nil, "CA", true},
		{"blank list", ptrString("  "), "CA", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := acmeLender()
			l.RestrictedStates = tt.restricted
			p := strongProfile()
			p.State = tt.state
			ok, tl := run(checkStateRestriction, p, l)
			assert.Equal(t, tt.want, ok)
			if !tt.want {
				assert.Contains(t, tl.failed[0], "restricted")
			}
		})
	}
}

func TestCheckIndustryRestriction(t *testing.T) {
	tests := []struct {
		name       string
		restricted *string
		purpose    string
		entity     string
		industry   string
		want       bool
	}{
		{"no restrictions", nil, "Cannabis", "LLC", "Cannabis", true},
		{"industry match", ptrString("Cannabis, Firearms"), "Expansion", "LLC", "cannabis", false},
		{"purpose substring", ptrString("Real estate investment, gambling"), "real estate", "LLC", "", false},
		{"entity substring", ptrString("Non-profit organizations"), "Payroll", "Non-Profit", "", false},
		{"partial word matches", ptrString("Trucking"), "truck", "Corp", "", false},
		{"no match", ptrString("Cannabis, Firearms"), "Inventory", "LLC", "Retail", true},
		{"empty industry skipped", ptrString("Cannabis"), "Inventory", "LLC", "", true},
		{"all terms empty", ptrString("cannabis, firearms"), "", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := acmeLender()
			l.RestrictedIndustries = tt.restricted
			p := strongProfile()
			p.LoanPurpose = tt.purpose
			p.EntityType = tt.entity
			p.Industry = tt.industry
			ok, _ := run(checkIndustryRestriction, p, l)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestCheckFinancialHistory_Bankruptcy(t *testing.T) {
	tests := []struct {
		name         string
		allows       *bool
		bankrupt     *bool
		want         bool
		wantWarnings int
	}{
		{"none", ptrBool(false), ptrBool(false), true, 0},
		{"unknown client flag", nil, nil, true, 0},
		{"present, lender refuses", ptrBool(false), ptrBool(true), false, 0},
		{"present, lender unknown", nil, ptrBool(true), false, 0},
		{"present, lender allows", ptrBool(true), ptrBool(true), true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := acmeLender()
			l.AllowsBankruptcies = tt.allows
			p := strongProfile()
			p.BankruptcyLast3Years = tt.bankrupt
			ok, tl := run(checkFinancialHistory, p, l)
			assert.Equal(t, tt.want, ok)
			assert.Len(t, tl.warnings, tt.wantWarnings)
		})
	}
}

func TestCheckFinancialHistory_WarningsNeverFail(t *testing.T) {
	p := strongProfile()
	p.HasTaxLiens = ptrBool(true)
	p.HasActiveJudgements = ptrBool(true)
	p.HasDefaultedMCA = ptrBool(true)
	p.MCAWasSatisfied = ptrBool(false)
	p.HomeBased = true

	ok, tl := run(checkFinancialHistory, p, acmeLender())
	assert.True(t, ok)
	assert.Empty(t, tl.failed)
	assert.Len(t, tl.warnings, 4)

	p.MCAWasSatisfied = ptrBool(true)
	_, tl = run(checkFinancialHistory, p, acmeLender())
	assert.Len(t, tl.warnings, 3)
}

func TestCheckExistingPositions(t *testing.T) {
	l := acmeLender()
	p := strongProfile()
	p.HasExistingLoans = true

	ok, tl := run(checkExistingPositions, p, l)
	assert.True(t, ok)
	assert.Empty(t, tl.warnings)

	l.MaxPositions = ptrFloat64(2)
	ok, tl = run(checkExistingPositions, p, l)
	assert.True(t, ok)
	require.Len(t, tl.warnings, 1)
	assert.Contains(t, tl.warnings[0], "2")

	p.HasExistingLoans = false
	ok, tl = run(checkExistingPositions, p, l)
	assert.True(t, ok)
	assert.Empty(t, tl.warnings)
	assert.Len(t, tl.passed, 1)
}
