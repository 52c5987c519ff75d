package qualify

import (
	"fmt"
	"strings"

	"github.com/sells-group/lender-qualify/internal/model"
)

// Baselines applied when a lender publishes no threshold of its own. Only
// FICO and revenue have one; other criteria pass when unpublished.
const (
	baselineMinFICO           = 500
	baselineMinMonthlyRevenue = 10_000
)

// tally collects explanation strings in evaluator order.
type tally struct {
	passed   []string
	failed   []string
	warnings []string
}

func (t *tally) pass(format string, args ...any) bool {
	t.passed = append(t.passed, fmt.Sprintf(format, args...))
	return true
}

func (t *tally) fail(format string, args ...any) bool {
	t.failed = append(t.failed, fmt.Sprintf(format, args...))
	return false
}

func (t *tally) warn(format string, args ...any) {
	t.warnings = append(t.warnings, fmt.Sprintf(format, args...))
}

// evaluator inspects one dimension. It returns false only when the lender's
// rules disqualify the client.
type evaluator func(ec *EvaluationContext, t *tally) bool

// evaluators run in this order for every lender, without short-circuiting.
var evaluators = []evaluator{
	checkFICO,
	checkTimeInBusiness,
	checkMonthlyRevenue,
	checkDepositCount,
	checkFundingAmount,
	checkStateRestriction,
	checkIndustryRestriction,
	checkFinancialHistory,
	checkExistingPositions,
}

func checkFICO(ec *EvaluationContext, t *tally) bool {
	score := ec.CreditScore
	minimum := ec.Lender.MinFICO
	if minimum == nil {
		if score < baselineMinFICO {
			return t.fail("Credit score %d is below the %d baseline (lender publishes no minimum)", score, baselineMinFICO)
		}
		return t.pass("Credit score %d meets the %d baseline (lender publishes no minimum)", score, baselineMinFICO)
	}
	if float64(score) >= *minimum {
		return t.pass("Credit score %d meets minimum FICO %s", score, count(*minimum))
	}
	return t.fail("Credit score %d is below minimum FICO %s", score, count(*minimum))
}

func checkTimeInBusiness(ec *EvaluationContext, t *tally) bool {
	minimum := ec.Lender.TimeInBusinessMonths
	if minimum == nil {
		return t.pass("No time-in-business requirement")
	}
	if float64(ec.BusinessAgeMonths) >= *minimum {
		return t.pass("%d months in business meets the %s month minimum", ec.BusinessAgeMonths, count(*minimum))
	}
	return t.fail("%d months in business is below the %s month minimum", ec.BusinessAgeMonths, count(*minimum))
}

func checkMonthlyRevenue(ec *EvaluationContext, t *tally) bool {
	deposits := ec.Profile.AvgMonthlyDeposits
	minimum := ec.Lender.AverageMonthlyRevenue
	if minimum == nil {
		if deposits < baselineMinMonthlyRevenue {
			return t.fail("Monthly deposits of %s are below the %s baseline (lender publishes no minimum)",
				dollars(deposits), dollars(baselineMinMonthlyRevenue))
		}
		return t.pass("Monthly deposits of %s meet the %s baseline (lender publishes no minimum)",
			dollars(deposits), dollars(baselineMinMonthlyRevenue))
	}
	if deposits >= *minimum {
		return t.pass("Monthly deposits of %s meet the %s monthly revenue minimum", dollars(deposits), dollars(*minimum))
	}
	return t.fail("Monthly deposits of %s are below the %s monthly revenue minimum", dollars(deposits), dollars(*minimum))
}

// checkDepositCount skips rather than fails when the client never reported
// a deposit count.
func checkDepositCount(ec *EvaluationContext, t *tally) bool {
	minimum := ec.Lender.MonthlyDepositsRequired
	if minimum == nil {
		return t.pass("No monthly deposit count requirement")
	}
	got := ec.Profile.AvgMonthlyDepositCount
	if got == nil {
		return t.pass("Deposit count not provided; %s deposits/month requirement not evaluated", count(*minimum))
	}
	if float64(*got) >= *minimum {
		return t.pass("%d deposits/month meets the %s minimum", *got, count(*minimum))
	}
	return t.fail("%d deposits/month is below the %s minimum", *got, count(*minimum))
}

// checkFundingAmount fails below the lender minimum; exceeding the maximum
// only warns. Both bounds are checked, so a row with min > max can do both.
func checkFundingAmount(ec *EvaluationContext, t *tally) bool {
	requested := ec.Profile.CapitalRequested
	minimum, maximum := ec.Lender.MinFundingSize, ec.Lender.MaxFundingSize
	if minimum == nil && maximum == nil {
		return t.pass("No funding size limits published")
	}

	if maximum != nil && requested > *maximum {
		t.warn("Requested %s exceeds the %s maximum funding size; expect a reduced offer", dollars(requested), dollars(*maximum))
	}
	if minimum != nil && requested < *minimum {
		return t.fail("Requested %s is below the %s minimum funding size", dollars(requested), dollars(*minimum))
	}
	return t.pass("Requested %s is within the lender's funding range", dollars(requested))
}

func checkStateRestriction(ec *EvaluationContext, t *tally) bool {
	restricted := ec.Lender.RestrictedStates
	if restricted == nil || strings.TrimSpace(*restricted) == "" {
		return t.pass("No state restrictions")
	}
	state := strings.ToUpper(strings.TrimSpace(ec.Profile.State))
	for _, s := range strings.Split(*restricted, ",") {
		if strings.ToUpper(strings.TrimSpace(s)) == state {
			return t.fail("State %s is restricted by this lender", state)
		}
	}
	return t.pass("State %s is not restricted", state)
}

// checkIndustryRestriction is a plain substring match of the client's loan
// purpose, entity type and industry against the restricted-industries text.
func checkIndustryRestriction(ec *EvaluationContext, t *tally) bool {
	restricted := ec.Lender.RestrictedIndustries
	if restricted == nil || *restricted == "" {
		return t.pass("No industry restrictions")
	}
	list := strings.ToLower(*restricted)
	for _, term := range []string{ec.Profile.LoanPurpose, ec.Profile.EntityType, ec.Profile.Industry} {
		term = strings.ToLower(term)
		if term == "" {
			continue
		}
		if strings.Contains(list, term) {
			return t.fail("%q matches restricted industries (%s)", term, *restricted)
		}
	}
	return t.pass("Industry not in restricted list")
}

// checkFinancialHistory passes or fails on bankruptcy alone. Liens,
// judgements, unsatisfied MCA defaults and home-based operation only warn.
func checkFinancialHistory(ec *EvaluationContext, t *tally) bool {
	p := ec.Profile
	ok := true

	allowed := model.Flag(ec.Lender.AllowsBankruptcies)
	switch {
	case !model.Flag(p.BankruptcyLast3Years):
		t.pass("No bankruptcy or foreclosure in the last 3 years")
	case allowed:
		t.warn("Bankruptcy or foreclosure in the last 3 years; lender allows bankruptcies")
	default:
		ok = t.fail("Bankruptcy or foreclosure in the last 3 years; lender does not accept bankruptcies")
	}

	if model.Flag(p.HasTaxLiens) {
		t.warn("Client has tax liens")
	}
	if model.Flag(p.HasActiveJudgements) {
		t.warn("Client has active judgements")
	}
	if model.Flag(p.HasDefaultedMCA) && !model.Flag(p.MCAWasSatisfied) {
		t.warn("Client defaulted on an MCA that was not satisfied")
	}
	if p.HomeBased {
		t.warn("Home-based business")
	}
	return ok
}

// checkExistingPositions cannot enforce the lender's position limit because
// profiles do not record a position count. It always passes.
func checkExistingPositions(ec *EvaluationContext, t *tally) bool {
	maximum := ec.Lender.MaxPositions
	if maximum == nil {
		return t.pass("No position limit")
	}
	if ec.Profile.HasExistingLoans {
		t.warn("Lender allows at most %s existing positions; verify the client's position count", count(*maximum))
		return true
	}
	return t.pass("No existing loans reported (limit %s positions)", count(*maximum))
}
