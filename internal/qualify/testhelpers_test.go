package qualify

import (
	"time"

	"github.com/sells-group/lender-qualify/internal/model"
)

var testNow = time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)

func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrInt(v int) *int             { return &v }

// strongProfile passes every criterion of acmeLender.
func strongProfile() model.ClientProfile {
	return model.ClientProfile{
		Name:               "Dana Ortiz",
		Company:            "Ortiz Landscaping LLC",
		State:              "TX",
		City:               "Austin",
		EntityType:         "LLC",
		Industry:           "Landscaping",
		EmployeeCount:      12,
		CapitalRequested:   100_000,
		AvgMonthlyDeposits: 60_000,
		AvgAnnualRevenue:   720_000,
		BusinessStartDate:  "2020-03-01",
		CreditScore:        model.Credit700Plus,
		LoanPurpose:        "Equipment purchase",
	}
}

// acmeLender is the MCA lender from the sample matrix row.
func acmeLender() model.LenderCriteria {
	return model.LenderCriteria{
		LenderName:            "Acme Capital",
		Specialty:             ptrString("MCA"),
		MinFICO:               ptrFloat64(550),
		TimeInBusinessMonths:  ptrFloat64(6),
		AverageMonthlyRevenue: ptrFloat64(10000),
		PreferredIndustries:   ptrString("Retail"),
		RestrictedStates:      ptrString("CA,NY"),
		AllowsBankruptcies:    ptrBool(false),
		MinFundingSize:        ptrFloat64(5000),
		MaxFundingSize:        ptrFloat64(250000),
	}
}

func run(check evaluator, p model.ClientProfile, l model.LenderCriteria) (bool, *tally) {
	t := &tally{}
	ok := check(NewEvaluationContext(&p, &l, testNow), t)
	return ok, t
}
