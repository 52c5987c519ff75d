// Package qualify evaluates a client profile against the lender catalog and
// ranks the lenders the client qualifies for.
package qualify

import (
	"time"

	"github.com/sells-group/lender-qualify/internal/model"
)

// EvaluationContext bundles the values derived once per (client, lender) pair.
type EvaluationContext struct {
	Profile           *model.ClientProfile
	Lender            *model.LenderCriteria
	BusinessAgeMonths int
	CreditScore       int
}

// NewEvaluationContext derives business age and the effective credit score
// for one pair, relative to now.
func NewEvaluationContext(p *model.ClientProfile, l *model.LenderCriteria, now time.Time) *EvaluationContext {
	return &EvaluationContext{
		Profile:           p,
		Lender:            l,
		BusinessAgeMonths: BusinessAgeMonths(p, now),
		CreditScore:       NumericCreditScore(p),
	}
}

// BusinessAgeMonths returns the whole months between the business start date
// and now. Future or unparseable start dates yield 0.
func BusinessAgeMonths(p *model.ClientProfile, now time.Time) int {
	start, err := p.StartDate()
	if err != nil {
		return 0
	}
	months := (now.Year()-start.Year())*12 + int(now.Month()) - int(start.Month())
	if now.Day() < start.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// NumericCreditScore prefers the exact score and falls back to the floor of
// the reported bucket.
func NumericCreditScore(p *model.ClientProfile) int {
	if p.ExactCreditScore != nil {
		return *p.ExactCreditScore
	}
	return p.CreditScore.Floor()
}
