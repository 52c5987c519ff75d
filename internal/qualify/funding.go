package qualify

import (
	"github.com/shopspring/decimal"

	"github.com/sells-group/lender-qualify/internal/model"
)

// FundingPolicy holds the advisory funding-potential constants.
type FundingPolicy struct {
	// RevenueMultiplier caps any estimate at annual revenue times this value.
	RevenueMultiplier float64
	// UnlimitedCeiling stands in for lenders that publish no maximum.
	UnlimitedCeiling float64
}

// DefaultFundingPolicy returns the 1.5x revenue cap and $5M open-ended ceiling.
func DefaultFundingPolicy() FundingPolicy {
	return FundingPolicy{
		RevenueMultiplier: 1.5,
		UnlimitedCeiling:  5_000_000,
	}
}

// FundingPotential estimates the most capital the client could raise from
// the lenders they qualify for. With results but no qualified lender it falls
// back to the requested amount, capped by revenue.
func FundingPotential(p *model.ClientProfile, results []model.QualificationResult, policy FundingPolicy) model.FundingPotential {
	revenueCap := decimal.NewFromFloat(p.AvgAnnualRevenue).Mul(decimal.NewFromFloat(policy.RevenueMultiplier))
	unlimited := decimal.NewFromFloat(policy.UnlimitedCeiling)

	fp := model.FundingPotential{
		RevenueCap: revenueCap.InexactFloat64(),
		Basis:      model.FundingBasisNone,
	}
	if len(results) == 0 {
		return fp
	}

	var best decimal.Decimal
	for _, r := range results {
		if !r.IsQualified {
			continue
		}
		fp.QualifiedLenders++

		ceiling := unlimited
		if r.MaxFunding != nil {
			ceiling = decimal.NewFromFloat(*r.MaxFunding)
		}
		best = decimal.Max(best, decimal.Min(ceiling, revenueCap))
	}

	if fp.QualifiedLenders > 0 {
		fp.Estimate = best.InexactFloat64()
		fp.Basis = model.FundingBasisQualified
		return fp
	}

	requested := decimal.NewFromFloat(p.CapitalRequested)
	fp.Estimate = decimal.Min(requested, revenueCap).InexactFloat64()
	fp.Basis = model.FundingBasisRequested
	return fp
}
