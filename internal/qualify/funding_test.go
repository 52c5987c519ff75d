package qualify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/lender-qualify/internal/model"
)

func TestFundingPotential(t *testing.T) {
	tests := []struct {
		name      string
		revenue   float64
		requested float64
		results   []model.QualificationResult
		want      float64
		basis     model.FundingBasis
		qualified int
	}{
		{
			name:    "empty evaluation",
			revenue: 1_000_000,
			want:    0,
			basis:   model.FundingBasisNone,
		},
		{
			name:    "max of lender ceilings under revenue cap",
			revenue: 1_000_000,
			results: []model.QualificationResult{
				{IsQualified: true, MaxFunding: ptrFloat64(250_000)},
				{IsQualified: true, MaxFunding: ptrFloat64(500_000)},
				{IsQualified: false, MaxFunding: ptrFloat64(1_000_000)},
			},
			want:      500_000,
			basis:     model.FundingBasisQualified,
			qualified: 2,
		},
		{
			name:    "revenue cap binds",
			revenue: 100_000,
			results: []model.QualificationResult{
				{IsQualified: true, MaxFunding: ptrFloat64(500_000)},
			},
			want:      150_000,
			basis:     model.FundingBasisQualified,
			qualified: 1,
		},
		{
			name:    "unpublished max uses sentinel",
			revenue: 10_000_000,
			results: []model.QualificationResult{
				{IsQualified: true},
			},
			want:      5_000_000,
			basis:     model.FundingBasisQualified,
			qualified: 1,
		},
		{
			name:      "none qualified falls back to requested",
			revenue:   400_000,
			requested: 75_000,
			results: []model.QualificationResult{
				{IsQualified: false, MaxFunding: ptrFloat64(1_000_000)},
			},
			want:  75_000,
			basis: model.FundingBasisRequested,
		},
		{
			name:      "fallback capped by revenue",
			revenue:   20_000,
			requested: 75_000,
			results: []model.QualificationResult{
				{IsQualified: false},
			},
			want:  30_000,
			basis: model.FundingBasisRequested,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := model.ClientProfile{AvgAnnualRevenue: tt.revenue, CapitalRequested: tt.requested}
			fp := FundingPotential(&p, tt.results, DefaultFundingPolicy())
			assert.InDelta(t, tt.want, fp.Estimate, 0.001)
			assert.Equal(t, tt.basis, fp.Basis)
			assert.Equal(t, tt.qualified, fp.QualifiedLenders)
			assert.InDelta(t, tt.revenue*1.5, fp.RevenueCap, 0.001)
		})
	}
}

func TestFundingPotential_CustomPolicy(t *testing.T) {
	p := model.ClientProfile{AvgAnnualRevenue: 1_000_000}
	results := []model.QualificationResult{{IsQualified: true}}

	fp := FundingPotential(&p, results, FundingPolicy{RevenueMultiplier: 0.5, UnlimitedCeiling: 2_000_000})
	assert.InDelta(t, 500_000, fp.Estimate, 0.001)

	fp = FundingPotential(&p, results, FundingPolicy{RevenueMultiplier: 3, UnlimitedCeiling: 2_000_000})
	assert.InDelta(t, 2_000_000, fp.Estimate, 0.001)
}
