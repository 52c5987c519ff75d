package qualify

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/lender-qualify/internal/model"
)

// Evaluate produces the verdict for one (client, lender) pair as of now.
func Evaluate(p *model.ClientProfile, l *model.LenderCriteria) model.QualificationResult {
	return EvaluateAt(p, l, time.Now())
}

// EvaluateAt is Evaluate with an explicit clock.
func EvaluateAt(p *model.ClientProfile, l *model.LenderCriteria, now time.Time) model.QualificationResult {
	return evaluate(NewEvaluationContext(p, l, now))
}

func evaluate(ec *EvaluationContext) model.QualificationResult {
	t := &tally{
		passed:   []string{},
		failed:   []string{},
		warnings: []string{},
	}

	qualified := true
	for _, check := range evaluators {
		if !check(ec, t) {
			qualified = false
		}
	}

	return model.QualificationResult{
		LenderName:      ec.Lender.LenderName,
		Specialty:       ec.Lender.Specialty,
		IsQualified:     qualified,
		MatchScore:      matchScore(len(t.passed), len(t.failed)),
		MatchedCriteria: t.passed,
		FailedCriteria:  t.failed,
		Warnings:        t.warnings,
		MinFunding:      ec.Lender.MinFundingSize,
		MaxFunding:      ec.Lender.MaxFundingSize,
		PaymentType:     ec.Lender.PaymentType,
	}
}

// matchScore is the rounded percentage of evaluated criteria that passed.
// Warnings are not counted.
func matchScore(passed, failed int) int {
	total := passed + failed
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(passed) / float64(total)))
}

// EvaluateAll evaluates every lender in catalog order and returns the
// results ranked by SortResults.
func EvaluateAll(p *model.ClientProfile, lenders []model.LenderCriteria) []model.QualificationResult {
	return EvaluateAllAt(p, lenders, time.Now())
}

// EvaluateAllAt is EvaluateAll with an explicit clock.
func EvaluateAllAt(p *model.ClientProfile, lenders []model.LenderCriteria, now time.Time) []model.QualificationResult {
	results := make([]model.QualificationResult, len(lenders))
	for i := range lenders {
		results[i] = EvaluateAt(p, &lenders[i], now)
	}
	SortResults(results)
	return results
}

// EvaluateAllConcurrent spreads the per-lender evaluations over up to
// workers goroutines. Results land at their catalog index before sorting, so
// the output matches EvaluateAll exactly.
func EvaluateAllConcurrent(ctx context.Context, p *model.ClientProfile, lenders []model.LenderCriteria, workers int) ([]model.QualificationResult, error) {
	now := time.Now()
	results := make([]model.QualificationResult, len(lenders))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := range lenders {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return eris.Wrap(err, "qualify: evaluation cancelled")
			}
			results[i] = EvaluateAt(p, &lenders[i], now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	SortResults(results)
	return results, nil
}

// SortResults orders qualified lenders first, then by descending match
// score. Ties keep catalog order.
func SortResults(results []model.QualificationResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.IsQualified != b.IsQualified {
			return a.IsQualified
		}
		return a.MatchScore > b.MatchScore
	})
}

// Qualified returns the qualified subset, preserving order.
func Qualified(results []model.QualificationResult) []model.QualificationResult {
	out := make([]model.QualificationResult, 0, len(results))
	for _, r := range results {
		if r.IsQualified {
			out = append(out, r)
		}
	}
	return out
}
