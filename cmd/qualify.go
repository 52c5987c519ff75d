package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/lender-qualify/internal/catalog"
	"github.com/sells-group/lender-qualify/internal/config"
	"github.com/sells-group/lender-qualify/internal/model"
	"github.com/sells-group/lender-qualify/internal/qualify"
	"github.com/sells-group/lender-qualify/internal/store"
)

var (
	qualifyProfiles      []string
	qualifyCatalog       string
	qualifyFormat        string
	qualifyQualifiedOnly bool
	qualifySave          bool
)

var printer = message.NewPrinter(language.English)

// profileReport is the outcome of qualifying one client.
type profileReport struct {
	EvaluationID     string                      `json:"evaluation_id,omitempty"`
	Name             string                      `json:"name"`
	Company          string                      `json:"company"`
	Results          []model.QualificationResult `json:"results"`
	QualifiedCount   int                         `json:"qualified_count"`
	FundingPotential model.FundingPotential      `json:"funding_potential"`
}

type qualifyOptions struct {
	QualifiedOnly bool
	Save          bool
	Now           time.Time
}

var qualifyCmd = &cobra.Command{
	Use:   "qualify",
	Short: "Evaluate client profiles against the lender catalog",
	Long:  "Evaluates one or more client profiles (JSON or YAML files) against every lender in the catalog and prints ranked results with a funding-potential estimate.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if qualifyCatalog != "" {
			cfg.Catalog.Source = qualifyCatalog
		}
		if err := cfg.Validate("qualify"); err != nil {
			return err
		}

		reports, err := runQualify(cmd.Context(), cfg, qualifyProfiles, qualifyOptions{
			QualifiedOnly: qualifyQualifiedOnly,
			Save:          qualifySave,
			Now:           time.Now(),
		})
		if err != nil {
			return err
		}

		return writeReports(cmd.OutOrStdout(), reports, qualifyFormat)
	},
}

// runQualify evaluates every profile concurrently. Reports come back in the
// order the profiles were given.
func runQualify(ctx context.Context, c *config.Config, paths []string, opts qualifyOptions) ([]profileReport, error) {
	if len(paths) == 0 {
		return nil, eris.New("qualify: at least one --profile is required")
	}

	profiles := make([]model.ClientProfile, len(paths))
	for i, path := range paths {
		p, err := loadProfile(path, opts.Now)
		if err != nil {
			return nil, err
		}
		profiles[i] = p
	}

	var (
		st        store.Store
		snapshots catalog.SnapshotRecorder
	)
	if opts.Save {
		s, err := initStore(ctx, c)
		if err != nil {
			return nil, err
		}
		defer s.Close() //nolint:errcheck
		st, snapshots = s, s
	}

	env, err := initCatalog(ctx, c, snapshots)
	if err != nil {
		return nil, err
	}
	defer env.Close()

	lenders, err := env.Service.Load(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "qualify: load catalog")
	}

	policy := fundingPolicy(c)
	reports := make([]profileReport, len(profiles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.Qualify.Workers, 1))
	for i := range profiles {
		i := i
		g.Go(func() error {
			p := &profiles[i]
			results, err := qualify.EvaluateAllConcurrent(gctx, p, lenders, c.Qualify.Workers)
			if err != nil {
				return eris.Wrapf(err, "qualify: evaluate %s", p.Name)
			}
			potential := qualify.FundingPotential(p, results, policy)
			qualified := qualify.Qualified(results)
			if opts.QualifiedOnly {
				results = qualified
			}
			reports[i] = profileReport{
				Name:             p.Name,
				Company:          p.Company,
				Results:          results,
				QualifiedCount:   len(qualified),
				FundingPotential: potential,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if st != nil {
		for i := range reports {
			ev := &model.Evaluation{
				Profile:        profiles[i],
				Results:        reports[i].Results,
				Potential:      reports[i].FundingPotential,
				QualifiedCount: reports[i].QualifiedCount,
			}
			if err := st.SaveEvaluation(ctx, ev); err != nil {
				return nil, eris.Wrapf(err, "qualify: save evaluation for %s", profiles[i].Name)
			}
			reports[i].EvaluationID = ev.ID
		}
	}

	zap.L().Info("qualification complete",
		zap.Int("profiles", len(reports)),
		zap.Int("lenders", len(lenders)),
	)
	return reports, nil
}

func writeReports(w io.Writer, reports []profileReport, format string) error {
	switch format {
	case "", "table":
		return formatReportsTable(w, reports)
	case "json":
		return writeJSON(w, reports)
	case "yaml":
		out, err := toYAML(reports)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	case "csv":
		return formatReportsCSV(w, reports)
	default:
		return eris.Errorf("unknown format %q (want table, json, yaml or csv)", format)
	}
}

func formatReportsTable(w io.Writer, reports []profileReport) error {
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%s)\n", r.Name, r.Company)
		if r.EvaluationID != "" {
			fmt.Fprintf(w, "Evaluation: %s\n", r.EvaluationID)
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "LENDER\tQUALIFIED\tSCORE\tMAX FUNDING\tFAILED")
		for _, res := range r.Results {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
				res.LenderName,
				yesNo(res.IsQualified),
				res.MatchScore,
				formatMoney(res.MaxFunding),
				strings.Join(res.FailedCriteria, "; "),
			)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		fp := r.FundingPotential
		fmt.Fprintf(w, "Qualified: %d of %d\n", r.QualifiedCount, len(r.Results))
		fmt.Fprintf(w, "Funding potential: %s (%s, revenue cap %s)\n",
			printer.Sprintf("$%.0f", fp.Estimate), fp.Basis, printer.Sprintf("$%.0f", fp.RevenueCap))
	}
	return nil
}

var reportCSVHeader = []string{
	"client", "company", "lender", "qualified", "match_score",
	"min_funding", "max_funding", "failed_criteria", "warnings",
}

func formatReportsCSV(w io.Writer, reports []profileReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportCSVHeader); err != nil {
		return err
	}
	for _, r := range reports {
		for _, res := range r.Results {
			if err := cw.Write([]string{
				r.Name,
				r.Company,
				res.LenderName,
				strconv.FormatBool(res.IsQualified),
				strconv.Itoa(res.MatchScore),
				formatAmount(res.MinFunding),
				formatAmount(res.MaxFunding),
				strings.Join(res.FailedCriteria, "; "),
				strings.Join(res.Warnings, "; "),
			}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// formatMoney renders an optional amount for humans. Nil means no limit.
func formatMoney(v *float64) string {
	if v == nil {
		return "-"
	}
	return printer.Sprintf("$%.0f", *v)
}

func formatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func init() {
	qualifyCmd.Flags().StringArrayVar(&qualifyProfiles, "profile", nil, "client profile file (JSON or YAML); repeatable")
	qualifyCmd.Flags().StringVar(&qualifyCatalog, "catalog", "", "lender matrix path or URL (overrides catalog.source)")
	qualifyCmd.Flags().StringVar(&qualifyFormat, "format", "table", "output format: table, json, yaml or csv")
	qualifyCmd.Flags().BoolVar(&qualifyQualifiedOnly, "qualified-only", false, "only print lenders the client qualifies for")
	qualifyCmd.Flags().BoolVar(&qualifySave, "save", false, "persist each evaluation to the store")
	rootCmd.AddCommand(qualifyCmd)
}
