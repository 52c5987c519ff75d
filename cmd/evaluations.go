package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lender-qualify/internal/model"
	"github.com/sells-group/lender-qualify/internal/store"
)

var (
	evalCompany string
	evalLimit   int
	evalOffset  int
	evalFormat  string
)

var evaluationsCmd = &cobra.Command{
	Use:   "evaluations",
	Short: "Browse saved qualification runs",
}

var evaluationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved evaluations, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		evals, err := st.ListEvaluations(ctx, store.EvaluationFilter{
			Company: evalCompany,
			Limit:   evalLimit,
			Offset:  evalOffset,
		})
		if err != nil {
			return eris.Wrap(err, "list evaluations")
		}

		out := cmd.OutOrStdout()
		if evalFormat == "json" {
			return writeJSON(out, evals)
		}
		if len(evals) == 0 {
			fmt.Fprintln(out, "No evaluations found.")
			return nil
		}
		return formatEvaluationsTable(out, evals)
	},
}

var evaluationsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one saved evaluation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		ev, err := st.GetEvaluation(ctx, args[0])
		if err != nil {
			return eris.Wrapf(err, "get evaluation %s", args[0])
		}

		out := cmd.OutOrStdout()
		if evalFormat == "json" {
			return writeJSON(out, ev)
		}
		return formatReportsTable(out, []profileReport{{
			EvaluationID:     ev.ID,
			Name:             ev.ClientName,
			Company:          ev.Company,
			Results:          ev.Results,
			QualifiedCount:   ev.QualifiedCount,
			FundingPotential: ev.Potential,
		}})
	},
}

func formatEvaluationsTable(w io.Writer, evals []model.Evaluation) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCLIENT\tCOMPANY\tQUALIFIED\tESTIMATE\tCREATED")
	for _, e := range evals {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			e.ID,
			e.ClientName,
			e.Company,
			e.QualifiedCount,
			printer.Sprintf("$%.0f", e.Potential.Estimate),
			e.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	evaluationsListCmd.Flags().StringVar(&evalCompany, "company", "", "filter by company name")
	evaluationsListCmd.Flags().IntVar(&evalLimit, "limit", 20, "max evaluations to show")
	evaluationsListCmd.Flags().IntVar(&evalOffset, "offset", 0, "evaluations to skip")
	evaluationsCmd.PersistentFlags().StringVar(&evalFormat, "format", "table", "output format: table or json")
	evaluationsCmd.AddCommand(evaluationsListCmd, evaluationsGetCmd)
	rootCmd.AddCommand(evaluationsCmd)
}
