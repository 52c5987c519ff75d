package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lender-qualify/internal/criteria"
	"github.com/sells-group/lender-qualify/internal/model"
)

var (
	catalogSource string
	catalogFormat string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and refresh the lender catalog",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		if catalogSource != "" {
			cfg.Catalog.Source = catalogSource
		}
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print every lender in the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initCatalog(ctx, cfg, nil)
		if err != nil {
			return err
		}
		defer env.Close()

		lenders, err := env.Service.Load(ctx)
		if err != nil {
			return eris.Wrap(err, "catalog: load")
		}

		return writeCatalog(cmd.OutOrStdout(), lenders, catalogFormat)
	},
}

var catalogRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Reload the catalog from its source and record a snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		env, err := initCatalog(ctx, cfg, st)
		if err != nil {
			return err
		}
		defer env.Close()

		lenders, err := env.Service.Refresh(ctx)
		if err != nil {
			return eris.Wrap(err, "catalog: refresh")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d lenders from %s\n", len(lenders), cfg.Catalog.Source)
		return nil
	},
}

var catalogLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the most recent catalog snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		snap, err := st.LatestCatalogSnapshot(ctx)
		if err != nil {
			return eris.Wrap(err, "catalog: latest snapshot")
		}

		out := cmd.OutOrStdout()
		formatSnapshot(out, snap)
		return writeCatalog(out, snap.Lenders, catalogFormat)
	},
}

func writeCatalog(w io.Writer, lenders []model.LenderCriteria, format string) error {
	switch format {
	case "", "table":
		return formatCatalogTable(w, lenders)
	case "json":
		data, err := criteria.MarshalCatalog(lenders)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "csv":
		// Same column layout as the matrix, so the output can be loaded back.
		return csv.NewWriter(w).WriteAll(criteria.EncodeRows(lenders))
	default:
		return eris.Errorf("unknown format %q (want table, json or csv)", format)
	}
}

func formatCatalogTable(w io.Writer, lenders []model.LenderCriteria) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LENDER\tSPECIALTY\tMIN FICO\tTIB (MO)\tMIN FUNDING\tMAX FUNDING\tRESTRICTED STATES")
	for _, l := range lenders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.LenderName,
			text(l.Specialty),
			number(l.MinFICO),
			number(l.TimeInBusinessMonths),
			formatMoney(l.MinFundingSize),
			formatMoney(l.MaxFundingSize),
			text(l.RestrictedStates),
		)
	}
	return tw.Flush()
}

func formatSnapshot(w io.Writer, snap *model.CatalogSnapshot) {
	fmt.Fprintf(w, "Snapshot:  %s\n", snap.ID)
	fmt.Fprintf(w, "Source:    %s\n", snap.Source)
	fmt.Fprintf(w, "Loaded:    %s\n", snap.LoadedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Lenders:   %d (%d rows, %d skipped)\n\n", len(snap.Lenders), snap.RowCount, snap.SkippedRows)
}

func text(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func number(v *float64) string {
	if v == nil {
		return "-"
	}
	return printer.Sprintf("%.0f", *v)
}

func init() {
	catalogCmd.PersistentFlags().StringVar(&catalogSource, "catalog", "", "lender matrix path or URL (overrides catalog.source)")
	catalogCmd.PersistentFlags().StringVar(&catalogFormat, "format", "table", "output format: table, json or csv")
	catalogCmd.AddCommand(catalogShowCmd, catalogRefreshCmd, catalogLatestCmd)
	rootCmd.AddCommand(catalogCmd)
}
