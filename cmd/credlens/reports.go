package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/credlens/credlens/internal/config"
	"github.com/credlens/credlens/internal/render"
)

func reportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Browse saved analysis reports",
	}

	cmd.AddCommand(reportsListCmd())
	cmd.AddCommand(reportsShowCmd())

	return cmd
}

func reportsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved reports, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			applicant, _ := cmd.Flags().GetString("applicant")
			limit, _ := cmd.Flags().GetInt("limit")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			store, cleanup, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			reports, err := store.ListReports(ctx, applicant, limit)
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				fmt.Println("No saved reports.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tAPPLICANT\tGENERATED\tFOIR\tSTATUS\tCIBIL\tRISK")
			for _, r := range reports {
				fmt.Fprintf(w, "%d\t%s\t%s\t%.2f%%\t%s\t%d\t%s\n",
					r.ID,
					r.Applicant,
					r.GeneratedAt.Format("2006-01-02 15:04"),
					r.Report.FOIR.Percentage,
					r.Report.FOIR.Status,
					r.Report.CIBIL.Score,
					r.Report.CIBIL.RiskLevel)
			}
			return w.Flush()
		},
	}

	cmd.Flags().String("applicant", "", "filter by applicant")
	cmd.Flags().Int("limit", 50, "maximum reports to list")

	return cmd
}

func reportsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one saved report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			asJSON, _ := cmd.Flags().GetBool("json")

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid report id %q: %w", args[0], err)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			store, cleanup, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			saved, err := store.GetReport(ctx, id)
			if err != nil {
				return err
			}

			if asJSON {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(saved.Report)
			}

			fmt.Println(render.NewCLIFormatter().FormatReport(&saved.Report))
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "emit the report as JSON")

	return cmd
}
