package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/aura-cli/internal/export"
	"github.com/sells-group/aura-cli/internal/model"
)

var farmsCmd = &cobra.Command{
	Use:   "farms",
	Short: "Inspect and refresh synthetic farm records",
	Long:  "Commands for listing, showing, refreshing, mapping and exporting farm records generated from land parcels.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		return cfg.Validate("cli")
	},
}

// -- farms list --

var farmsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available farms",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initFarmEnv(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		formatFarmList(cmd.OutOrStdout(), env.Service.ListAvailableFarms())
		return nil
	},
}

// -- farms show --

var farmsShowCmd = &cobra.Command{
	Use:   "show <farm-id>",
	Short: "Show the full metrics record of a farm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initFarmEnv(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		m, err := env.Service.FetchFarmData(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		return writeFormatted(cmd.OutOrStdout(), format, m)
	},
}

// -- farms refresh --

var farmsRefreshCmd = &cobra.Command{
	Use:   "refresh [farm-id]",
	Short: "Re-synthesize one farm, or every farm with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if all == (len(args) == 1) {
			return eris.New("farms refresh: pass a farm id or --all")
		}

		env, err := initFarmEnv(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		var refreshed []model.FarmMetrics
		if all {
			refreshed, err = env.Service.RefreshAll(cmd.Context())
		} else {
			var m model.FarmMetrics
			m, err = env.Service.Refresh(cmd.Context(), args[0])
			refreshed = []model.FarmMetrics{m}
		}
		if err != nil {
			return err
		}

		formatFarmHealth(cmd.OutOrStdout(), refreshed)
		return nil
	},
}

// -- farms history --

var farmsHistoryCmd = &cobra.Command{
	Use:   "history <farm-id>",
	Short: "Show stored refresh snapshots of a farm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initFarmEnv(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			limit = cfg.Store.HistoryLimit
		}
		snaps, err := env.Service.History(cmd.Context(), args[0], limit)
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No snapshots found.")
			return nil
		}

		formatSnapshots(cmd.OutOrStdout(), snaps)
		return nil
	},
}

// -- farms map --

var farmsMapCmd = &cobra.Command{
	Use:   "map <farm-id>",
	Short: "Print a map link centred on a farm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initFarmEnv(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		m, err := env.Service.Registry().Get(args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), env.Linker.URL(m.Centroid))
		return err
	},
}

// -- farms export --

var farmsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every farm record to an XLSX workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initFarmEnv(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		out, _ := cmd.Flags().GetString("out")
		farms := env.Service.Registry().All()
		if err := export.SaveXLSX(out, farms); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d farms to %s\n", len(farms), out)
		return nil
	},
}

func init() {
	farmsShowCmd.Flags().String("format", "json", "output format (json, yaml)")
	farmsRefreshCmd.Flags().Bool("all", false, "refresh every farm")
	farmsHistoryCmd.Flags().Int("limit", 0, "max snapshots to show (default from config)")
	farmsExportCmd.Flags().String("out", "farms.xlsx", "output workbook path")

	farmsCmd.AddCommand(farmsListCmd)
	farmsCmd.AddCommand(farmsShowCmd)
	farmsCmd.AddCommand(farmsRefreshCmd)
	farmsCmd.AddCommand(farmsHistoryCmd)
	farmsCmd.AddCommand(farmsMapCmd)
	farmsCmd.AddCommand(farmsExportCmd)
	rootCmd.AddCommand(farmsCmd)
}

// writeFormatted encodes v as indented JSON or YAML.
func writeFormatted(out io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "", "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return enc.Close()
	default:
		return eris.Errorf("unknown format %q (want json or yaml)", format)
	}
}

// formatFarmList writes a tabular list of farm summaries to out.
func formatFarmList(out io.Writer, farms []model.FarmSummary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tLAND_TYPE\tAREA_KM2")
	for _, f := range farms {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\n", f.ID, f.Name, f.LandType, f.AreaApprox)
	}
	_ = w.Flush()
}

// formatFarmHealth writes the headline metrics of each record to out.
func formatFarmHealth(out io.Writer, farms []model.FarmMetrics) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tAURA\tNDVI\tSOIL\tTEMP_C\tRAIN_MM\tRISKS")
	for _, m := range farms {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%.3f\t%.3f\t%.1f\t%.1f\t%d\n",
			m.FarmID, m.AuraHealth, m.VegetationIndex, m.SoilMoisture, m.Temperature, m.Rainfall, len(m.RiskFactors))
	}
	_ = w.Flush()
}

// formatSnapshots writes snapshot history, newest first, to out.
func formatSnapshots(out io.Writer, snaps []model.Snapshot) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SNAPSHOT\tCREATED\tAURA\tNDVI\tRISKS")
	for _, s := range snaps {
		id := s.ID
		if len(id) > 8 {
			id = id[:8]
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%.3f\t%s\n",
			id,
			s.CreatedAt.Format("2006-01-02 15:04:05"),
			s.Metrics.AuraHealth,
			s.Metrics.VegetationIndex,
			strings.Join(s.Metrics.RiskFactors, "; "),
		)
	}
	_ = w.Flush()
}
