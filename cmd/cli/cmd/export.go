// Package cmd - export command
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"building-cost/adapters/csvfile"
	"building-cost/adapters/xlsx"
	"building-cost/core/snapshot"
	"building-cost/internal/config"
	"building-cost/internal/errors"
)

var (
	exportBuilding string
	exportYear     int
	exportOut      string
	exportFormat   string
	exportSheet    string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a billing period as a snapshot",
	Long: `Serialize a computed billing period back into the canonical wire
format for the spreadsheet authoring tool. Zero amounts render as empty
cells so the export round-trips.

Examples:
  building-cost export --building 4f8d27b1-... --year 2024 --out billing.xlsx
  building-cost export --building 4f8d27b1-... --year 2024 --out billing.csv --format csv`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportBuilding, "building", "b", "", "building identifier (required)")
	exportCmd.Flags().IntVarP(&exportYear, "year", "y", 0, "billing year (required)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (required)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "output format (xlsx, csv; inferred from --out by default)")
	exportCmd.Flags().StringVarP(&exportSheet, "sheet", "s", "", "worksheet name (xlsx only)")
	exportCmd.MarkFlagRequired("building")
	exportCmd.MarkFlagRequired("year")
	exportCmd.MarkFlagRequired("out")
}

func runExport(cmd *cobra.Command, args []string) error {
	buildingID, err := uuid.Parse(exportBuilding)
	if err != nil {
		return fmt.Errorf("invalid building identifier %q: %w", exportBuilding, err)
	}

	repo, err := openStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	building, err := repo.FindBuilding(ctx, buildingID)
	if err != nil {
		return err
	}
	if building == nil {
		return errors.NotFound("building", exportBuilding)
	}
	period, err := repo.FindPeriod(ctx, building.ID, exportYear)
	if err != nil {
		return err
	}
	if period == nil {
		return errors.NotFound("billing period", fmt.Sprintf("%s/%d", building.Name, exportYear))
	}

	units, err := repo.ListUnits(ctx, building.ID)
	if err != nil {
		return err
	}
	owners, err := repo.OwnersByUnit(ctx, building.ID)
	if err != nil {
		return err
	}
	results, err := repo.ListResults(ctx, period.ID)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return errors.Input("period has no billing results; run calculate or import first")
	}

	rows := snapshot.Serialize(snapshot.FromBilling(building, units, owners, results))

	if err := writeRows(exportOut, rows); err != nil {
		return err
	}
	fmt.Printf("Exported %d rows to %s\n", len(rows), exportOut)
	return nil
}

// writeRows stores the wire table per the requested or inferred format.
func writeRows(path string, rows []snapshot.Row) error {
	format := exportFormat
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	if format == "" {
		format = config.Get().Export.DefaultFormat
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(format) {
	case "xlsx":
		sheet := exportSheet
		if sheet == "" {
			sheet = config.Get().Export.SheetName
		}
		return xlsx.Write(f, sheet, rows)
	case "csv":
		return csvfile.Write(f, rows)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
