// Package cmd - import command
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
	"building-cost/core/reconcile"
	"building-cost/core/snapshot"
	"building-cost/internal/logging"
)

var (
	importBuilding string
	importYear     int
	importSheet    string
	importFormat   string
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a billing snapshot",
	Long: `Parse a snapshot file in the canonical wire format and reconcile it
against the persisted billing records. The target period's results are
replaced wholesale; reimporting the same file is idempotent.

The format is inferred from the file extension unless --format is given.

Examples:
  building-cost import snapshot.xlsx --year 2024
  building-cost import legacy.csv --year 2023 --building 4f8d27b1-...`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importBuilding, "building", "b", "", "target building identifier (resolved from the snapshot when omitted)")
	importCmd.Flags().IntVarP(&importYear, "year", "y", 0, "billing year (required)")
	importCmd.Flags().StringVarP(&importSheet, "sheet", "s", "", "worksheet name (xlsx only, first sheet by default)")
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "input format (xlsx, csv)")
	importCmd.MarkFlagRequired("year")
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	rows, err := readRows(path)
	if err != nil {
		return err
	}

	parsed, err := snapshot.Parse(rows)
	if err != nil {
		return err
	}

	opts := reconcile.Options{Year: importYear}
	if importBuilding != "" {
		id, err := uuid.Parse(importBuilding)
		if err != nil {
			return fmt.Errorf("invalid building identifier %q: %w", importBuilding, err)
		}
		opts.BuildingID = &id
	}

	repo, err := openStore()
	if err != nil {
		return err
	}

	summary, err := reconcile.New(repo, logging.Named("reconcile")).
		Run(context.Background(), opts, parsed)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d units (%d matched, %d created), %d services (%d matched, %d created)\n",
		summary.UnitsMatched+summary.UnitsCreated, summary.UnitsMatched, summary.UnitsCreated,
		summary.ServicesMatched+summary.ServicesCreated, summary.ServicesMatched, summary.ServicesCreated)
	fmt.Printf("Wrote %d billing results\n", summary.ResultsWritten)
	printMessages("Warning", summary.Warnings)
	printMessages("Error", summary.Errors)
	return nil
}

// readRows loads the wire table per the requested or inferred format.
func readRows(path string) ([]snapshot.Row, error) {
	format := importFormat
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(path), ".")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(format) {
	case "xlsx":
		return xlsx.Read(f, importSheet)
	case "csv":
		return csvfile.Read(f)
	default:
		return nil, fmt.Errorf("unsupported input format %q", format)
	}
}
