// Package cmd - calculate command
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"building-cost/core/billing"
	"building-cost/internal/config"
)

var (
	calcBuilding string
	calcYear     int
)

// calculateCmd represents the calculate command
var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Compute a billing period from persisted data",
	Long: `Distribute every service's recorded period costs across the building's
units, reconcile the monthly advance arrays from raw records and replace
the period's billing results.

Examples:
  building-cost calculate --building 4f8d27b1-... --year 2024`,
	RunE: runCalculate,
}

func init() {
	calculateCmd.Flags().StringVarP(&calcBuilding, "building", "b", "", "building identifier (required)")
	calculateCmd.Flags().IntVarP(&calcYear, "year", "y", 0, "billing year (required)")
	calculateCmd.MarkFlagRequired("building")
	calculateCmd.MarkFlagRequired("year")
}

func runCalculate(cmd *cobra.Command, args []string) error {
	buildingID, err := uuid.Parse(calcBuilding)
	if err != nil {
		return fmt.Errorf("invalid building identifier %q: %w", calcBuilding, err)
	}

	repo, err := openStore()
	if err != nil {
		return err
	}

	start := time.Now()
	calc := billing.NewCalculator(repo, nil)
	summary, err := calc.Run(context.Background(), billing.Options{
		BuildingID: buildingID,
		Year:       calcYear,
		Tolerance:  config.Get().Billing.ConservationTolerance,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Computed %d services, wrote %d billing results in %s\n",
		summary.ServicesComputed, summary.ResultsWritten, time.Since(start).Round(time.Millisecond))
	printMessages("Warning", summary.Warnings)
	printMessages("Error", summary.Errors)
	return nil
}

// printMessages prints prefixed messages, capped by configuration.
func printMessages(prefix string, messages []string) {
	max := config.Get().Billing.MaxSummaryMessages
	for i, msg := range messages {
		if max > 0 && i == max {
			fmt.Printf("  ... and %d more\n", len(messages)-max)
			return
		}
		fmt.Printf("  %s: %s\n", prefix, msg)
	}
}
