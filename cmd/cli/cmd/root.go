// Package cmd provides the CLI commands for building-cost.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"building-cost/internal/config"
	"building-cost/internal/logging"
	"building-cost/store"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "building-cost",
	Short: "Distribute building costs and reconcile billing snapshots",
	Long: `building-cost allocates a building's utility and service costs across
its units, reconciles prescribed and paid advances month by month, and
round-trips billing snapshots with the spreadsheet authoring tool.

Examples:
  building-cost calculate --building 4f8d... --year 2024
  building-cost import snapshot.xlsx --year 2024
  building-cost export --building 4f8d... --year 2024 --out billing.xlsx`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.building-cost.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	// Initialize logging
	cfg := config.Get()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// openStore connects per the active configuration.
func openStore() (*store.Store, error) {
	return store.Open(config.Get().Database, logging.Named("store"))
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("building-cost version 0.1.0")
	},
}

// configCmd manages configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		fmt.Printf("database: %s (%s)\n", cfg.Database.Driver, cfg.Database.DSN)
		fmt.Printf("currency: %s\n", cfg.Billing.Currency)
		fmt.Printf("conservation tolerance: %v\n", cfg.Billing.ConservationTolerance)
		fmt.Printf("export format: %s (sheet %q)\n", cfg.Export.DefaultFormat, cfg.Export.SheetName)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if len(args) > 0 {
			path = args[0]
		}
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			path = home + "/.building-cost.json"
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		fmt.Printf("Wrote default configuration to %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
