package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joeaguilar/itr/internal/config"
)

const (
	formatCompact = "compact"
	formatJSON    = "json"
	formatPretty  = "pretty"
)

var (
	formatFlag string
	dbFlag     string
	quietFlag  bool

	// outFormat is the output format after the .itr.yaml layer has
	// been applied. Commands read this, never formatFlag.
	outFormat string

	// fileCfg is the nearest .itr.yaml, nil when there is none.
	fileCfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "itr",
	Short: "Issue tracker for coding agents",
	Long: "itr is an issue tracker built for coding agents: one SQLite file,\na dependency graph that knows what is ready to work, and output\nformats meant to be parsed, not admired.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: resolveGlobals,
}

// resolveGlobals layers the .itr.yaml config under the persistent
// flags and validates the output format before any command runs.
func resolveGlobals(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	cfg, err := config.Find(cwd)
	if err != nil {
		return err
	}
	fileCfg = cfg

	outFormat = formatFlag
	if !cmd.Flags().Changed("format") && fileCfg != nil && fileCfg.Format != "" {
		outFormat = fileCfg.Format
	}
	switch outFormat {
	case formatCompact, formatJSON, formatPretty:
	default:
		fmt.Fprintf(os.Stderr, "ERROR: Invalid format '%s'. Valid: compact, json, pretty\n", outFormat)
		return exitCode(1)
	}
	return nil
}

// Execute runs the root command and maps its error, if any, to a
// process exit status.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		var code exitCode
		if errors.As(err, &code) {
			return int(code)
		}
		printError(err)
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", formatCompact, "Output format: compact|json|pretty")
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "Database path override (skips the walk-up search)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(reopenCmd)
	rootCmd.AddCommand(blockedCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(dependCmd)
	rootCmd.AddCommand(undependCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(readyCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(boardCmd)
}
