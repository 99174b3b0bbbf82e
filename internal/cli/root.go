package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"time"

	"github.com/rileyhilliard/sysmon/internal/errors"
	"github.com/rileyhilliard/sysmon/internal/ui"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile  string
	noColor  bool
	interval time.Duration
	once     bool
)

// rootCmd runs the dashboard when invoked without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "sysmon",
	Short: "Live terminal system monitor",
	Long: `sysmon samples CPU, memory, disk, services, mounts and the system journal
at a fixed interval and draws them as a live dashboard with warning and
critical thresholds.

Examples:
  sysmon
  sysmon --interval 2s
  sysmon --once > snapshot.txt
  sysmon --config ./sysmon.yaml`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor || os.Getenv("NO_COLOR") != "" {
			ui.DisableColors()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(cmd.Context(), DashboardOptions{
			ConfigPath: cfgFile,
			Interval:   interval,
			Once:       once,
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./sysmon.yaml or ~/.config/sysmon/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.Flags().DurationVar(&interval, "interval", 0, "refresh interval, overrides refresh_rate_seconds (e.g. 2s)")
	rootCmd.Flags().BoolVar(&once, "once", false, "sample once, print a single frame and exit")
}

// Config returns the --config flag value.
func Config() string {
	return cfgFile
}

// Execute runs the root command. Errors are printed to stderr and the
// process exits 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

// printError prints structured errors as-is and anything else in the same
// "✗ message" shape.
func printError(err error) {
	var e *errors.Error
	if stderrors.As(err, &e) {
		fmt.Fprint(os.Stderr, e.Error())
		return
	}
	fmt.Fprintf(os.Stderr, "%s %v\n", ui.SymbolFail, err)
}
