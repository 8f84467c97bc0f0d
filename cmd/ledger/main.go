// Command ledger is a terminal client for the expense-sharing API: it lists
// groups, expenses and settlements, accepts invites, runs the route guard and
// watches live notifications.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"

	configFlag  string
	envFileFlag string
	baseURLFlag string
	offlineFlag bool

	recordFlag      string
	metricsAddrFlag string
	speedFlag       float64

	rootCmd = &cobra.Command{
		Use:           "ledger",
		Short:         "ledger - command line client for shared expenses",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of ledger",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ledger version %s\n", version)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", ".env", "dotenv file loaded before environment overrides")
	rootCmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", "", "API base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&offlineFlag, "offline", false, "read from the snapshot cache instead of the API")

	watchCmd.Flags().StringVarP(&recordFlag, "record", "r", "", "write received notifications to a recording file")
	watchCmd.Flags().StringVar(&metricsAddrFlag, "metrics-addr", "", "serve /metrics and /stats on this address")
	replayCmd.Flags().Float64Var(&speedFlag, "speed", 1, "playback speed; 0 prints without waiting")

	rootCmd.AddCommand(
		whoamiCmd,
		groupsCmd,
		groupCmd,
		categoriesCmd,
		expensesCmd,
		settlementsCmd,
		subscriptionsCmd,
		invitesCmd,
		acceptInviteCmd,
		summaryCmd,
		openCmd,
		watchCmd,
		replayCmd,
		versionCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ledger:", err)
		os.Exit(1)
	}
}
