package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"neonlocal/pkg/logging"
)

var debugMode bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "neonlocal",
	Short: "Connect your local development environment to Neon branches",
	Long: `neonlocal launches and supervises the Neon Local proxy container so
local tools can talk to a Neon branch through localhost, including
ephemeral branches created per session and reset to their parent on demand.`,
	// SilenceUsage keeps cobra from printing usage on errors we already
	// report ourselves (failed connections, invalid selections).
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logging.LevelInfo
		if debugMode {
			level = logging.LevelDebug
		}
		logging.Init(level, os.Stderr)
	},
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "neonlocal version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newConnectCmd())
	rootCmd.AddCommand(newDisconnectCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newSelectCmd())
	rootCmd.AddCommand(newOrgsCmd())
	rootCmd.AddCommand(newProjectsCmd())
	rootCmd.AddCommand(newBranchesCmd())
	rootCmd.AddCommand(newDatabasesCmd())
	rootCmd.AddCommand(newRolesCmd())
	rootCmd.AddCommand(newConnectionStringCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
