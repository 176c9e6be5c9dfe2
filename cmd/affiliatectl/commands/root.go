package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "affiliatectl",
	Short: "Operator tooling for the affiliate marketplace API",
	Long: `affiliatectl runs maintenance tasks against the affiliate marketplace.

Database settings are read from the same environment (and .env file) as the API.

Examples:
  affiliatectl migrate up
  affiliatectl migrate status
  affiliatectl hash-password 'my admin password'`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}
