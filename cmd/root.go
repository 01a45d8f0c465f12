package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpcmd "github.com/Alijeyrad/carwash_portal/cmd/http"
	systemcmd "github.com/Alijeyrad/carwash_portal/cmd/system"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "carwash",
	Short: "Car wash booking portal.",
	Long: `The car wash portal serves the role-prefixed pages of the booking platform
(clients, mobile and in-house washers, administrators) and talks to the
appointment backend on the visitor's behalf.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
}
