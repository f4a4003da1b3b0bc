package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/orbitfund/orbitfund/internal/logger"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootFlags struct {
	apiURL   string
	logLevel string
}

var rootCmd = &cobra.Command{
	Use:   "orbitfund",
	Short: "Launch and edit OrbitFund missions from the terminal",
	Long: `orbitfund drafts crowdfunding missions for the OrbitFund platform.

A mission is drafted in a four step wizard (basics, funding and timeline,
media and documents, review) and sent to the backend as a multipart
submission. Existing missions can be edited in place: new files are uploaded
and removed files are queued for deletion. Draft activity is kept in a local
journal backed by embedded NATS JetStream.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.apiURL, "api-url", "", "Backend API base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(setupCmd)
}
