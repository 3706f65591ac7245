package main

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/mark3labs/storelaunch/internal/logger"
	"github.com/mark3labs/storelaunch/internal/tui/theme"
)

const (
	logoText1 = "█▀ ▀█▀ █▀█ █▀█ █▀▀ █   ▄▀█ █ █ █▄ █ █▀▀ █ █"
	logoText2 = "▄█  █  █▄█ █▀▄ ██▄ █▄▄ █▀█ █▄█ █ ▀█ █▄▄ █▀█"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "storelaunch",
	Short: "Onboard and deploy a hosted storefront",
	RunE:  runWizard,
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := theme.NewCatppuccinMocha()
	line1 := theme.ApplyGradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.ApplyGradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	rootCmd.Long = renderLogo() + `

storelaunch walks you through setting up a hosted store: pick a package,
describe the store, choose a subdomain and integrations, create the admin
account and activate the trial. It then provisions the store and shows
its URLs once it is live.

Running storelaunch without a subcommand starts the interactive wizard.`

	rootCmd.PersistentFlags().StringVar(&rootFlags.endpoint, "endpoint", "", "Provisioning endpoint URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&rootFlags.domain, "domain", "", "Base domain for store URLs (overrides config)")
	rootCmd.PersistentFlags().StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&rootFlags.logFile, "log-file", "", "Write logs to this file (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&rootFlags.noEvents, "no-events", false, "Disable the in-memory activity log")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(setupCmd)
}
