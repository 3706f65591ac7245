package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mark3labs/storelaunch/internal/tui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive onboarding wizard",
	Long: `Start the full-screen onboarding wizard.

Steps are gated: Next stays disabled until the current step is complete.
On the last step the store is deployed and its progress shown; once it is
live, press d to save the configuration document or r to start over.`,
	RunE: runWizard,
}

func runWizard(cmd *cobra.Command, args []string) error {
	st, err := openStack(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	if err := tui.Run(cmd.Context(), st.ctrl, tui.Options{
		Domain:    st.cfg.Domain,
		ExportDir: st.cfg.OutputDir,
	}); err != nil {
		return fmt.Errorf("failed to run wizard: %w", err)
	}
	return nil
}
