package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/storelaunch/internal/deploy"
	"github.com/mark3labs/storelaunch/internal/export"
	"github.com/mark3labs/storelaunch/internal/form"
	"github.com/mark3labs/storelaunch/internal/wizard"
)

var deployFlags struct {
	answers string
	export  string
}

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy a store from an answers file without the TUI",
	Long: `Walk the onboarding steps with answers read from a YAML file and
deploy the store, printing progress until it is live or has failed.

Example answers file:

  package: professional
  store_name: Acme
  owner_name: Ada Lovelace
  owner_email: ada@acme.test
  owner_phone: "+1 555 0100"
  subdomain: acme
  services:
    stripe: true
  service_credentials:
    stripe:
      id: pk_test_123
      secret: sk_test_456
  admin_credentials:
    admin_email: admin@acme.test
    admin_password: s3cret
    confirm_password: s3cret
  payment_credentials:
    card_number: "4242 4242 4242 4242"
    expiry: "08/29"
    cvv: "009"`,
	RunE: runDeploy,
}

func init() {
	deployCmd.Flags().StringVarP(&deployFlags.answers, "answers", "a", "", "YAML file with the wizard answers (required)")
	deployCmd.Flags().StringVarP(&deployFlags.export, "export", "e", "", "Write the configuration document to this directory once live")
	_ = deployCmd.MarkFlagRequired("answers")
}

// loadAnswers reads a form from a YAML answers file.
func loadAnswers(path string) (*form.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answers: %w", err)
	}
	st := form.New()
	if err := yaml.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("failed to parse answers %s: %w", path, err)
	}
	st.Normalize()
	return st, nil
}

func runDeploy(cmd *cobra.Command, args []string) error {
	answers, err := loadAnswers(deployFlags.answers)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStack(ctx, wizard.WithForm(answers))
	if err != nil {
		return err
	}
	defer st.Close()

	result, err := deployHeadless(ctx, st.ctrl, st.cfg.Domain, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Your store is live!")
	fmt.Fprintf(out, "  Client ID:  %s\n", result.ClientID)
	fmt.Fprintf(out, "  Storefront: %s\n", result.URLs.Storefront)
	fmt.Fprintf(out, "  Admin:      %s\n", result.URLs.Admin)
	fmt.Fprintf(out, "  API:        %s\n", result.URLs.API)

	if deployFlags.export != "" {
		path, err := export.Write(deployFlags.export, st.ctrl.Form(), result)
		if err != nil {
			return fmt.Errorf("failed to export configuration: %w", err)
		}
		fmt.Fprintf(out, "Configuration saved to %s\n", path)
	}
	return nil
}

// deployHeadless advances ctrl through every input step, starts the
// deployment and waits for it to finish. Progress lines go to out.
func deployHeadless(ctx context.Context, ctrl *wizard.Controller, domain string, out io.Writer) (*deploy.Result, error) {
	type outcome struct {
		result *deploy.Result
		err    error
	}
	done := make(chan outcome, 1)
	var once sync.Once
	finish := func(o outcome) { once.Do(func() { done <- o }) }

	lastDecile := -1
	unsubscribe := ctrl.Subscribe(func(v wizard.View) {
		switch {
		case v.Step == wizard.StepActivation && v.LastResult != nil:
			finish(outcome{result: v.LastResult})
		case v.LastError != "":
			finish(outcome{err: fmt.Errorf("deployment failed: %s", v.LastError)})
		case v.Step == wizard.StepDeploying && v.Deployment.DialogOpen:
			if d := int(math.Floor(v.Deployment.Progress / 10)); d > lastDecile {
				lastDecile = d
				fmt.Fprintf(out, "  %3d%%  %s remaining\n", d*10, countdown(v.Deployment.TimeRemaining))
			}
		}
	})
	defer unsubscribe()

	for ctrl.Step() <= wizard.LastInputStep {
		step := ctrl.Step()
		if !ctrl.Next(ctx) {
			return nil, blockedError(step, ctrl.Issues())
		}
		if step == wizard.LastInputStep {
			fmt.Fprintf(out, "Deploying %s.%s...\n", ctrl.Form().Subdomain, domain)
		}
	}

	select {
	case o := <-done:
		return o.result, o.err
	case <-ctx.Done():
		ctrl.CloseDialog()
		return nil, errors.New("deployment interrupted")
	}
}

func blockedError(step wizard.Step, issues []wizard.Issue) error {
	msgs := make([]string, 0, len(issues))
	for _, issue := range issues {
		msgs = append(msgs, issue.String())
	}
	if len(msgs) == 0 {
		msgs = append(msgs, "step is incomplete")
	}
	return fmt.Errorf("answers stop at step %d (%s): %s", step, step.Title(), strings.Join(msgs, "; "))
}

func countdown(seconds int) string {
	seconds = max(seconds, 0)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
