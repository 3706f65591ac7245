package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mark3labs/storelaunch/internal/deploy"
	"github.com/mark3labs/storelaunch/internal/form"
	"github.com/mark3labs/storelaunch/internal/logger"
	"github.com/mark3labs/storelaunch/internal/wizard"
)

// stateView is the JSON shape returned by wizard-state and the navigation
// tools.
type stateView struct {
	Step       int            `json:"step"`
	Title      string         `json:"title"`
	CanAdvance bool           `json:"canAdvance"`
	Issues     []wizard.Issue `json:"issues"`
	Form       *form.State    `json:"form"`
	Deployment deploymentView `json:"deployment"`
	LastResult *deploy.Result `json:"lastResult,omitempty"`
	LastError  string         `json:"lastError,omitempty"`
}

type deploymentView struct {
	Attempt       uint64  `json:"attempt"`
	Phase         string  `json:"phase"`
	Progress      float64 `json:"progress"`
	TimeRemaining int     `json:"timeRemaining"`
	DialogOpen    bool    `json:"dialogOpen"`
	Loading       bool    `json:"loading"`
}

func newStateView(v wizard.View) stateView {
	issues := v.Issues
	if issues == nil {
		issues = []wizard.Issue{}
	}
	d := v.Deployment
	return stateView{
		Step:       int(v.Step),
		Title:      v.Step.Title(),
		CanAdvance: v.CanAdvance,
		Issues:     issues,
		Form:       masked(v.Form),
		Deployment: deploymentView{
			Attempt:       d.Attempt,
			Phase:         d.Phase.String(),
			Progress:      d.Progress,
			TimeRemaining: d.TimeRemaining,
			DialogOpen:    d.DialogOpen,
			Loading:       d.Loading,
		},
		LastResult: v.LastResult,
		LastError:  v.LastError,
	}
}

const mask = "********"

func maskValue(v string) string {
	if v == "" {
		return ""
	}
	return mask
}

// masked returns a copy of st with passwords, secrets and card data hidden.
// Card numbers keep their last four digits.
func masked(st *form.State) *form.State {
	out := st.Clone()
	for _, info := range form.ServiceCatalog() {
		pair := out.ServiceCredentials.Get(info.Service)
		out.Apply(form.SetCredential{Service: info.Service, Part: form.CredentialSecret, Value: maskValue(pair.Secret)})
	}
	out.AdminCredentials.AdminPassword = maskValue(out.AdminCredentials.AdminPassword)
	out.AdminCredentials.ConfirmPassword = maskValue(out.AdminCredentials.ConfirmPassword)
	if card := out.PaymentCredentials.CardNumber; len(card) > 4 {
		out.PaymentCredentials.CardNumber = strings.Repeat("*", len(card)-4) + card[len(card)-4:]
	}
	out.PaymentCredentials.CVV = maskValue(out.PaymentCredentials.CVV)
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(newStateView(s.ctrl.View()))
}

func (s *Server) handlePackages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(struct {
		Packages []form.Package     `json:"packages"`
		Services []form.ServiceInfo `json:"services"`
	}{form.Packages(), form.ServiceCatalog()})
}

func (s *Server) handleSetField(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if args == nil {
		return mcp.NewToolResultError("no arguments provided"), nil
	}
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return mcp.NewToolResultError("missing 'path' parameter"), nil
	}
	value, ok := args["value"].(string)
	if !ok {
		// Accept JSON booleans for service toggles.
		if b, isBool := args["value"].(bool); isBool {
			value = fmt.Sprintf("%t", b)
		} else {
			return mcp.NewToolResultError("missing 'value' parameter"), nil
		}
	}

	update, err := form.ParseUpdate(path, value)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.ctrl.Apply(update)
	logger.Debug("MCP set-field %s", path)
	return jsonResult(newStateView(s.ctrl.View()))
}

func (s *Server) handleNext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	before := s.ctrl.View()
	if !s.ctrl.Next(ctx) {
		return mcp.NewToolResultText(blockedMessage(before)), nil
	}
	return jsonResult(newStateView(s.ctrl.View()))
}

// blockedMessage explains why Next did nothing on v.
func blockedMessage(v wizard.View) string {
	switch {
	case v.Step > wizard.LastInputStep:
		return fmt.Sprintf("Step %d (%s) has no next step.", v.Step, v.Step.Title())
	case v.Loading():
		return "A deployment is already in progress."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Cannot advance from step %d (%s).", v.Step, v.Step.Title())
	for _, issue := range v.Issues {
		fmt.Fprintf(&b, "\n- %s", issue)
	}
	return b.String()
}

func (s *Server) handlePrevious(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.ctrl.Previous() {
		v := s.ctrl.View()
		return mcp.NewToolResultText(fmt.Sprintf("Cannot go back from step %d (%s).", v.Step, v.Step.Title())), nil
	}
	return jsonResult(newStateView(s.ctrl.View()))
}

func (s *Server) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.ctrl.Restart(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(newStateView(s.ctrl.View()))
}

func (s *Server) handleActivity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.activity == nil {
		return mcp.NewToolResultText("The activity log is disabled."), nil
	}
	log, err := s.activity.Load(ctx, s.ctrl.Form().Subdomain)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load activity: %v", err)), nil
	}
	return jsonResult(log)
}
