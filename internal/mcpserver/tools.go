package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// registerTools registers the wizard tools with the MCP server.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("wizard-state",
			mcp.WithDescription("Show the current wizard step, its validation hints, the form (secrets masked) and the deployment status"),
		),
		s.handleState,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("packages",
			mcp.WithDescription("List the store packages and integration services that can be selected"),
		),
		s.handlePackages,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set-field",
			mcp.WithDescription("Set one form field by its dotted path, e.g. storeName, services.stripe, serviceCredentials.stripe.secretKey, adminCredentials.adminPassword, paymentCredentials.cvv"),
			mcp.WithString("path", mcp.Required(),
				mcp.Description("Dotted field path"),
			),
			mcp.WithString("value", mcp.Required(),
				mcp.Description("New value; services.* take true or false"),
			),
		),
		s.handleSetField,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("next",
			mcp.WithDescription("Advance to the next step. On the deployment step this starts provisioning the store"),
		),
		s.handleNext,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("previous",
			mcp.WithDescription("Go back one step"),
		),
		s.handlePrevious,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("restart",
			mcp.WithDescription("Clear the form and start over. Only available after activation"),
		),
		s.handleRestart,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("activity",
			mcp.WithDescription("Show the deployment attempts recorded for the current subdomain"),
		),
		s.handleActivity,
	)
}
