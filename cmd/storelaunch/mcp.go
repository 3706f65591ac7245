package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mark3labs/storelaunch/internal/mcpserver"
)

var mcpFlags struct {
	port int
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the wizard as MCP tools",
	Long: `Serve the onboarding wizard over the Model Context Protocol so an
assistant can fill in the form, advance the steps and deploy the store.

The server listens on 127.0.0.1 with the streamable HTTP transport at /mcp.`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().IntVarP(&mcpFlags.port, "port", "p", 0, "Port to listen on (0 picks a free port)")
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStack(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	srv := mcpserver.New(st.ctrl, st.store)
	if _, err := srv.Start(ctx, mcpFlags.port); err != nil {
		return fmt.Errorf("failed to start MCP server: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening at %s\n", srv.URL())

	<-ctx.Done()
	fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down gracefully...")
	return srv.Stop()
}
