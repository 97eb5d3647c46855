package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/aretw0/bargain/pkg/adapters/mcp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newMCPCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Exposes negotiations as MCP tools and resources so an LLM can write the
replies while the engine decides every price.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			transport, _ := cmd.Flags().GetString("transport")
			port, _ := cmd.Flags().GetInt("port")

			host, err := newHost(cmd, v)
			if err != nil {
				return err
			}
			defer host.Close()

			srv := mcp.NewServer(host.Sessions,
				mcp.WithBaseConfig(host.Config),
				mcp.WithLogger(host.Logger),
			)

			switch transport {
			case "stdio":
				// Ensure logs don't corrupt JSON-RPC on Stdout
				log.SetOutput(os.Stderr)
				host.Logger.Info("Starting Bargain MCP Server (Stdio)")
				return srv.ServeStdio()
			case "sse":
				host.Logger.Info("Starting Bargain MCP Server (SSE)", "port", port)
				if err := srv.ServeSSE(cmd.Context(), port); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				host.Logger.Info("MCP Server stopped gracefully")
				return nil
			default:
				return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
			}
		},
	}

	cmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	cmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	return cmd
}
