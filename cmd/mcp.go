package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ytbrief/ytbrief/internal"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run minimal MCP server for ytbrief",
	Long: `Run a Model Context Protocol (MCP) server that exposes ytbrief functionality as tools.

The MCP server provides three tools:
- get_video_metadata: Look up a video's title and channel
- get_transcript: Fetch a video's captions (cached on disk)
- summarize_video: Generate a summary of a video from its captions

Transport options:
- stdio (default): Standard MCP transport via stdin/stdout
- http: HTTP transport on specified port (use --port to configure)`,
	Example: `  # Run MCP server with stdio transport
  ytbrief mcp

  # Run MCP server with HTTP transport on port 8080
  ytbrief mcp --transport=http --port=8080`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// MCP uses stdio protocol, so keep stdout clean
		config.Verbose = false
		config.Quiet = true
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		internal.InitMCPLogging(config)

		app, err := internal.NewApp(cmd.Context(), config)
		if err != nil {
			return err
		}
		defer app.Close()

		mcpServer := internal.NewMCPServer(app)

		if transport == "http" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Starting ytbrief MCP server on HTTP port %d...\n", port)
		}

		// Start the server (this will block until context is cancelled)
		return mcpServer.Start(cmd.Context(), transport, port)
	},
}

func init() {
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol (stdio or http)")
	mcpCmd.Flags().Int("port", 8080, "Port for HTTP transport (only used with --transport=http)")
	rootCmd.AddCommand(mcpCmd)
}
