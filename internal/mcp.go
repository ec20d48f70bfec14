package internal

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPServer wraps the MCP server and application dependencies
type MCPServer struct {
	app       *App
	mcpServer *server.MCPServer
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(app *App) *MCPServer {
	mcpServer := server.NewMCPServer(
		"ytbrief-server",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s := &MCPServer{
		app:       app,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s
}

// registerTools registers all available MCP tools
func (s *MCPServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_video_metadata",
		mcp.WithDescription("Look up the title and channel of a YouTube video via the YouTube Data API. Requires a YouTube API key to be configured."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or 11-character video ID"),
			mcp.Required(),
		),
	), s.handleGetMetadata)

	s.mcpServer.AddTool(mcp.NewTool("get_transcript",
		mcp.WithDescription("Get the transcript of a YouTube video from existing captions. Served from the local transcript cache when available. Fails if the video has no captions."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or 11-character video ID"),
			mcp.Required(),
		),
	), s.handleGetTranscript)

	s.mcpServer.AddTool(mcp.NewTool("summarize_video",
		mcp.WithDescription("Summarize a YouTube video from its captions using the configured OpenAI model. Requires an OpenAI API key and a YouTube API key to be configured. Fails if the video has no captions."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or 11-character video ID"),
			mcp.Required(),
		),
	), s.handleSummarize)
}

// requireVideoID extracts and validates the url argument of a tool call.
func requireVideoID(request mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	url, err := request.RequireString("url")
	if err != nil {
		return "", mcp.NewToolResultError("url parameter is required and must be a string")
	}
	videoID, ok := ExtractVideoID(url)
	if !ok {
		return "", mcp.NewToolResultError(fmt.Sprintf("could not extract a video ID from %q", url))
	}
	return videoID, nil
}

// handleGetMetadata implements the get_video_metadata tool
func (s *MCPServer) handleGetMetadata(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	videoID, errResult := requireVideoID(request)
	if errResult != nil {
		return errResult, nil
	}

	title, channel, err := s.app.VideoDetails(ctx, videoID)
	if err != nil {
		MCPLogError("metadata lookup failed for %s: %v", videoID, err)
		return mcp.NewToolResultErrorFromErr("metadata error", err), nil
	}

	MCPLogInfo("metadata served for %s", videoID)
	text := fmt.Sprintf("Title: %s\nChannel: %s\nVideo ID: %s\n", title, channel, videoID)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(text)},
	}, nil
}

// handleGetTranscript implements the get_transcript tool
func (s *MCPServer) handleGetTranscript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	videoID, errResult := requireVideoID(request)
	if errResult != nil {
		return errResult, nil
	}

	transcript, err := s.app.Transcript(ctx, videoID)
	if err != nil {
		MCPLogError("transcript fetch failed for %s: %v", videoID, err)
		return mcp.NewToolResultErrorFromErr("no transcript available", err), nil
	}

	MCPLogInfo("transcript served for %s", videoID)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(transcript)},
	}, nil
}

// handleSummarize implements the summarize_video tool
func (s *MCPServer) handleSummarize(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	videoID, errResult := requireVideoID(request)
	if errResult != nil {
		return errResult, nil
	}

	summary, err := s.app.SummarizeVideo(ctx, videoID)
	if err != nil {
		MCPLogError("summarize failed for %s: %v", videoID, err)
		return mcp.NewToolResultErrorFromErr("summarization failed", err), nil
	}

	MCPLogInfo("summary served for %s", videoID)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(summary)},
	}, nil
}

// Start starts the MCP server using the specified transport
func (s *MCPServer) Start(ctx context.Context, transport string, port int) error {
	if transport == "http" {
		httpServer := server.NewStreamableHTTPServer(s.mcpServer)
		addr := fmt.Sprintf(":%d", port)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return httpServer.Start(addr)
	}

	// Default to stdio transport
	return server.ServeStdio(s.mcpServer)
}
