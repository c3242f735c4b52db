package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

var ErrNotConnected = errors.New("MCP server not found or not connected")

var clientInfo = &sdk.Implementation{Name: "context-bench-client", Version: "1.0.0"}

// ToolResult is the text content of a tool call. Transport and protocol
// failures are folded into an error result.
type ToolResult struct {
	Text    string
	IsError bool
}

// Client is one connected MCP server.
type Client struct {
	Name    string
	session *sdk.ClientSession
}

// Connect starts or dials the server described by cfg.
func Connect(ctx context.Context, name string, cfg ServerConfig) (*Client, error) {
	t, err := transportFor(cfg)
	if err != nil {
		return nil, fmt.Errorf("MCP server %s: %w", name, err)
	}
	return ConnectTransport(ctx, name, t)
}

// ConnectTransport connects over an already built transport.
func ConnectTransport(ctx context.Context, name string, t sdk.Transport) (*Client, error) {
	c := sdk.NewClient(clientInfo, nil)
	session, err := c.Connect(ctx, t, nil)
	if err != nil {
		return nil, fmt.Errorf("connect MCP server %s: %w", name, err)
	}
	return &Client{Name: name, session: session}, nil
}

func transportFor(cfg ServerConfig) (sdk.Transport, error) {
	if cfg.URL != "" {
		hc := &http.Client{Transport: headerRoundTripper{headers: cfg.Headers, next: http.DefaultTransport}}
		if strings.EqualFold(cfg.Type, "sse") {
			return &sdk.SSEClientTransport{Endpoint: cfg.URL, HTTPClient: hc}, nil
		}
		return &sdk.StreamableClientTransport{Endpoint: cfg.URL, HTTPClient: hc}, nil
	}
	if cfg.Command == "" {
		return nil, errors.New("neither command nor url is configured")
	}
	cmd := exec.Command(cfg.Command, cfg.Args...)
	cmd.Env = os.Environ()
	for k, v := range cfg.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	return &sdk.CommandTransport{Command: cmd}, nil
}

type headerRoundTripper struct {
	headers map[string]string
	next    http.RoundTripper
}

func (h headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(h.headers) > 0 {
		req = req.Clone(req.Context())
		for k, v := range h.headers {
			req.Header.Set(k, v)
		}
	}
	return h.next.RoundTrip(req)
}

func (c *Client) ListTools(ctx context.Context) ([]*sdk.Tool, error) {
	res, err := c.session.ListTools(ctx, &sdk.ListToolsParams{})
	if err != nil {
		return nil, fmt.Errorf("list tools of %s: %w", c.Name, err)
	}
	return res.Tools, nil
}

func (c *Client) CallTool(ctx context.Context, tool string, args map[string]any) ToolResult {
	res, err := c.session.CallTool(ctx, &sdk.CallToolParams{Name: tool, Arguments: args})
	if err != nil {
		return ToolResult{Text: err.Error(), IsError: true}
	}
	return ToolResult{Text: contentText(res.Content), IsError: res.IsError}
}

func contentText(content []sdk.Content) string {
	parts := make([]string, 0, len(content))
	for _, c := range content {
		switch c := c.(type) {
		case *sdk.TextContent:
			parts = append(parts, c.Text)
		case *sdk.EmbeddedResource:
			if c.Resource != nil && c.Resource.Text != "" {
				parts = append(parts, c.Resource.Text)
			}
		}
	}
	return strings.Join(parts, "\n")
}

func (c *Client) Close() error {
	return c.session.Close()
}
