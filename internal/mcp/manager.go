package mcp

import (
	"context"
	"sort"
	"sync"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"context_bench/internal/logger"
)

// Manager owns the connections of one config. It is safe for concurrent
// use, so parallel benchmark workers can share it.
type Manager struct {
	servers map[string]ServerConfig
	dial    func(ctx context.Context, name string, cfg ServerConfig) (*Client, error)

	mu      sync.RWMutex
	clients map[string]*Client
}

func NewManager(servers map[string]ServerConfig) *Manager {
	return &Manager{servers: servers, dial: Connect, clients: map[string]*Client{}}
}

// ConnectAll connects every server concurrently. Failures are logged and
// returned per server; the servers that did connect stay usable.
func (m *Manager) ConnectAll(ctx context.Context) map[string]error {
	var mu sync.Mutex
	failed := map[string]error{}

	var g errgroup.Group
	for name, cfg := range m.servers {
		g.Go(func() error {
			c, err := m.dial(ctx, name, cfg)
			if err != nil {
				logger.Warn().Err(err).Str("server", name).Msg("Failed to connect to MCP server")
				mu.Lock()
				failed[name] = err
				mu.Unlock()
				return nil
			}
			m.mu.Lock()
			m.clients[name] = c
			m.mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return failed
}

// Add registers an already connected client.
func (m *Manager) Add(c *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[c.Name] = c
}

func (m *Manager) Client(name string) (*Client, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clients[name]
	return c, ok
}

// Connected returns the connected server names, sorted.
func (m *Manager) Connected() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.clients))
	for n := range m.clients {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (m *Manager) CallTool(ctx context.Context, server, tool string, args map[string]any) ToolResult {
	c, ok := m.Client(server)
	if !ok {
		return ToolResult{Text: "MCP server '" + server + "' not found or not connected", IsError: true}
	}
	return c.CallTool(ctx, tool, args)
}

// ListAllTools lists tools per connected server. A server that fails to
// list gets an empty slice.
func (m *Manager) ListAllTools(ctx context.Context) map[string][]*sdk.Tool {
	out := map[string][]*sdk.Tool{}
	for _, name := range m.Connected() {
		c, _ := m.Client(name)
		tools, err := c.ListTools(ctx)
		if err != nil {
			logger.Warn().Err(err).Str("server", name).Msg("Failed to list MCP tools")
			tools = []*sdk.Tool{}
		}
		out[name] = tools
	}
	return out
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var first error
	for name, c := range m.clients {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
		delete(m.clients, name)
	}
	return first
}
