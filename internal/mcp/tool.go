package mcp

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/getkin/kin-openapi/openapi3"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// einoTool exposes one MCP tool as an eino invokable tool.
type einoTool struct {
	client *Client
	remote string
	info   *schema.ToolInfo
}

// EinoTools wraps every tool of c. The name prefix keeps tools of different
// servers apart when an agent uses several.
func EinoTools(ctx context.Context, c *Client, prefix string) ([]tool.BaseTool, error) {
	list, err := c.ListTools(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]tool.BaseTool, 0, len(list))
	for _, t := range list {
		info, err := toolInfo(prefix, t)
		if err != nil {
			return nil, fmt.Errorf("tool %s of %s: %w", t.Name, c.Name, err)
		}
		out = append(out, &einoTool{client: c, remote: t.Name, info: info})
	}
	return out, nil
}

// ManagerTools wraps the tools of every connected server, prefixed with
// "<server>_".
func ManagerTools(ctx context.Context, m *Manager) ([]tool.BaseTool, error) {
	var out []tool.BaseTool
	for _, name := range m.Connected() {
		c, _ := m.Client(name)
		tools, err := EinoTools(ctx, c, name+"_")
		if err != nil {
			return nil, err
		}
		out = append(out, tools...)
	}
	return out, nil
}

func toolInfo(prefix string, t *sdk.Tool) (*schema.ToolInfo, error) {
	info := &schema.ToolInfo{Name: prefix + t.Name, Desc: t.Description}
	if t.InputSchema == nil {
		return info, nil
	}
	raw, err := sonic.Marshal(t.InputSchema)
	if err != nil {
		return nil, err
	}
	var s openapi3.Schema
	if err := s.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("input schema: %w", err)
	}
	info.ParamsOneOf = schema.NewParamsOneOfByOpenAPIV3(&s)
	return info, nil
}

func (t *einoTool) Info(context.Context) (*schema.ToolInfo, error) {
	return t.info, nil
}

func (t *einoTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	args := map[string]any{}
	if argumentsInJSON != "" {
		if err := sonic.UnmarshalString(argumentsInJSON, &args); err != nil {
			return "", fmt.Errorf("arguments of %s: %w", t.info.Name, err)
		}
	}
	res := t.client.CallTool(ctx, t.remote, args)
	if res.IsError {
		return "Error: " + res.Text, nil
	}
	return res.Text, nil
}
