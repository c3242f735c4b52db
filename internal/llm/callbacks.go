package llm

import (
	"context"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/tool"
)

// ToolObserver is told about each tool invocation inside a graph or agent run.
type ToolObserver struct {
	OnCall   func(ctx context.Context, name, arguments string)
	OnResult func(ctx context.Context, name, result string)
	OnError  func(ctx context.Context, name string, err error)
}

// Handler turns the observer into an eino callback handler that ignores
// every component except tools.
func (o ToolObserver) Handler() callbacks.Handler {
	return callbacks.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
			if !isTool(info) || o.OnCall == nil {
				return ctx
			}
			if in := tool.ConvCallbackInput(input); in != nil {
				o.OnCall(ctx, info.Name, in.ArgumentsInJSON)
			}
			return ctx
		}).
		OnEndFn(func(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
			if !isTool(info) || o.OnResult == nil {
				return ctx
			}
			if out := tool.ConvCallbackOutput(output); out != nil {
				o.OnResult(ctx, info.Name, out.Response)
			}
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
			if isTool(info) && o.OnError != nil {
				o.OnError(ctx, info.Name, err)
			}
			return ctx
		}).
		Build()
}

func isTool(info *callbacks.RunInfo) bool {
	return info != nil && info.Component == components.ComponentOfTool
}

// ToolNames resolves the declared name of every tool.
func ToolNames(ctx context.Context, tools []tool.BaseTool) ([]string, error) {
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, err
		}
		names = append(names, info.Name)
	}
	return names, nil
}
