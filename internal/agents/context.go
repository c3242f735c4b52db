package agents

import "context"

// RunContext carries local data for tools. It is never sent to the model.
type RunContext[T any] struct {
	Context T
}

type runContextKey struct{}

func withRunContext(ctx context.Context, v any) context.Context {
	if v == nil {
		return ctx
	}
	return context.WithValue(ctx, runContextKey{}, v)
}

// ContextValue returns the value given to WithContext for this run.
func ContextValue[T any](ctx context.Context) (T, bool) {
	rc, ok := ctx.Value(runContextKey{}).(*RunContext[T])
	if !ok {
		var zero T
		return zero, false
	}
	return rc.Context, true
}
