package team

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"context_bench/internal/logger"
)

const (
	nodeInit   = "init"
	nodeSelect = "select"
	nodeTurn   = "turn"
)

var ErrNoAgents = errors.New("team needs at least one agent")

// Options configure how a run ends.
type Options struct {
	Termination Termination
	// MaxTurns caps agent turns per run; 0 means unlimited.
	MaxTurns int
	// MaxSteps bounds graph steps so a team with no stop condition still halts.
	MaxSteps int
}

// speakerFunc picks the index of the next speaker.
type speakerFunc func(ctx context.Context, st *runState) (int, error)

// runState is the graph-local state of one Run.
type runState struct {
	State
	RunStart   int
	Turns      int
	StopReason string
}

func (s *runState) run() []Message { return s.Messages[s.RunStart:] }

// Team is a group chat compiled into an eino graph: init -> (select -> turn)* -> END.
type Team struct {
	name   string
	agents []Agent
	opts   Options
	pick   speakerFunc

	mu    sync.Mutex
	state State

	runnable compose.Runnable[string, *TaskResult]
}

func newTeam(ctx context.Context, name string, agents []Agent, opts Options, pick speakerFunc) (*Team, error) {
	if len(agents) == 0 {
		return nil, ErrNoAgents
	}
	if opts.MaxSteps == 0 {
		opts.MaxSteps = 1000
	}
	t := &Team{name: name, agents: agents, opts: opts, pick: pick}
	if err := t.compile(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Team) compile(ctx context.Context) error {
	g := compose.NewGraph[string, *TaskResult](compose.WithGenLocalState(func(ctx context.Context) *runState {
		t.mu.Lock()
		defer t.mu.Unlock()
		st := &runState{State: t.state}
		st.Messages = append([]Message(nil), t.state.Messages...)
		st.RunStart = len(st.Messages)
		return st
	}))

	initNode := compose.InvokableLambda(func(ctx context.Context, task string) (*TaskResult, error) {
		var res *TaskResult
		err := compose.ProcessState[*runState](ctx, func(ctx context.Context, st *runState) error {
			if task != "" {
				t.record(ctx, st, textMessage(UserSource, task))
			}
			res = t.result(st)
			return nil
		})
		return res, err
	})

	selectNode := compose.InvokableLambda(func(ctx context.Context, _ *TaskResult) (int, error) {
		var snapshot runState
		if err := compose.ProcessState[*runState](ctx, func(_ context.Context, st *runState) error {
			snapshot = *st
			snapshot.Messages = append([]Message(nil), st.Messages...)
			return nil
		}); err != nil {
			return 0, err
		}
		idx, err := t.pick(ctx, &snapshot)
		if err != nil {
			return 0, fmt.Errorf("select speaker: %w", err)
		}
		return idx, compose.ProcessState[*runState](ctx, func(_ context.Context, st *runState) error {
			st.NextSpeaker = snapshot.NextSpeaker
			return nil
		})
	})

	turnNode := compose.InvokableLambda(func(ctx context.Context, idx int) (*TaskResult, error) {
		speaker := t.agents[idx]

		var history []Message
		if err := compose.ProcessState[*runState](ctx, func(_ context.Context, st *runState) error {
			history = append([]Message(nil), st.Messages...)
			return nil
		}); err != nil {
			return nil, err
		}

		logger.Debug().Str("team", t.name).Str("speaker", speaker.Name()).Msg("agent turn")
		msg, err := speaker.Reply(ctx, history)
		if err != nil {
			return nil, err
		}

		var res *TaskResult
		err = compose.ProcessState[*runState](ctx, func(ctx context.Context, st *runState) error {
			st.Turns++
			st.PrevSpeaker = speaker.Name()
			t.record(ctx, st, msg)
			if st.StopReason == "" && t.opts.MaxTurns > 0 && st.Turns >= t.opts.MaxTurns {
				st.StopReason = fmt.Sprintf("Maximum number of turns %d reached.", t.opts.MaxTurns)
			}
			res = t.result(st)
			return nil
		})
		return res, err
	})

	route := compose.NewGraphBranch(func(ctx context.Context, res *TaskResult) (string, error) {
		if res.StopReason != "" {
			return compose.END, nil
		}
		return nodeSelect, nil
	}, map[string]bool{nodeSelect: true, compose.END: true})

	if err := g.AddLambdaNode(nodeInit, initNode); err != nil {
		return err
	}
	if err := g.AddLambdaNode(nodeSelect, selectNode); err != nil {
		return err
	}
	if err := g.AddLambdaNode(nodeTurn, turnNode); err != nil {
		return err
	}
	if err := g.AddEdge(compose.START, nodeInit); err != nil {
		return err
	}
	if err := g.AddBranch(nodeInit, route); err != nil {
		return err
	}
	if err := g.AddEdge(nodeSelect, nodeTurn); err != nil {
		return err
	}
	if err := g.AddBranch(nodeTurn, route); err != nil {
		return err
	}

	r, err := g.Compile(ctx,
		compose.WithGraphName(t.name),
		compose.WithMaxRunSteps(t.opts.MaxSteps),
	)
	if err != nil {
		return fmt.Errorf("compile team graph: %w", err)
	}
	t.runnable = r
	return nil
}

// record appends msg, emits it and evaluates the stop condition.
func (t *Team) record(ctx context.Context, st *runState, msg Message) {
	st.Messages = append(st.Messages, msg)
	emit(ctx, msg)
	if st.StopReason != "" || t.opts.Termination == nil {
		return
	}
	if stop, reason := t.opts.Termination.Check(st.run()); stop {
		st.StopReason = reason
	}
}

// result snapshots the run so far and, once stopped, commits the state back to
// the team so the next Run continues the same conversation.
func (t *Team) result(st *runState) *TaskResult {
	res := &TaskResult{
		Messages:   append([]Message(nil), st.run()...),
		StopReason: st.StopReason,
	}
	if st.StopReason != "" {
		t.mu.Lock()
		t.state = State{
			Messages:    append([]Message(nil), st.Messages...),
			NextSpeaker: st.NextSpeaker,
			PrevSpeaker: st.PrevSpeaker,
		}
		t.mu.Unlock()
	}
	return res
}

// Run executes the team until a stop condition fires. An empty task resumes
// the conversation without adding a user message.
func (t *Team) Run(ctx context.Context, task string) (*TaskResult, error) {
	res, err := t.runnable.Invoke(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("team %s: %w", t.name, err)
	}
	return res, nil
}

// RunStream is Run with every message delivered as it is produced. The final
// element has TypeStop and carries the stop reason.
func (t *Team) RunStream(ctx context.Context, task string) (*schema.StreamReader[*Message], error) {
	sr, sw := schema.Pipe[*Message](16)
	go func() {
		defer sw.Close()
		ctx := withEmitter(ctx, func(m Message) {
			sw.Send(&m, nil)
		})
		res, err := t.Run(ctx, task)
		if err != nil {
			sw.Send(nil, err)
			return
		}
		sw.Send(&Message{Source: t.name, Type: TypeStop, Content: res.StopReason}, nil)
	}()
	return sr, nil
}

// SaveState returns a copy of the persisted conversation.
func (t *Team) SaveState() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.state
	st.Messages = append([]Message(nil), t.state.Messages...)
	return st
}

func (t *Team) LoadState(st State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = st
	t.state.Messages = append([]Message(nil), st.Messages...)
}

// Reset forgets the conversation.
func (t *Team) Reset() {
	t.LoadState(State{})
}

type emitterKey struct{}

func withEmitter(ctx context.Context, fn func(Message)) context.Context {
	return context.WithValue(ctx, emitterKey{}, fn)
}

func emit(ctx context.Context, m Message) {
	if fn, ok := ctx.Value(emitterKey{}).(func(Message)); ok {
		fn(m)
	}
}
