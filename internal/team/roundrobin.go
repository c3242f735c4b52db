package team

import "context"

// RoundRobin speaks agents in order. The rotation carries over between runs.
func RoundRobin(ctx context.Context, agents []Agent, opts Options) (*Team, error) {
	n := len(agents)
	return newTeam(ctx, "round_robin_group_chat", agents, opts, func(_ context.Context, st *runState) (int, error) {
		idx := st.NextSpeaker % n
		st.NextSpeaker = (idx + 1) % n
		return idx, nil
	})
}
