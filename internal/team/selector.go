package team

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"context_bench/internal/logger"
)

// DefaultSelectorPrompt mirrors the placeholders the selector understands.
const DefaultSelectorPrompt = `You are in a role play game. The following roles are available:
{roles}.
Read the following conversation. Then select the next role from {participants} to play. Only return the role.

{history}

Read the above conversation. Then select the next role from {participants} to play. Only return the role.`

const maxSelectorAttempts = 3

// SelectorOptions extend Options for model-driven speaker selection.
type SelectorOptions struct {
	Options
	Prompt               string
	AllowRepeatedSpeaker bool
}

// Selector lets selectorModel choose each next speaker from the transcript.
func Selector(ctx context.Context, agents []Agent, selectorModel model.BaseChatModel, opts SelectorOptions) (*Team, error) {
	if opts.Prompt == "" {
		opts.Prompt = DefaultSelectorPrompt
	}
	s := &selector{agents: agents, model: selectorModel, opts: opts}
	return newTeam(ctx, "selector_group_chat", agents, opts.Options, s.pick)
}

type selector struct {
	agents []Agent
	model  model.BaseChatModel
	opts   SelectorOptions
}

func (s *selector) candidates(prev string) []Agent {
	if s.opts.AllowRepeatedSpeaker || prev == "" || len(s.agents) == 1 {
		return s.agents
	}
	out := make([]Agent, 0, len(s.agents)-1)
	for _, a := range s.agents {
		if a.Name() != prev {
			out = append(out, a)
		}
	}
	return out
}

func (s *selector) render(st *runState, cands []Agent) string {
	roles := make([]string, 0, len(s.agents))
	for _, a := range s.agents {
		roles = append(roles, fmt.Sprintf("%s: %s", a.Name(), a.Description()))
	}
	names := make([]string, 0, len(cands))
	for _, a := range cands {
		names = append(names, a.Name())
	}
	return strings.NewReplacer(
		"{roles}", strings.Join(roles, "\n"),
		"{history}", formatHistory(st.Messages),
		"{participants}", "["+strings.Join(names, ", ")+"]",
	).Replace(s.opts.Prompt)
}

func (s *selector) pick(ctx context.Context, st *runState) (int, error) {
	cands := s.candidates(st.PrevSpeaker)
	if len(cands) == 1 {
		return s.index(cands[0].Name()), nil
	}

	msgs := []*schema.Message{schema.SystemMessage(s.render(st, cands))}
	for attempt := 1; attempt <= maxSelectorAttempts; attempt++ {
		resp, err := s.model.Generate(ctx, msgs)
		if err != nil {
			return 0, err
		}
		mentioned := mentions(resp.Content, cands)
		if len(mentioned) == 1 {
			return s.index(mentioned[0]), nil
		}

		names := make([]string, 0, len(cands))
		for _, a := range cands {
			names = append(names, a.Name())
		}
		feedback := fmt.Sprintf("No valid name was mentioned. Please select from: %v.", names)
		if len(mentioned) > 1 {
			feedback = fmt.Sprintf("Expected exactly one name to be mentioned. Please select only one from: %v.", names)
		}
		logger.Debug().Int("attempt", attempt).Str("reply", resp.Content).Msg("speaker selection retry")
		msgs = append(msgs, resp, schema.UserMessage(feedback))
	}

	if st.PrevSpeaker != "" {
		return s.index(st.PrevSpeaker), nil
	}
	return 0, nil
}

func (s *selector) index(name string) int {
	for i, a := range s.agents {
		if a.Name() == name {
			return i
		}
	}
	return 0
}

// mentions returns the distinct candidate names found as whole words in text.
func mentions(text string, cands []Agent) []string {
	var out []string
	for _, a := range cands {
		re := regexp.MustCompile(`(^|\W)` + regexp.QuoteMeta(a.Name()) + `(\W|$)`)
		if re.MatchString(text) {
			out = append(out, a.Name())
		}
	}
	return out
}
