// Package guardrail runs input checks before an agent sees the user's text.
package guardrail

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrTripwireTriggered = errors.New("input guardrail tripwire triggered")

// Output is what a guardrail reports about one input.
type Output struct {
	Info              map[string]any
	TripwireTriggered bool
}

// Guardrail inspects the input text.
type Guardrail struct {
	Name  string
	Check func(ctx context.Context, input string) (Output, error)
}

// TripwireError names the guardrail that stopped the run.
type TripwireError struct {
	Guardrail string
	Output    Output
}

func (e *TripwireError) Error() string {
	return fmt.Sprintf("guardrail %q tripped", e.Guardrail)
}

func (e *TripwireError) Is(target error) bool {
	return target == ErrTripwireTriggered
}

// Run evaluates guards in order and stops at the first tripwire.
func Run(ctx context.Context, input string, guards ...Guardrail) error {
	for _, g := range guards {
		out, err := g.Check(ctx, input)
		if err != nil {
			return fmt.Errorf("guardrail %s: %w", g.Name, err)
		}
		if out.TripwireTriggered {
			return &TripwireError{Guardrail: g.Name, Output: out}
		}
	}
	return nil
}

var cardNumber = regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`)

// BlockPII flags anything that looks like a payment card number.
var BlockPII = Guardrail{
	Name: "block_pii",
	Check: func(_ context.Context, input string) (Output, error) {
		flagged := cardNumber.MatchString(strings.ToLower(input))
		return Output{Info: map[string]any{"flagged": flagged}, TripwireTriggered: flagged}, nil
	},
}
