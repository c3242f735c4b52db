// Command handoffs_guardrails routes a question to a calculator or writer
// agent and refuses input that looks like a card number.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"context_bench/internal/agents"
	"context_bench/internal/guardrail"
	"context_bench/internal/llm"
)

func main() {
	ctx := context.Background()

	m, _, err := llm.FromEnv(ctx, "")
	if err != nil {
		log.Fatalf("Failed to create chat model: %v", err)
	}

	calculator := &agents.Agent{Name: "Calculator", Instructions: "Do exact math. Reply with just the number."}
	writer := &agents.Agent{Name: "Writer", Instructions: "Write one concise sentence."}
	router := &agents.Agent{
		Name: "Router",
		Instructions: "If the user asks for math or a numeric computation, hand off to Calculator; " +
			"otherwise hand off to Writer. Keep final answers very short.",
		Handoffs:        []*agents.Agent{calculator, writer},
		InputGuardrails: []guardrail.Guardrail{guardrail.BlockPII},
	}

	input := strings.Join(os.Args[1:], " ")
	if input == "" {
		input = "what is 12*9?"
	}

	res, err := agents.NewRunner(m).Run(ctx, router, input)
	if errors.Is(err, guardrail.ErrTripwireTriggered) {
		fmt.Println("Blocked: sensitive number detected. Please remove payment details.")
		return
	}
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}
	fmt.Println(res.FinalOutput)
}
