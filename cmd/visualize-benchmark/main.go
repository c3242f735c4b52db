// Command visualize-benchmark renders the MCP benchmark charts into
// visualizations/.
package main

import (
	"fmt"
	"log"

	"context_bench/internal/chart"
)

const outputDir = "visualizations"

func main() {
	files, err := chart.Render(outputDir)
	if err != nil {
		log.Fatalf("Failed to render charts: %v", err)
	}
	for _, f := range files {
		fmt.Printf("✓ Saved: %s\n", f)
	}
	fmt.Printf("\nAll visualizations saved to: %s/\n", outputDir)
}
