// Package chart renders the Context Bench result charts.
package chart

import (
	"image/color"
)

// TotalScenarios is the number of benchmark scenarios each server ran.
const TotalScenarios = 20

type ServerResult struct {
	Name   string
	Passed int
	Color  color.RGBA
}

type TokenUsage struct {
	Name  string
	Avg   int
	Total int
	Color color.RGBA
}

var (
	green  = hex(0x10b981)
	blue   = hex(0x3b82f6)
	purple = hex(0x8b5cf6)
	red    = hex(0xef4444)
	grey   = hex(0x6b7280)
)

// Results are listed best first. Baseline ran without any MCP server.
var Results = []ServerResult{
	{Name: "Deepcon", Passed: 18, Color: green},
	{Name: "Context7", Passed: 13, Color: blue},
	{Name: "NIA", Passed: 11, Color: purple},
	{Name: "Exa", Passed: 5, Color: red},
	{Name: "Baseline", Passed: 0, Color: grey},
}

var Tokens = []TokenUsage{
	{Name: "Context7", Avg: 5626, Total: 112515, Color: blue},
	{Name: "Exa", Avg: 4753, Total: 95065, Color: red},
	{Name: "Deepcon", Avg: 2365, Total: 47290, Color: green},
	{Name: "NIA", Avg: 1873, Total: 37457, Color: purple},
}

// AccuracyPercent is passed out of total, as a percentage.
func AccuracyPercent(passed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(passed) / float64(total) * 100
}

func hex(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xd9}
}
