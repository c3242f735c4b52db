package chart

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	AccuracyFile   = "accuracy_comparison.png"
	TokenUsageFile = "token_usage_comparison.png"
	EfficiencyFile = "efficiency_scatter.png"
)

const chartDPI = 300

var (
	edge     = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
	guide    = color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0x80}
	printer  = message.NewPrinter(language.English)
	barWidth = vg.Points(28)
	dashes   = []vg.Length{vg.Points(6), vg.Points(4)}
)

// Render writes the three charts into dir and returns their paths.
func Render(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	acc, err := AccuracyChart()
	if err != nil {
		return nil, err
	}
	accPath := filepath.Join(dir, AccuracyFile)
	if err := acc.Save(10*vg.Inch, 6*vg.Inch, accPath); err != nil {
		return nil, fmt.Errorf("save %s: %w", accPath, err)
	}

	avg, total, err := TokenCharts()
	if err != nil {
		return nil, err
	}
	tokPath := filepath.Join(dir, TokenUsageFile)
	if err := saveSideBySide(tokPath, 14*vg.Inch, 6*vg.Inch, avg, total); err != nil {
		return nil, err
	}

	eff, err := EfficiencyChart()
	if err != nil {
		return nil, err
	}
	effPath := filepath.Join(dir, EfficiencyFile)
	if err := eff.Save(10*vg.Inch, 8*vg.Inch, effPath); err != nil {
		return nil, fmt.Errorf("save %s: %w", effPath, err)
	}

	return []string{accPath, tokPath, effPath}, nil
}

// hbars adds one horizontal bar per value so each can have its own colour.
func hbars(p *plot.Plot, values []float64, colors []color.RGBA, labels []string, labelPad float64) error {
	xys := make(plotter.XYs, len(values))
	for i, v := range values {
		b, err := plotter.NewBarChart(plotter.Values{v}, barWidth)
		if err != nil {
			return err
		}
		b.Horizontal = true
		b.XMin = float64(i)
		b.Color = colors[i]
		b.LineStyle.Color = edge
		b.LineStyle.Width = vg.Points(1.2)
		p.Add(b)
		xys[i] = plotter.XY{X: v + labelPad, Y: float64(i)}
	}
	l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return err
	}
	l.Offset = vg.Point{Y: -vg.Points(4)}
	p.Add(l)
	return nil
}

func grid(p *plot.Plot, vertical, horizontal bool) {
	g := plotter.NewGrid()
	if !vertical {
		g.Vertical.Color = nil
	}
	if !horizontal {
		g.Horizontal.Color = nil
	}
	p.Add(g)
}

// AccuracyChart is a horizontal bar chart of scenarios passed per server.
func AccuracyChart() (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "MCP Server Accuracy Comparison\nAI Framework Integration Scenarios"
	p.X.Label.Text = fmt.Sprintf("Scenarios Passed (out of %d)", TotalScenarios)
	p.X.Min, p.X.Max = 0, 22
	grid(p, true, false)

	names := make([]string, len(Results))
	values := make([]float64, len(Results))
	colors := make([]color.RGBA, len(Results))
	labels := make([]string, len(Results))
	for i, r := range Results {
		names[i] = r.Name
		values[i] = float64(r.Passed)
		colors[i] = r.Color
		labels[i] = fmt.Sprintf("%d/%d (%.0f%%)", r.Passed, TotalScenarios, AccuracyPercent(r.Passed, TotalScenarios))
	}
	if err := hbars(p, values, colors, labels, 0.3); err != nil {
		return nil, fmt.Errorf("accuracy chart: %w", err)
	}
	p.NominalY(names...)
	return p, nil
}

// TokenCharts returns the average and total token usage panels.
func TokenCharts() (*plot.Plot, *plot.Plot, error) {
	names := make([]string, len(Tokens))
	avg := make([]float64, len(Tokens))
	total := make([]float64, len(Tokens))
	colors := make([]color.RGBA, len(Tokens))
	avgLabels := make([]string, len(Tokens))
	totalLabels := make([]string, len(Tokens))
	for i, t := range Tokens {
		names[i] = t.Name
		avg[i], total[i] = float64(t.Avg), float64(t.Total)
		colors[i] = t.Color
		avgLabels[i] = printer.Sprintf("%d", t.Avg)
		totalLabels[i] = printer.Sprintf("%d", t.Total)
	}

	pa := plot.New()
	pa.Title.Text = "Average Token Usage"
	pa.X.Label.Text = "Average Tokens per Scenario"
	pa.X.Min = 0
	grid(pa, true, false)
	if err := hbars(pa, avg, colors, avgLabels, 100); err != nil {
		return nil, nil, fmt.Errorf("token chart: %w", err)
	}
	pa.NominalY(names...)

	pt := plot.New()
	pt.Title.Text = "Total Token Usage"
	pt.X.Label.Text = fmt.Sprintf("Total Tokens (%d scenarios)", TotalScenarios)
	pt.X.Min = 0
	grid(pt, true, false)
	if err := hbars(pt, total, colors, totalLabels, 2000); err != nil {
		return nil, nil, fmt.Errorf("token chart: %w", err)
	}
	pt.NominalY(names...)
	return pa, pt, nil
}

// EfficiencyChart plots accuracy against average tokens with quadrant guides
// at 10 scenarios and 3500 tokens.
func EfficiencyChart() (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "MCP Server Efficiency: Accuracy vs Token Usage\n(Top-left corner = ideal)"
	p.X.Label.Text = "Average Tokens per Scenario"
	p.Y.Label.Text = fmt.Sprintf("Scenarios Passed (out of %d)", TotalScenarios)
	p.X.Min, p.X.Max = 1000, 6500
	p.Y.Min, p.Y.Max = 0, 20
	grid(p, true, true)

	for _, l := range []plotter.XYs{
		{{X: 1000, Y: 10}, {X: 6500, Y: 10}},
		{{X: 3500, Y: 0}, {X: 3500, Y: 20}},
	} {
		line, err := plotter.NewLine(l)
		if err != nil {
			return nil, err
		}
		line.Color = guide
		line.Width = vg.Points(1.5)
		line.Dashes = dashes
		p.Add(line)
	}

	passed := make(map[string]int, len(Results))
	for _, r := range Results {
		passed[r.Name] = r.Passed
	}

	var xys plotter.XYs
	var names []string
	for i, t := range Tokens {
		pt := plotter.XY{X: float64(t.Avg), Y: float64(passed[t.Name])}
		s, err := plotter.NewScatter(plotter.XYs{pt})
		if err != nil {
			return nil, err
		}
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Color = t.Color
		s.GlyphStyle.Radius = vg.Points(10)
		if i == 0 {
			s.GlyphStyle.Radius = vg.Points(11)
		}
		p.Add(s)
		p.Legend.Add(t.Name, s)
		xys = append(xys, pt)
		names = append(names, t.Name)
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: names})
	if err != nil {
		return nil, err
	}
	labels.Offset = vg.Point{X: vg.Points(14), Y: vg.Points(10)}
	p.Add(labels)

	quadrants, err := plotter.NewLabels(plotter.XYLabels{
		XYs: plotter.XYs{{X: 5500, Y: 17}, {X: 2000, Y: 17}, {X: 5500, Y: 7}, {X: 2000, Y: 7}},
		Labels: []string{
			"High Accuracy\nHigh Tokens",
			"High Accuracy\nLow Tokens\n(IDEAL)",
			"Low Accuracy\nHigh Tokens",
			"Low Accuracy\nLow Tokens",
		},
	})
	if err != nil {
		return nil, err
	}
	for i := range quadrants.TextStyle {
		quadrants.TextStyle[i].Color = grey
		quadrants.TextStyle[i].XAlign = text.XCenter
	}
	quadrants.TextStyle[1].Color = green
	p.Add(quadrants)

	p.Legend.Top = false
	p.Legend.Left = false
	return p, nil
}

func saveSideBySide(path string, w, h vg.Length, left, right *plot.Plot) error {
	img := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(chartDPI), vgimg.UseBackgroundColor(color.White))
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: 1, Cols: 2, PadX: vg.Points(20), PadTop: vg.Points(10), PadBottom: vg.Points(10)}
	canvases := plot.Align([][]*plot.Plot{{left, right}}, tiles, dc)
	left.Draw(canvases[0][0])
	right.Draw(canvases[0][1])

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
