package chartpng

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/forPelevin/ytone/internal/types"
)

const (
	panelWidth  = 800
	panelHeight = 450
	gridCols    = 2
)

var labelColors = map[types.Emotion]drawing.Color{
	types.EmotionHappy:   {R: 0xf5, G: 0xb8, B: 0x2e, A: 0xff},
	types.EmotionSad:     {R: 0x5d, G: 0x76, B: 0xab, A: 0xff},
	types.EmotionAngry:   {R: 0xd3, G: 0x4c, B: 0x3e, A: 0xff},
	types.EmotionNeutral: {R: 0x96, G: 0x96, B: 0x96, A: 0xff},
	types.EmotionExcited: {R: 0xed, G: 0x7d, B: 0x31, A: 0xff},
	types.EmotionCalm:    {R: 0x6a, G: 0xa8, B: 0x5c, A: 0xff},
}

type Adapter struct{}

func New() *Adapter { return &Adapter{} }

// Render draws a four-panel overview (emotion distribution, pitch series,
// energy series, emotion timeline) and writes it as a single PNG.
func (a *Adapter) Render(report types.EmotionReport, outPath string) error {
	panels := make([]image.Image, 0, 4)

	pie, err := renderPanel(distributionPie(report))
	if err != nil {
		return fmt.Errorf("render distribution panel: %w", err)
	}
	panels = append(panels, pie)

	pitch, err := renderPanel(featureSeries(report, "Pitch Over Time", "hz", func(w types.EmotionWindow) float64 {
		return w.Features.AvgPitchHz
	}))
	if err != nil {
		return fmt.Errorf("render pitch panel: %w", err)
	}
	panels = append(panels, pitch)

	energy, err := renderPanel(featureSeries(report, "Energy Over Time", "rms", func(w types.EmotionWindow) float64 {
		return w.Features.AvgEnergy
	}))
	if err != nil {
		return fmt.Errorf("render energy panel: %w", err)
	}
	panels = append(panels, energy)

	timeline, err := renderPanel(timelineBars(report))
	if err != nil {
		return fmt.Errorf("render timeline panel: %w", err)
	}
	panels = append(panels, timeline)

	img := composeGrid(panels)
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode chart: %w", err)
	}
	return f.Close()
}

type renderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func renderPanel(c renderable) (image.Image, error) {
	var buf bytes.Buffer
	if err := c.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

func distributionPie(r types.EmotionReport) *chart.PieChart {
	labels := make([]types.Emotion, 0, len(r.Distribution))
	for l := range r.Distribution {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		di, dj := r.Distribution[labels[i]], r.Distribution[labels[j]]
		if di.SegmentCount != dj.SegmentCount {
			return di.SegmentCount > dj.SegmentCount
		}
		return labels[i] < labels[j]
	})

	values := make([]chart.Value, 0, len(labels))
	for _, l := range labels {
		d := r.Distribution[l]
		values = append(values, chart.Value{
			Value: float64(d.SegmentCount),
			Label: fmt.Sprintf("%s %.0f%%", l, d.Percentage),
			Style: chart.Style{FillColor: labelColors[l]},
		})
	}

	return &chart.PieChart{
		Title:  "Emotion Distribution",
		Width:  panelWidth,
		Height: panelHeight,
		Values: values,
	}
}

func featureSeries(r types.EmotionReport, title, yName string, pick func(types.EmotionWindow) float64) *chart.Chart {
	// Step points: two per window, so even a single-window report renders.
	xs := make([]float64, 0, 2*len(r.Windows))
	ys := make([]float64, 0, 2*len(r.Windows))
	for _, w := range r.Windows {
		v := pick(w)
		xs = append(xs, w.StartSeconds, w.EndSeconds)
		ys = append(ys, v, v)
	}

	lo, hi := minMax(ys)
	if hi-lo < 1e-9 {
		lo, hi = lo-1, hi+1
	} else {
		pad := 0.05 * (hi - lo)
		lo, hi = lo-pad, hi+pad
	}

	return &chart.Chart{
		Title:  title,
		Width:  panelWidth,
		Height: panelHeight,
		XAxis:  chart.XAxis{Name: "seconds"},
		YAxis: chart.YAxis{
			Name:  yName,
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: drawing.Color{R: 0x2e, G: 0x6e, B: 0xb5, A: 0xff},
					StrokeWidth: 2,
				},
			},
		},
	}
}

func timelineBars(r types.EmotionReport) *chart.BarChart {
	bars := make([]chart.Value, 0, len(r.Windows))
	labelEvery := len(r.Windows)/8 + 1
	for i, w := range r.Windows {
		label := ""
		if i%labelEvery == 0 {
			label = fmt.Sprintf("%.0fs", w.StartSeconds)
		}
		col := labelColors[w.Label]
		bars = append(bars, chart.Value{
			Value: 1,
			Label: label,
			Style: chart.Style{FillColor: col, StrokeColor: col},
		})
	}

	barWidth := (panelWidth - 100) / len(bars)
	if barWidth > 60 {
		barWidth = 60
	}
	if barWidth < 2 {
		barWidth = 2
	}

	return &chart.BarChart{
		Title:    "Emotion Timeline",
		Width:    panelWidth,
		Height:   panelHeight,
		BarWidth: barWidth,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Bars: bars,
	}
}

func composeGrid(panels []image.Image) *image.RGBA {
	rows := (len(panels) + gridCols - 1) / gridCols
	dst := image.NewRGBA(image.Rect(0, 0, gridCols*panelWidth, rows*panelHeight))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	for i, p := range panels {
		x := (i % gridCols) * panelWidth
		y := (i / gridCols) * panelHeight
		r := image.Rect(x, y, x+panelWidth, y+panelHeight)
		draw.Draw(dst, r, p, p.Bounds().Min, draw.Over)
	}
	return dst
}

func minMax(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	lo, hi := xs[0], xs[0]
	for _, v := range xs[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
