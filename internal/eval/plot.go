package eval

import (
	"fmt"
	"math"

	"github.com/fogleman/gg"
)

const (
	plotWidth   = 1000
	plotHeight  = 700
	plotMargin  = 60.0
	panelGap    = 50.0
	pointRadius = 3.0
)

// SavePlot renders a two-panel diagnostic PNG: the simulated ratio and the
// ground-truth series overlaid over time (both min-max normalized so they
// share an axis), and a scatter of aligned pairs. Series are joined on date,
// the same alignment Correlate uses.
func SavePlot(path string, simulated, truth []Point, result Result) error {
	simAligned, truthAligned := alignByDate(simulated, truth)
	if len(simAligned) == 0 {
		return fmt.Errorf("no aligned points to plot")
	}

	dc := gg.NewContext(plotWidth, plotHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	panelH := (plotHeight - 2*plotMargin - panelGap) / 2
	drawTimeSeries(dc, plotMargin, panelH, simAligned, truthAligned)
	drawScatter(dc, plotMargin+panelH+panelGap, panelH, simAligned, truthAligned)

	dc.SetRGB(0, 0, 0)
	label := fmt.Sprintf("Pearson r = %.4f (n = %d)", result.Correlation, result.N)
	if result.Degenerate {
		label = fmt.Sprintf("Pearson r undefined: zero variance (n = %d)", result.N)
	}
	dc.DrawStringAnchored(label, plotWidth/2, plotMargin/2, 0.5, 0.5)

	return dc.SavePNG(path)
}

// alignByDate inner-joins two series on date, preserving sim order.
func alignByDate(simulated, truth []Point) (s, t []Point) {
	truthByDate := make(map[string]float64, len(truth))
	for _, p := range truth {
		truthByDate[p.Date] = p.Value
	}
	for _, p := range simulated {
		if v, ok := truthByDate[p.Date]; ok {
			s = append(s, p)
			t = append(t, Point{Date: p.Date, Value: v})
		}
	}
	return s, t
}

func drawTimeSeries(dc *gg.Context, top, height float64, simulated, truth []Point) {
	left := plotMargin
	width := float64(plotWidth) - 2*plotMargin

	dc.SetRGB(0.85, 0.85, 0.85)
	dc.SetLineWidth(1)
	dc.DrawRectangle(left, top, width, height)
	dc.Stroke()

	// Both series normalized to [0,1] to share the panel.
	dc.SetLineWidth(2)
	dc.SetRGB(0.85, 0.2, 0.2)
	drawNormalizedLine(dc, left, top, width, height, values(simulated))
	dc.SetRGB(0.2, 0.35, 0.8)
	drawNormalizedLine(dc, left, top, width, height, values(truth))

	dc.SetRGB(0.85, 0.2, 0.2)
	dc.DrawStringAnchored("simulated ratio", left+80, top-12, 0.5, 0.5)
	dc.SetRGB(0.2, 0.35, 0.8)
	dc.DrawStringAnchored("ground truth", left+220, top-12, 0.5, 0.5)

	dc.SetRGB(0.3, 0.3, 0.3)
	dc.DrawStringAnchored(simulated[0].Date, left, top+height+16, 0, 0.5)
	dc.DrawStringAnchored(simulated[len(simulated)-1].Date, left+width, top+height+16, 1, 0.5)
}

func drawNormalizedLine(dc *gg.Context, left, top, width, height float64, vals []float64) {
	lo, hi := minMax(vals)
	span := hi - lo
	if span == 0 {
		span = 1 // flat line drawn mid-panel
	}
	for i, v := range vals {
		x := left
		if len(vals) > 1 {
			x += width * float64(i) / float64(len(vals)-1)
		}
		norm := (v - lo) / span
		y := top + height - norm*height
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.Stroke()
}

func drawScatter(dc *gg.Context, top, height float64, simulated, truth []Point) {
	left := plotMargin
	width := float64(plotWidth) - 2*plotMargin

	dc.SetRGB(0.85, 0.85, 0.85)
	dc.SetLineWidth(1)
	dc.DrawRectangle(left, top, width, height)
	dc.Stroke()

	sx := values(simulated)
	sy := values(truth)
	xLo, xHi := minMax(sx)
	yLo, yHi := minMax(sy)
	xSpan, ySpan := xHi-xLo, yHi-yLo
	if xSpan == 0 {
		xSpan = 1
	}
	if ySpan == 0 {
		ySpan = 1
	}

	dc.SetRGB(0.2, 0.5, 0.3)
	for i := range sx {
		x := left + width*(sx[i]-xLo)/xSpan
		y := top + height - height*(sy[i]-yLo)/ySpan
		dc.DrawCircle(x, y, pointRadius)
		dc.Fill()
	}

	dc.SetRGB(0.3, 0.3, 0.3)
	dc.DrawStringAnchored("simulated ratio", left+width/2, top+height+16, 0.5, 0.5)
	dc.Push()
	dc.RotateAbout(-math.Pi/2, left-30, top+height/2)
	dc.DrawStringAnchored("ground truth", left-30, top+height/2, 0.5, 0.5)
	dc.Pop()
}

func values(points []Point) []float64 {
	vals := make([]float64, len(points))
	for i, p := range points {
		vals[i] = p.Value
	}
	return vals
}

func minMax(vals []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
