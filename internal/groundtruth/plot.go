package groundtruth

import (
	"fmt"

	"github.com/fogleman/gg"
)

const (
	plotWidth  = 1000
	plotHeight = 450
	plotMargin = 60.0
)

// SavePlot renders the daily ratio and its moving average as a PNG trend
// chart.
func SavePlot(path string, stats []DailyStat) error {
	if len(stats) == 0 {
		return fmt.Errorf("no stats to plot")
	}

	dc := gg.NewContext(plotWidth, plotHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	left := plotMargin
	top := plotMargin
	width := float64(plotWidth) - 2*plotMargin
	height := float64(plotHeight) - 2*plotMargin

	dc.SetRGB(0.85, 0.85, 0.85)
	dc.SetLineWidth(1)
	dc.DrawRectangle(left, top, width, height)
	dc.Stroke()

	// Ratio axis is fixed to [0,1]; gridlines at 0.25 steps.
	dc.SetRGB(0.92, 0.92, 0.92)
	for _, frac := range []float64{0.25, 0.5, 0.75} {
		y := top + height - frac*height
		dc.DrawLine(left, y, left+width, y)
		dc.Stroke()
	}

	plotLine := func(value func(DailyStat) float64) {
		for i, s := range stats {
			x := left
			if len(stats) > 1 {
				x += width * float64(i) / float64(len(stats)-1)
			}
			y := top + height - value(s)*height
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.Stroke()
	}

	dc.SetLineWidth(1)
	dc.SetRGB(0.7, 0.75, 0.9)
	plotLine(func(s DailyStat) float64 { return s.Ratio })

	dc.SetLineWidth(2.5)
	dc.SetRGB(0.2, 0.35, 0.8)
	plotLine(func(s DailyStat) float64 { return s.MovingAvg })

	dc.SetRGB(0.3, 0.3, 0.3)
	dc.DrawStringAnchored("daily positive ratio (7-day moving average in bold)", plotWidth/2, plotMargin/2, 0.5, 0.5)
	dc.DrawStringAnchored(stats[0].Date, left, top+height+16, 0, 0.5)
	dc.DrawStringAnchored(stats[len(stats)-1].Date, left+width, top+height+16, 1, 0.5)

	return dc.SavePNG(path)
}
