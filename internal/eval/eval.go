// Package eval scores a simulation run against real-world ground truth: the
// daily simulated purchase ratio is aligned with an external time series and
// their Pearson correlation is reported. Degenerate inputs (a constant
// series) produce a flagged NaN rather than an error; a correlation you
// cannot compute is still a result worth reporting.
package eval

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ladinzgit/personasim/internal/sim"
)

// ErrInsufficientData indicates fewer than two aligned rows, below which a
// correlation is meaningless.
var ErrInsufficientData = errors.New("fewer than 2 aligned data points")

// Point is one dated observation.
type Point struct {
	Date  string
	Value float64
}

// Result is the outcome of one evaluation.
type Result struct {
	// N is the number of aligned (date-joined) observations.
	N int

	// Correlation is the Pearson coefficient; NaN when Degenerate.
	Correlation float64

	// Degenerate is set when either series has zero variance, which makes
	// the coefficient undefined. Static baselines always trip this.
	Degenerate bool
}

// ReadSeries parses a ground-truth CSV with a Date column and the named
// value column (both matched case-insensitively), sorted by date.
func ReadSeries(r io.Reader, valueColumn string) ([]Point, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	dateIdx, valueIdx := -1, -1
	for i, name := range header {
		switch {
		case strings.EqualFold(strings.TrimSpace(name), "date"):
			dateIdx = i
		case strings.EqualFold(strings.TrimSpace(name), valueColumn):
			valueIdx = i
		}
	}
	if dateIdx < 0 {
		return nil, fmt.Errorf("no Date column in header %v", header)
	}
	if valueIdx < 0 {
		return nil, fmt.Errorf("no %q column in header %v", valueColumn, header)
	}

	var points []Point
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}

		value, err := strconv.ParseFloat(strings.TrimSpace(record[valueIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %q value %q: %w", valueColumn, record[valueIdx], err)
		}
		points = append(points, Point{Date: strings.TrimSpace(record[dateIdx]), Value: value})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}

// DailyYesRatio reduces decisions to one affirmative ratio per date, sorted
// by date. Static decisions (empty date) are skipped.
func DailyYesRatio(decisions []sim.Decision) []Point {
	type tally struct{ yes, total int }
	byDate := make(map[string]*tally)
	for _, d := range decisions {
		if d.Date == "" {
			continue
		}
		t, ok := byDate[d.Date]
		if !ok {
			t = &tally{}
			byDate[d.Date] = t
		}
		t.total++
		if d.Affirmative {
			t.yes++
		}
	}

	points := make([]Point, 0, len(byDate))
	for date, t := range byDate {
		points = append(points, Point{Date: date, Value: float64(t.yes) / float64(t.total)})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

// StaticRatio is the overall affirmative ratio of a static run. NaN for an
// empty run.
func StaticRatio(decisions []sim.Decision) float64 {
	if len(decisions) == 0 {
		return math.NaN()
	}
	yes := 0
	for _, d := range decisions {
		if d.Affirmative {
			yes++
		}
	}
	return float64(yes) / float64(len(decisions))
}

// Correlate inner-joins the simulated and ground-truth series on date and
// computes their Pearson correlation.
func Correlate(simulated, truth []Point) (Result, error) {
	truthByDate := make(map[string]float64, len(truth))
	for _, p := range truth {
		truthByDate[p.Date] = p.Value
	}

	var x, y []float64
	for _, p := range simulated {
		if v, ok := truthByDate[p.Date]; ok {
			x = append(x, p.Value)
			y = append(y, v)
		}
	}
	return correlate(x, y)
}

// CorrelateStatic broadcasts a scalar baseline ratio across every
// ground-truth date and correlates. A constant series has zero variance, so
// the result is always degenerate; it exists to make the static baseline's
// uselessness measurable.
func CorrelateStatic(ratio float64, truth []Point) (Result, error) {
	x := make([]float64, len(truth))
	y := make([]float64, len(truth))
	for i, p := range truth {
		x[i] = ratio
		y[i] = p.Value
	}
	return correlate(x, y)
}

func correlate(x, y []float64) (Result, error) {
	if len(x) < 2 {
		return Result{}, fmt.Errorf("%w: got %d", ErrInsufficientData, len(x))
	}
	r := Pearson(x, y)
	return Result{N: len(x), Correlation: r, Degenerate: math.IsNaN(r)}, nil
}

// Pearson computes the correlation coefficient of two equal-length series.
// Returns NaN when either series has zero variance.
func Pearson(x, y []float64) float64 {
	n := float64(len(x))
	var meanX, meanY float64
	for i := range x {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= n
	meanY /= n

	var cov, varX, varY float64
	for i := range x {
		dx, dy := x[i]-meanX, y[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(varX*varY)
}
