package eval

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ladinzgit/personasim/internal/sim"
)

func TestPearson(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
		want float64
	}{
		{"perfect positive", []float64{1, 2, 3, 4}, []float64{10, 20, 30, 40}, 1},
		{"perfect negative", []float64{1, 2, 3, 4}, []float64{8, 6, 4, 2}, -1},
		{"constant x", []float64{5, 5, 5}, []float64{1, 2, 3}, math.NaN()},
		{"constant y", []float64{1, 2, 3}, []float64{7, 7, 7}, math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Pearson(tt.x, tt.y)
			if math.IsNaN(tt.want) {
				if !math.IsNaN(got) {
					t.Errorf("Pearson() = %v, want NaN", got)
				}
				return
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Pearson() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCorrelate_InnerJoinsOnDate(t *testing.T) {
	simulated := []Point{
		{"2020-12-10", 0.2},
		{"2020-12-17", 0.4},
		{"2020-12-24", 0.6},
		{"2020-12-31", 0.8}, // no ground truth for this date
	}
	truth := []Point{
		{"2020-12-10", 10},
		{"2020-12-17", 20},
		{"2020-12-24", 30},
		{"2021-01-07", 99}, // no simulation for this date
	}

	result, err := Correlate(simulated, truth)
	if err != nil {
		t.Fatalf("Correlate() error = %v", err)
	}
	if result.N != 3 {
		t.Errorf("N = %d, want 3", result.N)
	}
	if math.Abs(result.Correlation-1) > 1e-9 {
		t.Errorf("Correlation = %v, want 1", result.Correlation)
	}
	if result.Degenerate {
		t.Error("Degenerate = true, want false")
	}
}

func TestCorrelate_InsufficientData(t *testing.T) {
	simulated := []Point{{"2020-12-10", 0.5}}
	truth := []Point{{"2020-12-10", 10}, {"2020-12-17", 20}}

	if _, err := Correlate(simulated, truth); err == nil {
		t.Fatal("Correlate() = nil error, want ErrInsufficientData")
	} else if !strings.Contains(err.Error(), "fewer than 2") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCorrelateStatic_AlwaysDegenerate(t *testing.T) {
	truth := []Point{{"2020-12-10", 10}, {"2020-12-17", 20}, {"2020-12-24", 15}}

	result, err := CorrelateStatic(0.42, truth)
	if err != nil {
		t.Fatalf("CorrelateStatic() error = %v", err)
	}
	if !result.Degenerate {
		t.Error("Degenerate = false, want true for a constant baseline")
	}
	if !math.IsNaN(result.Correlation) {
		t.Errorf("Correlation = %v, want NaN", result.Correlation)
	}
	if result.N != 3 {
		t.Errorf("N = %d, want 3", result.N)
	}
}

func TestDailyYesRatio(t *testing.T) {
	decisions := []sim.Decision{
		{PersonaID: "a", Date: "2020-12-10", Affirmative: true},
		{PersonaID: "b", Date: "2020-12-10", Affirmative: false},
		{PersonaID: "a", Date: "2020-12-17", Affirmative: true},
		{PersonaID: "b", Date: "2020-12-17", Affirmative: true},
		{PersonaID: "c", Date: "", Affirmative: true}, // static row, skipped
	}

	points := DailyYesRatio(decisions)
	if len(points) != 2 {
		t.Fatalf("len = %d, want 2", len(points))
	}
	if points[0].Date != "2020-12-10" || points[0].Value != 0.5 {
		t.Errorf("point 0 = %+v, want 2020-12-10/0.5", points[0])
	}
	if points[1].Date != "2020-12-17" || points[1].Value != 1.0 {
		t.Errorf("point 1 = %+v, want 2020-12-17/1.0", points[1])
	}
}

func TestStaticRatio(t *testing.T) {
	decisions := []sim.Decision{
		{Affirmative: true},
		{Affirmative: false},
		{Affirmative: false},
		{Affirmative: true},
	}
	if got := StaticRatio(decisions); got != 0.5 {
		t.Errorf("StaticRatio() = %v, want 0.5", got)
	}
	if got := StaticRatio(nil); !math.IsNaN(got) {
		t.Errorf("StaticRatio(nil) = %v, want NaN", got)
	}
}

func TestReadSeries(t *testing.T) {
	csvText := "date,Volume,Stock_Price\n2020-12-17,100,12.41\n2020-12-10,500,14.30\n"

	points, err := ReadSeries(strings.NewReader(csvText), "stock_price")
	if err != nil {
		t.Fatalf("ReadSeries() error = %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("len = %d, want 2", len(points))
	}
	// Sorted by date regardless of file order.
	if points[0].Date != "2020-12-10" || points[0].Value != 14.30 {
		t.Errorf("point 0 = %+v, want 2020-12-10/14.30", points[0])
	}
}

func TestReadSeries_MissingColumn(t *testing.T) {
	csvText := "Date,Close\n2020-12-10,14.30\n"
	if _, err := ReadSeries(strings.NewReader(csvText), "Positive_Ratio"); err == nil {
		t.Fatal("ReadSeries() = nil error, want missing-column error")
	}
}

func TestSavePlot_WritesPNG(t *testing.T) {
	simulated := []Point{{"2020-12-10", 0.2}, {"2020-12-17", 0.5}, {"2020-12-24", 0.3}}
	truth := []Point{{"2020-12-10", 14.3}, {"2020-12-17", 12.4}, {"2020-12-24", 13.1}}

	result, err := Correlate(simulated, truth)
	if err != nil {
		t.Fatalf("Correlate() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "diag.png")
	if err := SavePlot(path, simulated, truth, result); err != nil {
		t.Fatalf("SavePlot() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat plot: %v", err)
	}
	if info.Size() == 0 {
		t.Error("plot file is empty")
	}
}
