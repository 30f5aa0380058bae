// Package groundtruth derives a daily sentiment series from the raw review
// corpus: per-day positive ratio plus a 7-day moving average. The output CSV
// is the reference series the evaluator correlates simulations against.
package groundtruth

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ladinzgit/personasim/internal/review"
)

// MovingWindow is the trailing window length for the smoothed ratio.
const MovingWindow = 7

// DailyStat is one day of aggregated review sentiment.
type DailyStat struct {
	Date      string // YYYY-MM-DD
	Reviews   int
	Positive  int
	Ratio     float64
	MovingAvg float64
}

// Build aggregates reviews into per-day stats sorted by date. Reviews with
// no usable date are dropped; an empty language keeps every language.
func Build(reviews []review.Review, language string) []DailyStat {
	type tally struct{ total, positive int }
	byDate := make(map[int]*tally)

	for _, r := range reviews {
		if strings.TrimSpace(r.Text) == "" {
			continue
		}
		if language != "" && !strings.EqualFold(r.Language, language) {
			continue
		}
		dateInt, err := r.ResolveDate()
		if err != nil {
			continue
		}

		t, ok := byDate[dateInt]
		if !ok {
			t = &tally{}
			byDate[dateInt] = t
		}
		t.total++
		if r.VotedUp() {
			t.positive++
		}
	}

	dates := make([]int, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Ints(dates)

	stats := make([]DailyStat, 0, len(dates))
	for _, d := range dates {
		t := byDate[d]
		stats = append(stats, DailyStat{
			Date:     review.FormatDateInt(d),
			Reviews:  t.total,
			Positive: t.positive,
			Ratio:    float64(t.positive) / float64(t.total),
		})
	}

	// Trailing moving average over the last MovingWindow rows.
	for i := range stats {
		start := i - MovingWindow + 1
		if start < 0 {
			start = 0
		}
		sum := 0.0
		for j := start; j <= i; j++ {
			sum += stats[j].Ratio
		}
		stats[i].MovingAvg = sum / float64(i-start+1)
	}
	return stats
}

// WriteCSV renders the series with a Positive_Ratio column the evaluator
// reads back.
func WriteCSV(w io.Writer, stats []DailyStat) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Review_Count", "Positive_Count", "Positive_Ratio", "MA7"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, s := range stats {
		record := []string{
			s.Date,
			strconv.Itoa(s.Reviews),
			strconv.Itoa(s.Positive),
			strconv.FormatFloat(s.Ratio, 'f', 4, 64),
			strconv.FormatFloat(s.MovingAvg, 'f', 4, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row %s: %w", s.Date, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
