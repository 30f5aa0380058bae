// Package review defines the review domain model and the parsing rules that
// turn raw review exports into storable documents.
package review

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Review is one raw record from the review export, prior to filtering.
type Review struct {
	ID               string
	Text             string
	Language         string
	Rating           string
	Playtime         string
	TimestampUpdated string // unix seconds, may be empty
	TimestampCreated string // unix seconds, may be empty
}

// Document is one ingested review, ready for the vector store.
// DateInt uses YYYYMMDD form so cutoff comparisons are integer range checks.
type Document struct {
	ID       string
	Content  string
	DateInt  int
	VotedUp  bool
	Playtime float64
	Source   string
}

// Hit is a search result: a stored document plus its similarity distance.
type Hit struct {
	Document
	Distance float64
}

// DateInt converts a YYYY-MM-DD date string to its integer YYYYMMDD form.
func DateInt(date string) (int, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, fmt.Errorf("parsing date %q: %w", date, err)
	}
	return t.Year()*10000 + int(t.Month())*100 + t.Day(), nil
}

// FormatDateInt converts an integer YYYYMMDD date back to YYYY-MM-DD.
// Values that are not 8 digits are returned as-is in decimal form.
func FormatDateInt(dateInt int) string {
	s := strconv.Itoa(dateInt)
	if len(s) != 8 {
		return s
	}
	return s[:4] + "-" + s[4:6] + "-" + s[6:]
}

// ResolveDate applies the timestamp resolution policy: the updated timestamp
// wins, the created timestamp is the fallback, and a record with neither (or
// with unparsable values) yields an error so the caller can skip and count it.
func (r Review) ResolveDate() (int, error) {
	for _, ts := range []string{r.TimestampUpdated, r.TimestampCreated} {
		if ts == "" {
			continue
		}
		unix, err := strconv.ParseInt(strings.TrimSpace(ts), 10, 64)
		if err != nil {
			continue
		}
		t := time.Unix(unix, 0).UTC()
		return t.Year()*10000 + int(t.Month())*100 + t.Day(), nil
	}
	return 0, fmt.Errorf("review %q: no usable timestamp", r.ID)
}

// VotedUp derives the sentiment flag from the rating text: a rating is
// positive when it contains "recommended" without a leading "not".
func (r Review) VotedUp() bool {
	rating := strings.ToLower(r.Rating)
	return strings.Contains(rating, "recommended") && !strings.Contains(rating, "not")
}

// PlaytimeHours parses the playtime column leniently: "123.5 hours" and
// "123.5" both yield 123.5, anything unparsable yields 0.
func (r Review) PlaytimeHours() float64 {
	s := strings.TrimSpace(strings.ReplaceAll(strings.ToLower(r.Playtime), "hours", ""))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
