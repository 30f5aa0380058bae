package review

import (
	"strings"
	"testing"
)

func TestDateInt(t *testing.T) {
	tests := []struct {
		date    string
		want    int
		wantErr bool
	}{
		{"2020-12-10", 20201210, false},
		{"2021-01-01", 20210101, false},
		{"2020-1-1", 0, true},
		{"20201210", 0, true},
		{"not-a-date", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := DateInt(tt.date)
		if (err != nil) != tt.wantErr {
			t.Errorf("DateInt(%q) error = %v, wantErr %v", tt.date, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("DateInt(%q) = %d, want %d", tt.date, got, tt.want)
		}
	}
}

func TestFormatDateInt(t *testing.T) {
	if got := FormatDateInt(20201210); got != "2020-12-10" {
		t.Errorf("FormatDateInt(20201210) = %q, want 2020-12-10", got)
	}
	// Non 8-digit values pass through in decimal form.
	if got := FormatDateInt(0); got != "0" {
		t.Errorf("FormatDateInt(0) = %q, want 0", got)
	}
}

func TestResolveDate(t *testing.T) {
	tests := []struct {
		name    string
		r       Review
		want    int
		wantErr bool
	}{
		{
			name: "updated preferred over created",
			// 2020-12-10 vs 2020-06-01 UTC
			r:    Review{TimestampUpdated: "1607558400", TimestampCreated: "1590969600"},
			want: 20201210,
		},
		{
			name: "created fallback",
			r:    Review{TimestampCreated: "1590969600"},
			want: 20200601,
		},
		{
			name: "unparsable updated falls back to created",
			r:    Review{TimestampUpdated: "soon", TimestampCreated: "1590969600"},
			want: 20200601,
		},
		{
			name:    "both missing",
			r:       Review{},
			wantErr: true,
		},
		{
			name:    "both unparsable",
			r:       Review{TimestampUpdated: "x", TimestampCreated: "y"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.r.ResolveDate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveDate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ResolveDate() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestVotedUp(t *testing.T) {
	tests := []struct {
		rating string
		want   bool
	}{
		{"Recommended", true},
		{"recommended", true},
		{"Not Recommended", false},
		{"not recommended", false},
		{"", false},
		{"Mixed", false},
	}

	for _, tt := range tests {
		r := Review{Rating: tt.rating}
		if got := r.VotedUp(); got != tt.want {
			t.Errorf("VotedUp() with rating %q = %v, want %v", tt.rating, got, tt.want)
		}
	}
}

func TestPlaytimeHours(t *testing.T) {
	tests := []struct {
		playtime string
		want     float64
	}{
		{"123.5 hours", 123.5},
		{"42", 42},
		{"", 0},
		{"unknown", 0},
	}

	for _, tt := range tests {
		r := Review{Playtime: tt.playtime}
		if got := r.PlaytimeHours(); got != tt.want {
			t.Errorf("PlaytimeHours() with %q = %v, want %v", tt.playtime, got, tt.want)
		}
	}
}

func TestReadCSV(t *testing.T) {
	input := strings.Join([]string{
		"ReviewID,review,language,Rating,Playtime,timestamp_updated,timestamp_created",
		`1,"Great game",english,Recommended,100 hours,1607558400,1590969600`,
		`2,"Buggy mess",english,Not Recommended,5 hours,,1590969600`,
		`3,"Bon jeu",french,Recommended,10 hours,1607558400,`,
	}, "\n")

	reviews, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(reviews) != 3 {
		t.Fatalf("ReadCSV() returned %d reviews, want 3", len(reviews))
	}

	first := reviews[0]
	if first.ID != "1" || first.Text != "Great game" || first.Language != "english" {
		t.Errorf("unexpected first review: %+v", first)
	}
	if first.TimestampUpdated != "1607558400" {
		t.Errorf("TimestampUpdated = %q, want 1607558400", first.TimestampUpdated)
	}
}

func TestReadCSV_MissingReviewColumn(t *testing.T) {
	input := "id,text\n1,hello\n"
	if _, err := ReadCSV(strings.NewReader(input)); err == nil {
		t.Fatal("ReadCSV() = nil error, want missing column error")
	}
}

func TestReadCSV_RaggedRows(t *testing.T) {
	input := "ReviewID,review,language\n1,short row\n"
	reviews, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(reviews) != 1 || reviews[0].Language != "" {
		t.Errorf("ReadCSV() = %+v, want one review with empty language", reviews)
	}
}
