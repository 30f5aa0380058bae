package sim

import (
	"encoding/csv"
	"fmt"
	"io"
)

var decisionHeader = []string{"Agent_ID", "Simulation_Date", "Decision", "Reasoning"}

// WriteDecisions renders decisions as CSV, one row per task, in the order
// given.
func WriteDecisions(w io.Writer, decisions []Decision) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(decisionHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, d := range decisions {
		if err := cw.Write([]string{d.PersonaID, d.Date, d.Verdict, d.Reasoning}); err != nil {
			return fmt.Errorf("writing decision for %s: %w", d.PersonaID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadDecisions parses a decisions CSV written by WriteDecisions. The
// affirmative flag is recomputed from the decision text.
func ReadDecisions(r io.Reader) ([]Decision, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) < 3 {
		return nil, fmt.Errorf("unexpected header %v", header)
	}

	var decisions []Decision
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading decision row: %w", err)
		}

		verdict, affirmative := parseVerdict(record[2])
		d := Decision{
			PersonaID:   record[0],
			Date:        record[1],
			Verdict:     verdict,
			Affirmative: affirmative,
		}
		if len(record) > 3 {
			d.Reasoning = record[3]
		}
		decisions = append(decisions, d)
	}
	return decisions, nil
}
