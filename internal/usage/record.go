// Package usage implements the LLM token/cost tracker of the design
// notes in spec §9: it reads the legacy timestamped-list wire format
// but only ever writes the date-keyed form, persisted in a sqlite
// database instead of the original's single JSON file.
package usage

import (
	"encoding/json"
	"fmt"
)

// Record is one usage event: a token count pair weighted by the
// model's dollars-per-billion-tokens price, matching the original
// tracker's five-integer record shape.
type Record struct {
	Time         int64 // unix seconds
	InputTokens  int64
	OutputTokens int64
	InputWeight  int64 // dollars per 1 billion input tokens
	OutputWeight int64 // dollars per 1 billion output tokens
}

// MarshalJSON renders a Record as the legacy 5-element array so
// anything still reading an old tracker file round-trips cleanly.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal([5]int64{r.Time, r.InputTokens, r.OutputTokens, r.InputWeight, r.OutputWeight})
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var arr [5]int64
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("usage: record must be a 5-element array: %w", err)
	}
	r.Time, r.InputTokens, r.OutputTokens, r.InputWeight, r.OutputWeight = arr[0], arr[1], arr[2], arr[3], arr[4]
	return nil
}

// Cost returns the dollar cost of r as a 3-decimal string, matching
// calc_usage's formatting in the original tracker.
func (r Record) Cost() string {
	return formatCost(r.InputTokens*r.InputWeight + r.OutputTokens*r.OutputWeight)
}

// CalcUsage sums the cost of every record, in the same cents-safe
// integer arithmetic as the original (cost*1e9, divided down at the end
// instead of accumulating floats).
func CalcUsage(records []Record) string {
	var total int64
	for _, r := range records {
		total += r.InputTokens*r.InputWeight + r.OutputTokens*r.OutputWeight
	}
	return formatCost(total)
}

// formatCost turns a cost*1e9 integer into a dollar string with 3
// decimal places, mirroring the original's two-stage integer division
// (divide by 1e6, then format the remaining 1e3 scale as a decimal).
func formatCost(totalTimesBillion int64) string {
	milli := totalTimesBillion / 1_000_000
	return fmt.Sprintf("%d.%03d", milli/1000, milli%1000)
}
