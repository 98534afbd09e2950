package usage

import "time"

// CleanupPolicy is the caller-opt-in replacement for the original
// tracker's always-on auto_clean_up_records flag (spec §9 open
// question): callers decide whether and how aggressively to compact a
// user's history. The zero value never merges or expires anything.
type CleanupPolicy struct {
	// MergeWindow collapses consecutive records of the same weight tier
	// whose timestamps fall within this window into one record, summing
	// their token counts and averaging their timestamps.
	MergeWindow time.Duration
	// MaxAge drops records older than this, relative to now.
	MaxAge time.Duration
}

// Enabled reports whether policy does anything at all.
func (p CleanupPolicy) Enabled() bool {
	return p.MergeWindow > 0 || p.MaxAge > 0
}

// Cleanup rewrites userID's full record history in store according to
// policy: old records are dropped first, then adjacent records are
// merged, the same two-pass order as the original's clean_up_records.
func (s *Store) Cleanup(userID string, policy CleanupPolicy) error {
	if !policy.Enabled() {
		return nil
	}

	records, err := s.RecordsAfter(userID, time.Unix(0, 0))
	if err != nil {
		return err
	}

	merged := compact(records, policy)

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM usage_records WHERE user_id = ?`, userID); err != nil {
		return err
	}
	for _, r := range merged {
		date := dateKey(time.Unix(r.Time, 0).UTC())
		if _, err := tx.Exec(
			`INSERT INTO usage_records (user_id, date, time, input_tokens, output_tokens, input_weight, output_weight)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			userID, date, r.Time, r.InputTokens, r.OutputTokens, r.InputWeight, r.OutputWeight,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// compact applies MaxAge filtering then MergeWindow coalescing, assuming
// records arrives sorted by time ascending (RecordsAfter guarantees this).
func compact(records []Record, policy CleanupPolicy) []Record {
	var kept []Record
	if policy.MaxAge > 0 {
		cutoff := time.Now().Add(-policy.MaxAge).Unix()
		for _, r := range records {
			if r.Time >= cutoff {
				kept = append(kept, r)
			}
		}
	} else {
		kept = records
	}

	if policy.MergeWindow <= 0 {
		return kept
	}

	var merged []Record
	windowSecs := int64(policy.MergeWindow.Seconds())
	for _, r := range kept {
		if n := len(merged); n > 0 {
			last := &merged[n-1]
			if last.Time+windowSecs > r.Time && last.InputWeight == r.InputWeight && last.OutputWeight == r.OutputWeight {
				last.Time = (last.Time + r.Time) / 2
				last.InputTokens += r.InputTokens
				last.OutputTokens += r.OutputTokens
				continue
			}
		}
		merged = append(merged, r)
	}
	return merged
}
