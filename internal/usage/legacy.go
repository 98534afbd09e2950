package usage

import (
	"encoding/json"
	"os"
	"time"
)

// legacyTracker is the original tracker.save_to_file shape: a flat
// object mapping user id to the full timestamped list of that user's
// records, with no date bucketing at all.
type legacyTracker map[string][]Record

// ImportLegacyFile reads an old tracker.json (the flat per-user list
// format) and records every entry into store, bucketed by the record's
// own timestamp converted to a yyyymmdd date key. It is a one-time
// migration path: nothing in this package ever writes that format back.
func ImportLegacyFile(store *Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var legacy legacyTracker
	if err := json.Unmarshal(data, &legacy); err != nil {
		return err
	}

	for userID, records := range legacy {
		for _, r := range records {
			date := dateKey(time.Unix(r.Time, 0).UTC())
			if err := store.insert(userID, date, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func dateKey(t time.Time) string {
	return t.Format("20060102")
}
