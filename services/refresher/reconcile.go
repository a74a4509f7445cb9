package refresher

import (
	"strings"
	"vtop-backend/lib/scrapers/vtop"
)

// Reconcile merges a freshly scraped attendance log with the user's
// stored overrides for the same course partition, keeping only the
// corrections that are still meaningful:
//
//   - the logged session vanished from server data → drop
//   - the server still says "not posted"           → keep
//   - the server posted an absence that contradicts
//     the user's correction                        → keep
//   - the server now agrees                        → drop
//
// Running it twice over the same log is a no-op.
func Reconcile(log []vtop.AttendanceLogEntry, overrides []vtop.AttendanceOverride) []vtop.AttendanceOverride {
	byKey := make(map[string]vtop.AttendanceLogEntry, len(log))
	for _, entry := range log {
		byKey[entry.Key()] = entry
	}

	kept := []vtop.AttendanceOverride{}
	for _, override := range overrides {
		entry, ok := byKey[override.ID]
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(entry.Status), "not posted") {
			kept = append(kept, override)
			continue
		}
		if !entry.IsPresent && entry.IsPresent != override.IsPresent {
			kept = append(kept, override)
			continue
		}
	}
	return kept
}
