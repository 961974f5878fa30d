package upscaler

import (
	"encoding/json"
	"fmt"
	"strings"
)

// JobEntry is one entry in a per-client job listing. The service reports
// completed entries either as a bare URL string or as a record with a url
// field; both decode into the same shape.
type JobEntry struct {
	URL string `json:"url"`
}

// UnmarshalJSON accepts either "https://..." or {"url": "https://...", ...}.
func (e *JobEntry) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "\"") {
		var url string
		if err := json.Unmarshal(data, &url); err != nil {
			return fmt.Errorf("decode job entry string: %w", err)
		}
		e.URL = url
		return nil
	}
	type record JobEntry
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("decode job entry record: %w", err)
	}
	*e = JobEntry(rec)
	return nil
}

// Listing is the per-client job listing returned by the service, ordered
// oldest first within each sequence.
type Listing struct {
	Waiting   []JobEntry `json:"waiting"`
	Completed []JobEntry `json:"completed"`
	Failed    []JobEntry `json:"failed"`
}

// LatestCompleted returns the most recent completed entry, if any.
func (l Listing) LatestCompleted() (JobEntry, bool) {
	if len(l.Completed) == 0 {
		return JobEntry{}, false
	}
	return l.Completed[len(l.Completed)-1], true
}
