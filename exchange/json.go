package exchange

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ssnnd0/Saxon-Scout/scoutform"
)

// ExportJSON writes entries as a JSON array of flat objects.
func ExportJSON(w io.Writer, entries []*scoutform.Entry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

// ImportJSON reads a JSON array of flat entry objects. Same skip and
// force-stamp rules as ImportCSV.
func ImportJSON(r io.Reader, seasonID string) ([]*scoutform.Entry, int, error) {
	var raw []*scoutform.Entry
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, 0, fmt.Errorf("invalid JSON: %w", err)
	}

	entries := make([]*scoutform.Entry, 0, len(raw))
	skipped := 0
	for _, e := range raw {
		if e.TeamNumber == "" || e.MatchNumber == "" {
			skipped++
			continue
		}
		e.SeasonID = seasonID
		e.Synced = true
		entries = append(entries, e)
	}
	return entries, skipped, nil
}
