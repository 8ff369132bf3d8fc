// Package exchange holds the import/export codecs for scouting data: CSV and
// JSON for round-tripping entries between servers, and the FMS HTML report
// parser for pulling match schedules into a season.
package exchange

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/ssnnd0/Saxon-Scout/scoutform"
)

// fixedColumns lead every export in a stable order; dynamic field columns
// follow sorted by name. Internal bookkeeping keys never leave the server.
var fixedColumns = []string{"teamNumber", "matchNumber", "alliance", "scoutName", "timestamp"}

var internalColumns = map[string]bool{"id": true, "seasonId": true, "synced": true}

// ExportCSV writes entries as CSV with one column per field id seen across
// the whole set. encoding/csv handles RFC 4180 quoting of values containing
// commas or quotes.
func ExportCSV(w io.Writer, entries []*scoutform.Entry) error {
	columns := collectColumns(entries)

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}

	for _, e := range entries {
		row := make([]string, 0, len(columns))
		for _, col := range columns {
			row = append(row, cellValue(e, col))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ImportCSV reads entries from CSV produced by ExportCSV (or a spreadsheet
// with matching headers). Rows missing a team or match number are skipped
// and counted; every accepted row is stamped with the target season and
// synced=true. Field values come back as strings; the dynamic schema is not
// consulted, matching how imports always behaved.
func ImportCSV(r io.Reader, seasonID string) ([]*scoutform.Entry, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("invalid CSV header: %w", err)
	}

	var entries []*scoutform.Entry
	skipped := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("invalid CSV row: %w", err)
		}

		values := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				values[col] = row[i]
			}
		}
		if values["teamNumber"] == "" || values["matchNumber"] == "" {
			skipped++
			continue
		}

		entry := &scoutform.Entry{
			ID:          values["id"],
			SeasonID:    seasonID,
			TeamNumber:  values["teamNumber"],
			MatchNumber: values["matchNumber"],
			Alliance:    values["alliance"],
			ScoutName:   values["scoutName"],
			Synced:      true,
			Fields:      make(map[string]any),
		}
		if ts, err := time.Parse(time.RFC3339, values["timestamp"]); err == nil {
			entry.Timestamp = ts
		}
		for col, v := range values {
			if !internalColumns[col] && !isFixedColumn(col) {
				entry.Fields[col] = v
			}
		}
		entries = append(entries, entry)
	}

	return entries, skipped, nil
}

func collectColumns(entries []*scoutform.Entry) []string {
	seen := make(map[string]bool, 16)
	for _, col := range fixedColumns {
		seen[col] = true
	}
	var dynamic []string
	for _, e := range entries {
		for k := range e.Fields {
			if !seen[k] && !internalColumns[k] {
				seen[k] = true
				dynamic = append(dynamic, k)
			}
		}
	}
	sort.Strings(dynamic)
	return append(append([]string{}, fixedColumns...), dynamic...)
}

func cellValue(e *scoutform.Entry, col string) string {
	switch col {
	case "teamNumber":
		return e.TeamNumber
	case "matchNumber":
		return e.MatchNumber
	case "alliance":
		return e.Alliance
	case "scoutName":
		return e.ScoutName
	case "timestamp":
		return e.Timestamp.UTC().Format(time.RFC3339)
	}
	v, ok := e.Fields[col]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func isFixedColumn(col string) bool {
	for _, c := range fixedColumns {
		if c == col {
			return true
		}
	}
	return false
}
