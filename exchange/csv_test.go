package exchange

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssnnd0/Saxon-Scout/scoutform"
)

func exportEntries() []*scoutform.Entry {
	ts := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return []*scoutform.Entry{
		{
			ID: "e1", SeasonID: "s1", TeamNumber: "611", MatchNumber: "1",
			Alliance: scoutform.AllianceRed, ScoutName: "alice", Timestamp: ts, Synced: true,
			Fields: map[string]any{"autoScore": 7, "notes": "fast, reliable"},
		},
		{
			ID: "e2", SeasonID: "s1", TeamNumber: "254", MatchNumber: "1",
			Alliance: scoutform.AllianceBlue, ScoutName: "bob", Timestamp: ts, Synced: true,
			Fields: map[string]any{"autoScore": 3, "climbed": true},
		},
	}
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, exportEntries()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	t.Run("Happy path - fixed columns first, dynamic sorted after", func(t *testing.T) {
		assert.Equal(t, []string{
			"teamNumber", "matchNumber", "alliance", "scoutName", "timestamp",
			"autoScore", "climbed", "notes",
		}, records[0])
	})

	t.Run("Happy path - internal keys never exported", func(t *testing.T) {
		for _, col := range records[0] {
			assert.NotContains(t, []string{"id", "seasonId", "synced"}, col)
		}
	})

	t.Run("Happy path - missing field renders as empty cell", func(t *testing.T) {
		// First entry has no "climbed" value.
		assert.Equal(t, "", records[1][6])
		assert.Equal(t, "true", records[2][6])
	})

	t.Run("Happy path - comma value survives quoting", func(t *testing.T) {
		assert.Equal(t, "fast, reliable", records[1][7])
	})
}

func TestImportCSV(t *testing.T) {
	t.Run("Happy path - round trip keeps team, match and fields", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, ExportCSV(&buf, exportEntries()))

		entries, skipped, err := ImportCSV(&buf, "s9")
		require.NoError(t, err)
		assert.Zero(t, skipped)
		require.Len(t, entries, 2)

		first := entries[0]
		assert.Equal(t, "611", first.TeamNumber)
		assert.Equal(t, "1", first.MatchNumber)
		assert.Equal(t, "s9", first.SeasonID, "imports are stamped with the target season")
		assert.True(t, first.Synced)
		// Values come back as strings; the schema is not consulted.
		assert.Equal(t, "7", first.Fields["autoScore"])
		assert.Equal(t, "fast, reliable", first.Fields["notes"])
	})

	t.Run("Happy path - rows without team or match are skipped and counted", func(t *testing.T) {
		csvData := strings.Join([]string{
			"teamNumber,matchNumber,alliance,autoScore",
			"611,1,red,5",
			",1,red,5",
			"611,,blue,2",
		}, "\n")

		entries, skipped, err := ImportCSV(strings.NewReader(csvData), "s1")
		require.NoError(t, err)
		assert.Len(t, entries, 1)
		assert.Equal(t, 2, skipped)
	})

	t.Run("Happy path - empty input yields nothing", func(t *testing.T) {
		entries, skipped, err := ImportCSV(strings.NewReader(""), "s1")
		require.NoError(t, err)
		assert.Empty(t, entries)
		assert.Zero(t, skipped)
	})
}

func TestImportJSON(t *testing.T) {
	t.Run("Happy path - round trip through the JSON codec", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, ExportJSON(&buf, exportEntries()))

		entries, skipped, err := ImportJSON(&buf, "s9")
		require.NoError(t, err)
		assert.Zero(t, skipped)
		require.Len(t, entries, 2)
		assert.Equal(t, "s9", entries[0].SeasonID)
		assert.True(t, entries[0].Synced)
	})

	t.Run("Happy path - incomplete objects are skipped", func(t *testing.T) {
		data := `[{"teamNumber":"611","matchNumber":"1"},{"teamNumber":"254"}]`
		entries, skipped, err := ImportJSON(strings.NewReader(data), "s1")
		require.NoError(t, err)
		assert.Len(t, entries, 1)
		assert.Equal(t, 1, skipped)
	})

	t.Run("Unhappy path - malformed JSON", func(t *testing.T) {
		_, _, err := ImportJSON(strings.NewReader("{not json"), "s1")
		assert.Error(t, err)
	})
}
