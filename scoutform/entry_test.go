package scoutform

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		ID:       "cfg-1",
		SeasonID: "season-1",
		Name:     "Test Game",
		Version:  1,
		Categories: []Category{
			{
				ID:    "auto",
				Title: "Autonomous",
				Fields: []Field{
					{ID: "autoScore", Type: FieldNumber, Label: "Auto Score"},
					{ID: "autoNotes", Type: FieldText, Label: "Auto Notes"},
					{ID: "crossedLine", Type: FieldBoolean, Label: "Crossed Line"},
				},
			},
			{
				ID:    "teleop",
				Title: "Teleop",
				Fields: []Field{
					{ID: "drivetrain", Type: FieldEnum, Label: "Drivetrain", Options: []Option{
						{Value: "swerve", Label: "Swerve"},
						{Value: "tank", Label: "Tank"},
					}},
					{ID: "driverSkill", Type: FieldRating, Label: "Driver Skill"},
				},
			},
		},
	}
}

func TestBuildInitialEntry(t *testing.T) {
	cfg := testConfig()
	fc := Context{SeasonID: "season-1", ScoutName: "alice"}

	t.Run("Happy path - one key per field with typed defaults", func(t *testing.T) {
		entry := BuildInitialEntry(cfg, fc)

		require.Len(t, entry.Fields, 5)
		assert.Equal(t, 0, entry.Fields["autoScore"])
		assert.Equal(t, "", entry.Fields["autoNotes"])
		assert.Equal(t, false, entry.Fields["crossedLine"])
		assert.Equal(t, "swerve", entry.Fields["drivetrain"])
		assert.Equal(t, "", entry.Fields["driverSkill"], "an untouched rating starts empty, not at 0")

		assert.NotEmpty(t, entry.ID)
		assert.Equal(t, "season-1", entry.SeasonID)
		assert.Equal(t, "alice", entry.ScoutName)
		assert.Equal(t, AllianceRed, entry.Alliance)
		assert.Empty(t, entry.TeamNumber)
		assert.Empty(t, entry.MatchNumber)
		assert.False(t, entry.Synced)
		assert.False(t, entry.Timestamp.IsZero())
	})

	t.Run("Happy path - enum without options defaults to empty string", func(t *testing.T) {
		cfg := &Config{Categories: []Category{{ID: "c", Fields: []Field{
			{ID: "pick", Type: FieldEnum},
		}}}}
		entry := BuildInitialEntry(cfg, fc)
		assert.Equal(t, "", entry.Fields["pick"])
	})

	t.Run("Happy path - two drafts get distinct ids", func(t *testing.T) {
		a := BuildInitialEntry(cfg, fc)
		b := BuildInitialEntry(cfg, fc)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("Unhappy path - nil config still yields a usable draft", func(t *testing.T) {
		entry := BuildInitialEntry(nil, fc)
		assert.NotNil(t, entry.Fields)
		assert.Empty(t, entry.Fields)
	})
}

func TestEntryJSONFlattening(t *testing.T) {
	ts := time.Date(2026, 3, 14, 15, 9, 0, 0, time.UTC)
	entry := &Entry{
		ID:          "e-1",
		SeasonID:    "season-1",
		TeamNumber:  "611",
		MatchNumber: "12",
		Alliance:    AllianceBlue,
		ScoutName:   "bob",
		Timestamp:   ts,
		Synced:      true,
		Fields: map[string]any{
			"autoScore": 7,
			"autoNotes": "fast start",
		},
	}

	t.Run("Happy path - fields flatten to top-level keys", func(t *testing.T) {
		data, err := json.Marshal(entry)
		require.NoError(t, err)

		var raw map[string]any
		require.NoError(t, json.Unmarshal(data, &raw))

		assert.Equal(t, "e-1", raw["id"])
		assert.Equal(t, "611", raw["teamNumber"])
		assert.Equal(t, "fast start", raw["autoNotes"])
		assert.Equal(t, float64(7), raw["autoScore"])
		assert.Equal(t, "2026-03-14T15:09:00Z", raw["timestamp"])
		_, hasNested := raw["fields"]
		assert.False(t, hasNested, "Fields map must not appear as a nested object")
	})

	t.Run("Happy path - round trip preserves identity and fields", func(t *testing.T) {
		data, err := json.Marshal(entry)
		require.NoError(t, err)

		var back Entry
		require.NoError(t, json.Unmarshal(data, &back))

		assert.Equal(t, entry.ID, back.ID)
		assert.Equal(t, entry.SeasonID, back.SeasonID)
		assert.Equal(t, entry.TeamNumber, back.TeamNumber)
		assert.Equal(t, entry.MatchNumber, back.MatchNumber)
		assert.Equal(t, entry.Alliance, back.Alliance)
		assert.Equal(t, entry.ScoutName, back.ScoutName)
		assert.True(t, back.Synced)
		assert.True(t, entry.Timestamp.Equal(back.Timestamp))
		assert.Equal(t, "fast start", back.Fields["autoNotes"])
		// JSON numbers come back as float64.
		assert.Equal(t, float64(7), back.Fields["autoScore"])
	})

	t.Run("Unhappy path - reserved keys never leak into Fields", func(t *testing.T) {
		var back Entry
		require.NoError(t, json.Unmarshal([]byte(`{"id":"x","teamNumber":"1","custom":"v"}`), &back))
		assert.Equal(t, "x", back.ID)
		assert.Equal(t, "v", back.Fields["custom"])
		_, ok := back.Fields["id"]
		assert.False(t, ok)
		_, ok = back.Fields["teamNumber"]
		assert.False(t, ok)
	})
}

func TestEntryClone(t *testing.T) {
	entry := &Entry{ID: "e-1", Fields: map[string]any{"a": 1}}
	dup := entry.Clone()
	dup.Fields["a"] = 2
	dup.ID = "e-2"

	assert.Equal(t, 1, entry.Fields["a"])
	assert.Equal(t, "e-1", entry.ID)
}
