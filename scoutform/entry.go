package scoutform

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Alliance colors. FRC matches are always red vs blue.
const (
	AllianceRed  = "red"
	AllianceBlue = "blue"
)

// Entry is one scout's observations for one team in one match. The dynamic
// form values live in Fields keyed by field id; on the wire they are
// flattened to top-level JSON keys, matching what dashboards and the CSV
// exporter expect. (seasonId, teamNumber, matchNumber) is deliberately not
// unique: several scouts watching the same match is normal.
type Entry struct {
	ID          string
	SeasonID    string
	TeamNumber  string
	MatchNumber string
	Alliance    string
	ScoutName   string
	Timestamp   time.Time
	Synced      bool
	Fields      map[string]any
}

var reservedEntryKeys = map[string]bool{
	"id":          true,
	"seasonId":    true,
	"teamNumber":  true,
	"matchNumber": true,
	"alliance":    true,
	"scoutName":   true,
	"timestamp":   true,
	"synced":      true,
}

// MarshalJSON flattens Fields into the top level of the object.
func (e Entry) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Fields)+8)
	for k, v := range e.Fields {
		if !reservedEntryKeys[k] {
			out[k] = v
		}
	}
	out["id"] = e.ID
	out["seasonId"] = e.SeasonID
	out["teamNumber"] = e.TeamNumber
	out["matchNumber"] = e.MatchNumber
	out["alliance"] = e.Alliance
	out["scoutName"] = e.ScoutName
	out["timestamp"] = e.Timestamp.UTC().Format(time.RFC3339)
	out["synced"] = e.Synced
	return json.Marshal(out)
}

// UnmarshalJSON pulls the identity keys out of a flat object and collects
// every remaining key into Fields.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.ID = stringAt(raw, "id")
	e.SeasonID = stringAt(raw, "seasonId")
	e.TeamNumber = stringAt(raw, "teamNumber")
	e.MatchNumber = stringAt(raw, "matchNumber")
	e.Alliance = stringAt(raw, "alliance")
	e.ScoutName = stringAt(raw, "scoutName")
	if ts, err := time.Parse(time.RFC3339, stringAt(raw, "timestamp")); err == nil {
		e.Timestamp = ts
	}
	if b, ok := raw["synced"].(bool); ok {
		e.Synced = b
	}

	e.Fields = make(map[string]any)
	for k, v := range raw {
		if !reservedEntryKeys[k] {
			e.Fields[k] = v
		}
	}
	return nil
}

func stringAt(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// Clone returns a deep-enough copy: Fields is copied, values are shared.
func (e *Entry) Clone() *Entry {
	dup := *e
	dup.Fields = make(map[string]any, len(e.Fields))
	for k, v := range e.Fields {
		dup.Fields[k] = v
	}
	return &dup
}

// Context carries the ambient identity a new draft is seeded with.
type Context struct {
	SeasonID  string
	ScoutName string
}

// BuildInitialEntry derives a fresh draft from a config: exactly one key per
// field across all categories, each defaulted per its declared type, plus a
// new id and timestamp. The draft starts unsynced on the red alliance with
// team and match unset.
func BuildInitialEntry(cfg *Config, fc Context) *Entry {
	e := &Entry{
		ID:        uuid.NewString(),
		SeasonID:  fc.SeasonID,
		Alliance:  AllianceRed,
		ScoutName: fc.ScoutName,
		Timestamp: time.Now().UTC(),
		Synced:    false,
		Fields:    make(map[string]any),
	}
	if cfg == nil {
		return e
	}
	for _, cat := range cfg.Categories {
		for _, f := range cat.Fields {
			e.Fields[f.ID] = DefaultValue(f)
		}
	}
	return e
}
