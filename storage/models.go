package storage

import (
	"time"

	"github.com/ssnnd0/Saxon-Scout/scoutform"
)

// Team is a season-scoped team record, keyed by number. Imports merge
// last-write-wins on the number.
type Team struct {
	Number     string `json:"number"`
	Name       string `json:"name"`
	Location   string `json:"location,omitempty"`
	Website    string `json:"website,omitempty"`
	RookieYear int    `json:"rookieYear,omitempty"`
}

// Match is a season-scoped match record, keyed by number.
type Match struct {
	Number       string    `json:"number"`
	Time         time.Time `json:"time,omitempty"`
	RedAlliance  []string  `json:"redAlliance"`
	BlueAlliance []string  `json:"blueAlliance"`
	RedScore     int       `json:"redScore,omitempty"`
	BlueScore    int       `json:"blueScore,omitempty"`
}

// Season is the top-level container for a competition year. At most one
// season has IsCurrent set; the storage layer enforces that when a season is
// created or updated.
type Season struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Year           int               `json:"year"`
	IsCurrent      bool              `json:"isCurrent"`
	StartDate      time.Time         `json:"startDate"`
	EndDate        time.Time         `json:"endDate"`
	GameName       string            `json:"gameName"`
	Teams          []Team            `json:"teams"`
	Matches        []Match           `json:"matches"`
	ScoutingConfig *scoutform.Config `json:"scoutingConfig,omitempty"`
}

// User roles.
const (
	RoleAdmin = "admin"
	RoleScout = "scout"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"passwordHash"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	LastLogin    time.Time `json:"lastLogin,omitempty"`
}

// Invite is a one-time registration code an admin hands to a new scout.
type Invite struct {
	Code      string    `json:"code"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	Used      bool      `json:"used"`
}

// ScoutingStats is the dashboard summary over all entries.
type ScoutingStats struct {
	TotalMatches int        `json:"totalMatches"`
	TotalTeams   int        `json:"totalTeams"`
	DataPoints   int        `json:"dataPoints"`
	LastUpdated  *time.Time `json:"lastUpdated"`
}
