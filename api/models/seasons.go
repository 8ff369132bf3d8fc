package models

import (
	"time"

	"github.com/ssnnd0/Saxon-Scout/storage"
)

type CreateSeasonRequest struct {
	Name      string          `json:"name" binding:"required"`
	Year      int             `json:"year" binding:"required"`
	GameName  string          `json:"gameName" binding:"required"`
	StartDate time.Time       `json:"startDate" binding:"required"`
	EndDate   time.Time       `json:"endDate" binding:"required"`
	IsCurrent bool            `json:"isCurrent"`
	Teams     []storage.Team  `json:"teams"`
	Matches   []storage.Match `json:"matches"`
}

// UpdateSeasonRequest carries only the fields being changed.
type UpdateSeasonRequest struct {
	Name      *string    `json:"name,omitempty"`
	Year      *int       `json:"year,omitempty"`
	GameName  *string    `json:"gameName,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	IsCurrent *bool      `json:"isCurrent,omitempty"`
}

type ImportTeamsRequest struct {
	Teams []storage.Team `json:"teams" binding:"required"`
}

type ImportMatchesRequest struct {
	Matches []storage.Match `json:"matches" binding:"required"`
}
