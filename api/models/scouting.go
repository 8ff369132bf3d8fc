package models

import "github.com/ssnnd0/Saxon-Scout/scoutform"

type BulkCreateRequest struct {
	Entries []*scoutform.Entry `json:"entries" binding:"required"`
}

type BulkCreateResponse struct {
	Message string             `json:"message"`
	Entries []*scoutform.Entry `json:"entries"`
}

type ImportResponse struct {
	Message  string `json:"message"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
}
