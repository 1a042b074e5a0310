package models

import "time"

// Export describes an uploaded bookmark snapshot and a temporary download URL.
type Export struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
