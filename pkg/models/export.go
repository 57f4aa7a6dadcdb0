package models

import "time"

// Export is a point-in-time snapshot of everything the bot persists,
// produced for the admin download.
type Export struct {
	TakenAt  time.Time         `json:"taken_at"`
	Settings map[string]string `json:"settings"`
	Channels []string          `json:"channels"`
	Users    []*User           `json:"users"`
}
