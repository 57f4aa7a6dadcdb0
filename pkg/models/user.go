package models

import "time"

// User is one row of the identity ledger. Phone stays nil until the user
// shares a contact; a later touch without a contact never clears it.
type User struct {
	TelegramID int64     `json:"telegram_id"`
	Username   *string   `json:"username"`
	Phone      *string   `json:"phone"`
	JoinedAt   time.Time `json:"joined_at"`
}
