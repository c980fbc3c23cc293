package models

import "time"

// Subscriber is a newsletter signup. Emails are unique; re-subscribing is a no-op.
type Subscriber struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
