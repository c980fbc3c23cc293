package models

import "time"

// UploadedFile records stored post images for orphan cleanup. An upload starts
// unclaimed with an expiry; attaching its URL to a saved post claims it and
// takes it off the cleanup path.
type UploadedFile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FilePath  string    `gorm:"size:1024;not null" json:"file_path"`
	URL       string    `gorm:"size:1024;not null;index" json:"url"`
	Claimed   bool      `gorm:"not null;default:false" json:"claimed"`
	ExpireAt  time.Time `gorm:"index" json:"expire_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
