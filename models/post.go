package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Post is a published review article. Categories are stored as a JSON array
// column; Views is maintained server-side and never accepted from clients.
type Post struct {
	ID         uint                        `gorm:"primaryKey" json:"id"`
	Title      string                      `gorm:"size:255;not null" json:"title"`
	Slug       string                      `gorm:"size:255;index" json:"slug"`
	Excerpt    string                      `gorm:"size:1024" json:"excerpt"`
	Content    string                      `gorm:"type:text;not null" json:"content"`
	Image      string                      `gorm:"size:1024" json:"image"`
	Author     string                      `gorm:"size:128" json:"author"`
	Date       time.Time                   `gorm:"index" json:"date"`
	Categories datatypes.JSONSlice[string] `json:"categories"`
	Views      uint                        `gorm:"not null;default:0" json:"views"`
	Featured   bool                        `gorm:"index;not null;default:false" json:"featured"`
}

// BeforeCreate assigns the publication date; clients never supply it.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.Date.IsZero() {
		p.Date = time.Now()
	}
	return nil
}

// BeforeUpdate refreshes the date on every full-record save.
func (p *Post) BeforeUpdate(tx *gorm.DB) error {
	p.Date = time.Now()
	return nil
}

// HasCategory reports whether the post carries the given category label.
func (p *Post) HasCategory(c string) bool {
	for _, have := range p.Categories {
		if have == c {
			return true
		}
	}
	return false
}
