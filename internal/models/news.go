package models

import "time"

type NewsStory struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	HappenedAt   time.Time `gorm:"not null" json:"happened_at"`
	Title        string    `gorm:"not null" json:"title"`
	Description  string    `gorm:"not null;default:''" json:"description"`
	Color        *string   `json:"color,omitempty"`
	Announcement bool      `gorm:"not null;default:false" json:"announcement"`
}

func (NewsStory) TableName() string {
	return "news"
}
