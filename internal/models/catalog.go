package models

import "time"

// BodyPart is a catalog entry exercises are grouped under.
type BodyPart struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"unique;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Exercise is a catalog entry managed by admins and browsed on the
// workouts routes.
type Exercise struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	YoutubeLink string    `gorm:"not null" json:"youtube_link"`
	BodyPartID  uint      `gorm:"index;not null" json:"body_part_id"`
	Description string    `gorm:"not null" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
