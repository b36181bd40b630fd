package models

import (
	"time"

	"gorm.io/datatypes"
)

type Review struct {
	ID          int64          `gorm:"primaryKey" json:"id"`
	UserID      int64          `gorm:"index;not null" json:"user_id"`
	RoomID      int64          `gorm:"index;not null" json:"room_id"`
	BookingID   int64          `gorm:"uniqueIndex;not null" json:"booking_id"`
	Rating      int            `gorm:"not null;index" json:"rating"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	Images      datatypes.JSON `gorm:"type:jsonb" json:"images,omitempty"`
	Reply       string         `gorm:"type:text" json:"reply,omitempty"`
	RepliedAt   *time.Time     `json:"replied_at,omitempty"`
	IsAnonymous bool           `gorm:"default:false" json:"is_anonymous"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type ReviewCreate struct {
	BookingID   int64    `json:"booking_id" validate:"required"`
	Rating      int      `json:"rating" validate:"required,min=1,max=5"`
	Content     string   `json:"content" validate:"required,max=1000"`
	Images      []string `json:"images" validate:"omitempty,max=9"`
	IsAnonymous bool     `json:"is_anonymous"`
}

type ReviewStatistics struct {
	Total         int64         `json:"total"`
	AverageRating float64       `json:"average_rating"`
	Distribution  map[int]int64 `json:"rating_distribution"`
}
