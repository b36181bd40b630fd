package models

import (
	"time"

	"gorm.io/datatypes"
)

type Store struct {
	ID            int64          `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"size:100;not null;index" json:"name" validate:"required,max=100"`
	Address       string         `gorm:"size:255;not null" json:"address" validate:"required,max=255"`
	Phone         string         `gorm:"size:20;not null" json:"phone" validate:"required,max=20"`
	BusinessHours string         `gorm:"size:100;default:'00:00-24:00'" json:"business_hours"`
	Rating        float64        `gorm:"default:5.0" json:"rating"`
	ImageURL      string         `gorm:"size:255" json:"image_url,omitempty"`
	Latitude      float64        `json:"latitude,omitempty"`
	Longitude     float64        `json:"longitude,omitempty"`
	Features      datatypes.JSON `gorm:"type:jsonb" json:"features,omitempty"`
	Description   string         `gorm:"type:text" json:"description,omitempty"`
	IsActive      bool           `gorm:"default:true;index" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`

	Rooms []Room `gorm:"foreignKey:StoreID" json:"rooms,omitempty"`
}
