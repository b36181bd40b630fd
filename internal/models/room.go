package models

import (
	"time"

	"gorm.io/datatypes"
)

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomMaintenance RoomStatus = "maintenance"
)

type Room struct {
	ID          int64          `gorm:"primaryKey" json:"id"`
	StoreID     int64          `gorm:"index;not null" json:"store_id" validate:"required"`
	Name        string         `gorm:"size:100;not null" json:"name" validate:"required,max=100"`
	Capacity    int            `gorm:"not null" json:"capacity" validate:"required,min=1"`
	HourlyPrice float64        `gorm:"not null;index" json:"hourly_price" validate:"required,gt=0"`
	Discount    float64        `json:"discount,omitempty" validate:"omitempty,gt=0,lte=1"`
	Status      RoomStatus     `gorm:"size:20;default:'available';index" json:"status"`
	Images      datatypes.JSON `gorm:"type:jsonb" json:"images,omitempty"`
	Features    datatypes.JSON `gorm:"type:jsonb" json:"features,omitempty"`
	Facilities  datatypes.JSON `gorm:"type:jsonb" json:"facilities,omitempty"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Rating      float64        `gorm:"default:5.0" json:"rating"`
	ReviewCount int            `gorm:"default:0" json:"review_count"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// RoomFilter narrows room listings. Zero values mean "no constraint".
type RoomFilter struct {
	StoreID     int64
	MinCapacity int
	MinPrice    float64
	MaxPrice    float64
	Status      RoomStatus
	Query       string
}

// HourSlot reports occupancy of a single hour of a day.
type HourSlot struct {
	Hour     int  `json:"hour"`
	Occupied bool `json:"occupied"`
}
