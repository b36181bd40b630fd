package models

import "time"

type User struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	OpenID    string    `gorm:"size:64;uniqueIndex;not null" json:"openid"`
	UnionID   string    `gorm:"size:64;index" json:"unionid,omitempty"`
	Nickname  string    `gorm:"size:100" json:"nickname"`
	AvatarURL string    `gorm:"size:255" json:"avatar_url"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Email     string    `gorm:"size:100" json:"email,omitempty"`
	Role      string    `gorm:"size:20;default:'user'" json:"role"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	IsDeleted bool      `gorm:"default:false;index" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserSession persists issued token pairs so a logout can revoke them
// before their JWT expiry.
type UserSession struct {
	ID               int64     `gorm:"primaryKey" json:"id"`
	UserID           int64     `gorm:"index;not null" json:"user_id"`
	Token            string    `gorm:"size:500;uniqueIndex;not null" json:"-"`
	RefreshToken     string    `gorm:"size:500;uniqueIndex" json:"-"`
	ExpiresAt        time.Time `gorm:"not null" json:"expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
	IsActive         bool      `gorm:"default:true;index" json:"is_active"`
	IPAddress        string    `gorm:"size:45" json:"-"`
	UserAgent        string    `gorm:"size:255" json:"-"`
	CreatedAt        time.Time `json:"created_at"`
}

// UserUpdate is the writable subset of a profile.
type UserUpdate struct {
	Nickname  *string `json:"nickname" validate:"omitempty,max=100"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,max=255"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
	Email     *string `json:"email" validate:"omitempty,email,max=100"`
}
