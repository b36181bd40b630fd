package models

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID             int64         `gorm:"primaryKey" json:"id"`
	UserID         int64         `gorm:"index;not null" json:"user_id"`
	RoomID         int64         `gorm:"index;not null" json:"room_id"`
	StartTime      time.Time     `gorm:"index;not null" json:"start_time"`
	EndTime        time.Time     `gorm:"index;not null" json:"end_time"`
	ContactName    string        `gorm:"size:50;not null" json:"contact_name"`
	ContactPhone   string        `gorm:"size:20;not null" json:"contact_phone"`
	Remark         string        `gorm:"type:text" json:"remark,omitempty"`
	OriginalAmount float64       `gorm:"not null" json:"original_amount"`
	DiscountAmount float64       `gorm:"default:0" json:"discount_amount"`
	FinalAmount    float64       `gorm:"not null" json:"final_amount"`
	Status         BookingStatus `gorm:"size:20;default:'pending';index" json:"status"`
	PaymentOrderID *int64        `gorm:"index" json:"payment_order_id,omitempty"`
	CreatedAt      time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Overlaps reports whether the booking's [start, end) window intersects
// the given one. End boundaries touching are not an overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}

// Blocking reports whether this booking holds its time slot against new
// reservations. Cancelled and completed bookings release the slot.
func (b *Booking) Blocking() bool {
	return b.Status == BookingPending || b.Status == BookingConfirmed
}

// CanCancel follows the linear status machine: only pending and
// confirmed bookings may be cancelled.
func (b *Booking) CanCancel() bool {
	return b.Status == BookingPending || b.Status == BookingConfirmed
}

// CanTransition validates a move in the status machine
// pending -> confirmed -> completed|cancelled, pending -> cancelled.
func (b *Booking) CanTransition(to BookingStatus) bool {
	switch b.Status {
	case BookingPending:
		return to == BookingConfirmed || to == BookingCancelled
	case BookingConfirmed:
		return to == BookingCompleted || to == BookingCancelled
	default:
		return false
	}
}

type BookingCreate struct {
	RoomID       int64     `json:"room_id" validate:"required"`
	StartTime    time.Time `json:"start_time" validate:"required"`
	EndTime      time.Time `json:"end_time" validate:"required"`
	ContactName  string    `json:"contact_name" validate:"required,max=50"`
	ContactPhone string    `json:"contact_phone" validate:"required,max=20"`
	Remark       string    `json:"remark" validate:"omitempty,max=500"`
}

type BookingStatistics struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Confirmed int64 `json:"confirmed"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
}
