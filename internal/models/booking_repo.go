package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingRepo interface {
	CreateNoOverlap(ctx context.Context, booking *Booking) error
	GetBooking(ctx context.Context, id int64) (*Booking, error)
	GetUserBooking(ctx context.Context, id, userID int64) (*Booking, error)
	ListByUser(ctx context.Context, userID int64, status BookingStatus, offset, limit int) ([]*Booking, int, error)
	ListForRoomWindow(ctx context.Context, roomID int64, from, to time.Time) ([]*Booking, error)
	SetStatus(ctx context.Context, id int64, to BookingStatus) error
	LinkPaymentOrder(ctx context.Context, bookingID, orderID int64) error
	Statistics(ctx context.Context, userID int64) (*BookingStatistics, error)
}

// CreateNoOverlap inserts the booking inside one transaction, locking
// any blocking booking rows for the room first so two concurrent
// requests for the same window cannot both pass the overlap check.
func (r *GormRepo) CreateNoOverlap(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Booking
		err := tx.Model(&Booking{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("room_id = ? AND status IN ?", booking.RoomID,
				[]BookingStatus{BookingPending, BookingConfirmed}).
			Where("start_time < ? AND end_time > ?", booking.EndTime, booking.StartTime).
			Take(&existing).Error

		if err == nil {
			return fmt.Errorf("room %d already booked in the requested window: %w",
				booking.RoomID, ErrConflict)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check booking overlap: %w", err)
		}

		if err := tx.Create(booking).Error; err != nil {
			return fmt.Errorf("create booking: %w", err)
		}
		return nil
	})
}

func (r *GormRepo) GetBooking(ctx context.Context, id int64) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("booking %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &booking, nil
}

func (r *GormRepo) GetUserBooking(ctx context.Context, id, userID int64) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).First(&booking, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("booking %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &booking, nil
}

func (r *GormRepo) ListByUser(ctx context.Context, userID int64, status BookingStatus, offset, limit int) ([]*Booking, int, error) {
	q := r.db.WithContext(ctx).Model(&Booking{}).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}
	var bookings []*Booking
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&bookings).Error; err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, int(total), nil
}

// ListForRoomWindow returns blocking bookings for the room intersecting
// [from, to); used to render per-hour availability.
func (r *GormRepo) ListForRoomWindow(ctx context.Context, roomID int64, from, to time.Time) ([]*Booking, error) {
	var bookings []*Booking
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND status IN ?", roomID,
			[]BookingStatus{BookingPending, BookingConfirmed}).
		Where("start_time < ? AND end_time > ?", to, from).
		Order("start_time ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("list room bookings: %w", err)
	}
	return bookings, nil
}

func (r *GormRepo) SetStatus(ctx context.Context, id int64, to BookingStatus) error {
	res := r.db.WithContext(ctx).Model(&Booking{}).Where("id = ?", id).Update("status", to)
	if res.Error != nil {
		return fmt.Errorf("set booking status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("booking %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *GormRepo) LinkPaymentOrder(ctx context.Context, bookingID, orderID int64) error {
	res := r.db.WithContext(ctx).Model(&Booking{}).Where("id = ?", bookingID).
		Update("payment_order_id", orderID)
	if res.Error != nil {
		return fmt.Errorf("link payment order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("booking %d: %w", bookingID, ErrNotFound)
	}
	return nil
}

func (r *GormRepo) Statistics(ctx context.Context, userID int64) (*BookingStatistics, error) {
	stats := &BookingStatistics{}
	type row struct {
		Status BookingStatus
		N      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&Booking{}).
		Select("status, count(*) as n").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("booking statistics: %w", err)
	}
	for _, rw := range rows {
		stats.Total += rw.N
		switch rw.Status {
		case BookingPending:
			stats.Pending = rw.N
		case BookingConfirmed:
			stats.Confirmed = rw.N
		case BookingCompleted:
			stats.Completed = rw.N
		case BookingCancelled:
			stats.Cancelled = rw.N
		}
	}
	return stats, nil
}
