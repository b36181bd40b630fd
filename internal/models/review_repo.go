package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type ReviewRepo interface {
	CreateReview(ctx context.Context, review *Review) error
	GetReview(ctx context.Context, id int64) (*Review, error)
	GetReviewByBooking(ctx context.Context, bookingID int64) (*Review, error)
	ListByRoom(ctx context.Context, roomID int64, offset, limit int) ([]*Review, int, error)
	ListReviewsByUser(ctx context.Context, userID int64, offset, limit int) ([]*Review, int, error)
	SetReply(ctx context.Context, id int64, reply string, at time.Time) error
	RoomRatingStats(ctx context.Context, roomID int64) (*ReviewStatistics, error)
}

func (r *GormRepo) CreateReview(ctx context.Context, review *Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("booking %d already reviewed: %w", review.BookingID, ErrConflict)
		}
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

func (r *GormRepo) GetReview(ctx context.Context, id int64) (*Review, error) {
	var review Review
	err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("review %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return &review, nil
}

func (r *GormRepo) GetReviewByBooking(ctx context.Context, bookingID int64) (*Review, error) {
	var review Review
	err := r.db.WithContext(ctx).First(&review, "booking_id = ?", bookingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("review for booking %d: %w", bookingID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get review by booking: %w", err)
	}
	return &review, nil
}

func (r *GormRepo) ListByRoom(ctx context.Context, roomID int64, offset, limit int) ([]*Review, int, error) {
	q := r.db.WithContext(ctx).Model(&Review{}).Where("room_id = ?", roomID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}
	var reviews []*Review
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("list room reviews: %w", err)
	}
	return reviews, int(total), nil
}

func (r *GormRepo) ListReviewsByUser(ctx context.Context, userID int64, offset, limit int) ([]*Review, int, error) {
	q := r.db.WithContext(ctx).Model(&Review{}).Where("user_id = ?", userID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}
	var reviews []*Review
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("list user reviews: %w", err)
	}
	return reviews, int(total), nil
}

func (r *GormRepo) SetReply(ctx context.Context, id int64, reply string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&Review{}).Where("id = ?", id).
		Updates(map[string]interface{}{"reply": reply, "replied_at": at})
	if res.Error != nil {
		return fmt.Errorf("set review reply: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("review %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *GormRepo) RoomRatingStats(ctx context.Context, roomID int64) (*ReviewStatistics, error) {
	stats := &ReviewStatistics{Distribution: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	type row struct {
		Rating int
		N      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&Review{}).
		Select("rating, count(*) as n").
		Where("room_id = ?", roomID).
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("review statistics: %w", err)
	}
	var sum int64
	for _, rw := range rows {
		stats.Total += rw.N
		sum += int64(rw.Rating) * rw.N
		stats.Distribution[rw.Rating] = rw.N
	}
	if stats.Total > 0 {
		stats.AverageRating = float64(sum) / float64(stats.Total)
	}
	return stats, nil
}
