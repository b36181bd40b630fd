package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"gorm.io/datatypes"

	"github.com/xinghui/parlor/internal/helpers"
	"github.com/xinghui/parlor/internal/models"
)

type ReviewService struct {
	reviews  models.ReviewRepo
	bookings models.BookingRepo
	catalog  models.CatalogRepo
	cld      *cloudinary.Cloudinary
	logger   *slog.Logger
}

func NewReviewService(reviews models.ReviewRepo, bookings models.BookingRepo, catalog models.CatalogRepo, cld *cloudinary.Cloudinary, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		bookings: bookings,
		catalog:  catalog,
		cld:      cld,
		logger:   logger,
	}
}

// Create posts a review for the caller's own completed booking. One
// review per booking; the unique index backs that up.
func (rs *ReviewService) Create(ctx context.Context, userID int64, req *models.ReviewCreate) (*models.Review, error) {
	if err := models.Validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalid, err)
	}

	booking, err := rs.bookings.GetUserBooking(ctx, req.BookingID, userID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingCompleted {
		return nil, fmt.Errorf("booking %d is %s, only completed bookings can be reviewed: %w",
			booking.ID, booking.Status, models.ErrConflict)
	}

	review := &models.Review{
		UserID:      userID,
		RoomID:      booking.RoomID,
		BookingID:   booking.ID,
		Rating:      req.Rating,
		Content:     req.Content,
		IsAnonymous: req.IsAnonymous,
	}

	if len(req.Images) > 0 {
		urls := req.Images
		if rs.cld != nil {
			uploaded, err := helpers.UploadImages(ctx, rs.cld, req.Images, helpers.ReviewFolder)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", models.ErrGateway, err)
			}
			urls = uploaded
		}
		blob, err := json.Marshal(urls)
		if err != nil {
			return nil, fmt.Errorf("encode review images: %w", err)
		}
		review.Images = datatypes.JSON(blob)
	}

	if err := rs.reviews.CreateReview(ctx, review); err != nil {
		return nil, err
	}

	if err := rs.refreshRoomRating(ctx, booking.RoomID); err != nil {
		rs.logger.Error("failed to refresh room rating",
			"room_id", booking.RoomID, "error", err)
	}
	return review, nil
}

// Reply attaches the store's response to a review, once.
func (rs *ReviewService) Reply(ctx context.Context, reviewID int64, reply string) (*models.Review, error) {
	if reply == "" {
		return nil, fmt.Errorf("%w: reply content is required", models.ErrInvalid)
	}

	review, err := rs.reviews.GetReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.Reply != "" {
		return nil, fmt.Errorf("review %d already has a reply: %w", review.ID, models.ErrConflict)
	}

	now := time.Now()
	if err := rs.reviews.SetReply(ctx, review.ID, reply, now); err != nil {
		return nil, err
	}
	review.Reply = reply
	review.RepliedAt = &now
	return review, nil
}

func (rs *ReviewService) Get(ctx context.Context, id int64) (*models.Review, error) {
	return rs.reviews.GetReview(ctx, id)
}

// GetByBooking returns the caller's review for one of their bookings,
// so the client can tell a reviewable booking from a reviewed one.
func (rs *ReviewService) GetByBooking(ctx context.Context, userID, bookingID int64) (*models.Review, error) {
	if _, err := rs.bookings.GetUserBooking(ctx, bookingID, userID); err != nil {
		return nil, err
	}
	return rs.reviews.GetReviewByBooking(ctx, bookingID)
}

func (rs *ReviewService) ListByRoom(ctx context.Context, roomID int64, page, size int) ([]*models.Review, int, int, int, error) {
	offset, limit, page, size := pageWindow(page, size)
	reviews, total, err := rs.reviews.ListByRoom(ctx, roomID, offset, limit)
	return reviews, total, page, size, err
}

func (rs *ReviewService) ListMine(ctx context.Context, userID int64, page, size int) ([]*models.Review, int, int, int, error) {
	offset, limit, page, size := pageWindow(page, size)
	reviews, total, err := rs.reviews.ListReviewsByUser(ctx, userID, offset, limit)
	return reviews, total, page, size, err
}

func (rs *ReviewService) RoomStats(ctx context.Context, roomID int64) (*models.ReviewStatistics, error) {
	if _, err := rs.catalog.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}
	return rs.reviews.RoomRatingStats(ctx, roomID)
}

func (rs *ReviewService) refreshRoomRating(ctx context.Context, roomID int64) error {
	stats, err := rs.reviews.RoomRatingStats(ctx, roomID)
	if err != nil {
		return err
	}
	return rs.catalog.UpdateRoomRating(ctx, roomID, stats.AverageRating, int(stats.Total))
}
