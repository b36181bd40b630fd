package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/xinghui/parlor/internal/models"
)

type BookingService struct {
	bookings models.BookingRepo
	catalog  models.CatalogRepo
	payments models.PaymentRepo
	logger   *slog.Logger
}

func NewBookingService(bookings models.BookingRepo, catalog models.CatalogRepo, payments models.PaymentRepo, logger *slog.Logger) *BookingService {
	return &BookingService{
		bookings: bookings,
		catalog:  catalog,
		payments: payments,
		logger:   logger,
	}
}

// Create reserves a room slot and opens the matching payment order. The
// overlap check and insert run inside one locked transaction, so two
// concurrent requests for the same window cannot both succeed.
func (bs *BookingService) Create(ctx context.Context, userID int64, req *models.BookingCreate) (*models.Booking, error) {
	if err := models.Validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalid, err)
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, fmt.Errorf("%w: end time must be after start time", models.ErrInvalid)
	}
	if req.StartTime.Before(time.Now()) {
		return nil, fmt.Errorf("%w: booking must start in the future", models.ErrInvalid)
	}

	room, err := bs.catalog.GetRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if room.Status != models.RoomAvailable {
		return nil, fmt.Errorf("room %d is under maintenance: %w", room.ID, models.ErrConflict)
	}

	hours := req.EndTime.Sub(req.StartTime).Hours()
	original := room.HourlyPrice * hours
	final := original
	if room.Discount > 0 && room.Discount < 1 {
		final = original * room.Discount
	}
	original = roundFen(original)
	final = roundFen(final)

	booking := &models.Booking{
		UserID:         userID,
		RoomID:         room.ID,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		ContactName:    req.ContactName,
		ContactPhone:   req.ContactPhone,
		Remark:         req.Remark,
		OriginalAmount: original,
		DiscountAmount: roundFen(original - final),
		FinalAmount:    final,
		Status:         models.BookingPending,
	}
	if err := bs.bookings.CreateNoOverlap(ctx, booking); err != nil {
		return nil, err
	}

	order, err := bs.openPaymentOrder(ctx, booking, room.Name)
	if err != nil {
		// The booking stands; payment can be retried through the
		// payment endpoints.
		bs.logger.Error("failed to open payment order for booking",
			"booking_id", booking.ID, "error", err)
		return booking, nil
	}
	booking.PaymentOrderID = &order.ID

	bs.logger.Info("booking created",
		"booking_id", booking.ID,
		"room_id", room.ID,
		"trade_no", order.TradeNo,
	)
	return booking, nil
}

func (bs *BookingService) openPaymentOrder(ctx context.Context, booking *models.Booking, roomName string) (*models.PaymentOrder, error) {
	tradeNo, err := models.NewBookingTradeNo(booking.UserID, time.Now())
	if err != nil {
		return nil, err
	}

	order := &models.PaymentOrder{
		UserID:   booking.UserID,
		TradeNo:  tradeNo,
		Body:     fmt.Sprintf("%s %s", roomName, booking.StartTime.Format("2006-01-02 15:04")),
		TotalFee: toFen(booking.FinalAmount),
		Status:   models.PaymentCreated,
	}
	stored, _, err := bs.payments.CreateOrGetOrder(ctx, order)
	if err != nil {
		return nil, err
	}
	if err := bs.bookings.LinkPaymentOrder(ctx, booking.ID, stored.ID); err != nil {
		return nil, err
	}
	return stored, nil
}

func (bs *BookingService) Get(ctx context.Context, userID, id int64) (*models.Booking, error) {
	return bs.bookings.GetUserBooking(ctx, id, userID)
}

func (bs *BookingService) GetAny(ctx context.Context, id int64) (*models.Booking, error) {
	return bs.bookings.GetBooking(ctx, id)
}

func (bs *BookingService) ListMine(ctx context.Context, userID int64, status models.BookingStatus, page, size int) ([]*models.Booking, int, int, int, error) {
	offset, limit, page, size := pageWindow(page, size)
	bookings, total, err := bs.bookings.ListByUser(ctx, userID, status, offset, limit)
	return bookings, total, page, size, err
}

// Cancel releases the slot. Only pending and confirmed bookings can be
// cancelled, and only by their owner.
func (bs *BookingService) Cancel(ctx context.Context, userID, id int64) (*models.Booking, error) {
	booking, err := bs.bookings.GetUserBooking(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !booking.CanCancel() {
		return nil, fmt.Errorf("booking %d is %s and cannot be cancelled: %w",
			booking.ID, booking.Status, models.ErrConflict)
	}
	if err := bs.bookings.SetStatus(ctx, booking.ID, models.BookingCancelled); err != nil {
		return nil, err
	}
	booking.Status = models.BookingCancelled

	bs.logger.Info("booking cancelled", "booking_id", booking.ID, "user_id", userID)
	return booking, nil
}

// SetStatus moves a booking through the status machine. Admin only;
// illegal transitions are conflicts.
func (bs *BookingService) SetStatus(ctx context.Context, id int64, to models.BookingStatus) (*models.Booking, error) {
	switch to {
	case models.BookingConfirmed, models.BookingCompleted, models.BookingCancelled:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrInvalid, to)
	}

	booking, err := bs.bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.CanTransition(to) {
		return nil, fmt.Errorf("booking %d cannot go from %s to %s: %w",
			booking.ID, booking.Status, to, models.ErrConflict)
	}
	if err := bs.bookings.SetStatus(ctx, booking.ID, to); err != nil {
		return nil, err
	}
	booking.Status = to
	return booking, nil
}

func (bs *BookingService) Statistics(ctx context.Context, userID int64) (*models.BookingStatistics, error) {
	return bs.bookings.Statistics(ctx, userID)
}

// toFen converts a yuan amount to integer fen for the gateway.
func toFen(yuan float64) int64 {
	return int64(math.Round(yuan * 100))
}

// roundFen clamps a yuan amount to fen precision.
func roundFen(yuan float64) float64 {
	return math.Round(yuan*100) / 100
}
