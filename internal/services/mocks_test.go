package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"gorm.io/datatypes"

	"github.com/xinghui/parlor/internal/models"
	"github.com/xinghui/parlor/internal/wechat"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCatalog is an in-memory models.CatalogRepo.
type fakeCatalog struct {
	stores map[int64]*models.Store
	rooms  map[int64]*models.Room
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		stores: map[int64]*models.Store{},
		rooms:  map[int64]*models.Room{},
	}
}

func (f *fakeCatalog) ListStores(ctx context.Context, offset, limit int) ([]*models.Store, int, error) {
	var out []*models.Store
	for _, s := range f.stores {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (f *fakeCatalog) GetStore(ctx context.Context, id int64) (*models.Store, error) {
	s, ok := f.stores[id]
	if !ok {
		return nil, fmt.Errorf("store %d: %w", id, models.ErrNotFound)
	}
	return s, nil
}

func (f *fakeCatalog) CreateStore(ctx context.Context, store *models.Store) error {
	if store.ID == 0 {
		store.ID = int64(len(f.stores) + 1)
	}
	f.stores[store.ID] = store
	return nil
}

func (f *fakeCatalog) CountStores(ctx context.Context) (int64, error) {
	return int64(len(f.stores)), nil
}

func (f *fakeCatalog) ListRooms(ctx context.Context, filter models.RoomFilter, offset, limit int) ([]*models.Room, int, error) {
	var out []*models.Room
	for _, r := range f.rooms {
		if filter.StoreID != 0 && r.StoreID != filter.StoreID {
			continue
		}
		out = append(out, r)
	}
	return out, len(out), nil
}

func (f *fakeCatalog) GetRoom(ctx context.Context, id int64) (*models.Room, error) {
	r, ok := f.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room %d: %w", id, models.ErrNotFound)
	}
	return r, nil
}

func (f *fakeCatalog) CreateRoom(ctx context.Context, room *models.Room) error {
	if room.ID == 0 {
		room.ID = int64(len(f.rooms) + 1)
	}
	f.rooms[room.ID] = room
	return nil
}

func (f *fakeCatalog) UpdateRoomRating(ctx context.Context, roomID int64, rating float64, count int) error {
	r, ok := f.rooms[roomID]
	if !ok {
		return fmt.Errorf("room %d: %w", roomID, models.ErrNotFound)
	}
	r.Rating = rating
	r.ReviewCount = count
	return nil
}

func (f *fakeCatalog) SetRoomImages(ctx context.Context, roomID int64, images datatypes.JSON) error {
	r, ok := f.rooms[roomID]
	if !ok {
		return fmt.Errorf("room %d: %w", roomID, models.ErrNotFound)
	}
	r.Images = images
	return nil
}

// fakeBookings is an in-memory models.BookingRepo with the same overlap
// semantics as the real CreateNoOverlap.
type fakeBookings struct {
	bookings map[int64]*models.Booking
	nextID   int64
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{bookings: map[int64]*models.Booking{}, nextID: 1}
}

func (f *fakeBookings) CreateNoOverlap(ctx context.Context, booking *models.Booking) error {
	for _, b := range f.bookings {
		if b.RoomID == booking.RoomID && b.Blocking() && b.Overlaps(booking.StartTime, booking.EndTime) {
			return fmt.Errorf("room %d window taken: %w", booking.RoomID, models.ErrConflict)
		}
	}
	booking.ID = f.nextID
	f.nextID++
	f.bookings[booking.ID] = booking
	return nil
}

func (f *fakeBookings) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %d: %w", id, models.ErrNotFound)
	}
	return b, nil
}

func (f *fakeBookings) GetUserBooking(ctx context.Context, id, userID int64) (*models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok || b.UserID != userID {
		return nil, fmt.Errorf("booking %d: %w", id, models.ErrNotFound)
	}
	return b, nil
}

func (f *fakeBookings) ListByUser(ctx context.Context, userID int64, status models.BookingStatus, offset, limit int) ([]*models.Booking, int, error) {
	var out []*models.Booking
	for _, b := range f.bookings {
		if b.UserID != userID {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		out = append(out, b)
	}
	return out, len(out), nil
}

func (f *fakeBookings) ListForRoomWindow(ctx context.Context, roomID int64, from, to time.Time) ([]*models.Booking, error) {
	var out []*models.Booking
	for _, b := range f.bookings {
		if b.RoomID == roomID && b.Overlaps(from, to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookings) SetStatus(ctx context.Context, id int64, to models.BookingStatus) error {
	b, ok := f.bookings[id]
	if !ok {
		return fmt.Errorf("booking %d: %w", id, models.ErrNotFound)
	}
	b.Status = to
	return nil
}

func (f *fakeBookings) LinkPaymentOrder(ctx context.Context, bookingID, orderID int64) error {
	b, ok := f.bookings[bookingID]
	if !ok {
		return fmt.Errorf("booking %d: %w", bookingID, models.ErrNotFound)
	}
	b.PaymentOrderID = &orderID
	return nil
}

func (f *fakeBookings) Statistics(ctx context.Context, userID int64) (*models.BookingStatistics, error) {
	stats := &models.BookingStatistics{}
	for _, b := range f.bookings {
		if b.UserID != userID {
			continue
		}
		stats.Total++
		switch b.Status {
		case models.BookingPending:
			stats.Pending++
		case models.BookingConfirmed:
			stats.Confirmed++
		case models.BookingCompleted:
			stats.Completed++
		case models.BookingCancelled:
			stats.Cancelled++
		}
	}
	return stats, nil
}

// fakePayments is an in-memory models.PaymentRepo mirroring the real
// settlement semantics.
type fakePayments struct {
	orders   map[string]*models.PaymentOrder
	bookings *fakeBookings
	nextID   int64
}

func newFakePayments(bookings *fakeBookings) *fakePayments {
	return &fakePayments{orders: map[string]*models.PaymentOrder{}, bookings: bookings, nextID: 1}
}

func (f *fakePayments) CreateOrGetOrder(ctx context.Context, order *models.PaymentOrder) (*models.PaymentOrder, bool, error) {
	if existing, ok := f.orders[order.TradeNo]; ok {
		return existing, false, nil
	}
	order.ID = f.nextID
	f.nextID++
	order.CreatedAt = time.Now()
	f.orders[order.TradeNo] = order
	return order, true, nil
}

func (f *fakePayments) GetOrder(ctx context.Context, id int64) (*models.PaymentOrder, error) {
	for _, o := range f.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, fmt.Errorf("order %d: %w", id, models.ErrNotFound)
}

func (f *fakePayments) GetOrderByTradeNo(ctx context.Context, tradeNo string) (*models.PaymentOrder, error) {
	o, ok := f.orders[tradeNo]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", tradeNo, models.ErrNotFound)
	}
	return o, nil
}

func (f *fakePayments) ListOrdersByUser(ctx context.Context, userID int64, status models.PaymentStatus, offset, limit int) ([]*models.PaymentOrder, int, error) {
	var out []*models.PaymentOrder
	for _, o := range f.orders {
		if o.UserID != userID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, o)
	}
	return out, len(out), nil
}

func (f *fakePayments) SetPrepayID(ctx context.Context, id int64, prepayID string) error {
	o, err := f.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	o.PrepayID = prepayID
	return nil
}

func (f *fakePayments) SetOrderOpenID(ctx context.Context, id int64, openid string) error {
	o, err := f.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	o.OpenID = openid
	return nil
}

func (f *fakePayments) Settle(ctx context.Context, tradeNo string, success bool, transactionID string, at time.Time) (*models.PaymentOrder, bool, error) {
	o, ok := f.orders[tradeNo]
	if !ok {
		return nil, false, fmt.Errorf("order %s: %w", tradeNo, models.ErrNotFound)
	}
	if o.Settled() {
		return o, false, nil
	}
	if success {
		o.Status = models.PaymentPaid
		o.TransactionID = transactionID
		o.PaidAt = &at
		if f.bookings != nil {
			for _, b := range f.bookings.bookings {
				if b.PaymentOrderID != nil && *b.PaymentOrderID == o.ID && b.Status == models.BookingPending {
					b.Status = models.BookingConfirmed
				}
			}
		}
	} else {
		o.Status = models.PaymentFailed
	}
	return o, true, nil
}

func (f *fakePayments) Refund(ctx context.Context, id int64) (*models.PaymentOrder, error) {
	o, err := f.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status != models.PaymentPaid {
		return nil, fmt.Errorf("order %d is %s: %w", id, o.Status, models.ErrConflict)
	}
	o.Status = models.PaymentRefunded
	return o, nil
}

// fakeReviews is an in-memory models.ReviewRepo.
type fakeReviews struct {
	reviews map[int64]*models.Review
	nextID  int64
}

func newFakeReviews() *fakeReviews {
	return &fakeReviews{reviews: map[int64]*models.Review{}, nextID: 1}
}

func (f *fakeReviews) CreateReview(ctx context.Context, review *models.Review) error {
	for _, r := range f.reviews {
		if r.BookingID == review.BookingID {
			return fmt.Errorf("booking %d already reviewed: %w", review.BookingID, models.ErrConflict)
		}
	}
	review.ID = f.nextID
	f.nextID++
	review.CreatedAt = time.Now()
	f.reviews[review.ID] = review
	return nil
}

func (f *fakeReviews) GetReview(ctx context.Context, id int64) (*models.Review, error) {
	r, ok := f.reviews[id]
	if !ok {
		return nil, fmt.Errorf("review %d: %w", id, models.ErrNotFound)
	}
	return r, nil
}

func (f *fakeReviews) GetReviewByBooking(ctx context.Context, bookingID int64) (*models.Review, error) {
	for _, r := range f.reviews {
		if r.BookingID == bookingID {
			return r, nil
		}
	}
	return nil, fmt.Errorf("review for booking %d: %w", bookingID, models.ErrNotFound)
}

func (f *fakeReviews) ListByRoom(ctx context.Context, roomID int64, offset, limit int) ([]*models.Review, int, error) {
	var out []*models.Review
	for _, r := range f.reviews {
		if r.RoomID == roomID {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

func (f *fakeReviews) ListReviewsByUser(ctx context.Context, userID int64, offset, limit int) ([]*models.Review, int, error) {
	var out []*models.Review
	for _, r := range f.reviews {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

func (f *fakeReviews) SetReply(ctx context.Context, id int64, reply string, at time.Time) error {
	r, ok := f.reviews[id]
	if !ok {
		return fmt.Errorf("review %d: %w", id, models.ErrNotFound)
	}
	r.Reply = reply
	r.RepliedAt = &at
	return nil
}

func (f *fakeReviews) RoomRatingStats(ctx context.Context, roomID int64) (*models.ReviewStatistics, error) {
	stats := &models.ReviewStatistics{Distribution: map[int]int64{}}
	var sum int64
	for _, r := range f.reviews {
		if r.RoomID != roomID {
			continue
		}
		stats.Total++
		stats.Distribution[r.Rating]++
		sum += int64(r.Rating)
	}
	if stats.Total > 0 {
		stats.AverageRating = float64(sum) / float64(stats.Total)
	}
	return stats, nil
}

// fakeGateway is a scriptable wechat.Gateway.
type fakeGateway struct {
	session      *wechat.SessionInfo
	sessionErr   error
	params       *wechat.PaymentParams
	orderErr     error
	verifyResult bool
	orderCalls   int
}

func (f *fakeGateway) Code2Session(ctx context.Context, code string) (*wechat.SessionInfo, error) {
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	return f.session, nil
}

func (f *fakeGateway) UnifiedOrder(ctx context.Context, req *wechat.UnifiedOrderRequest) (*wechat.PaymentParams, error) {
	f.orderCalls++
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	return f.params, nil
}

func (f *fakeGateway) VerifyCallback(params map[string]string, signature string) bool {
	return f.verifyResult
}
