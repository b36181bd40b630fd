package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xinghui/parlor/internal/config"
	"github.com/xinghui/parlor/internal/models"
	"github.com/xinghui/parlor/internal/wechat"
)

func paymentFixtures(t *testing.T, gateway *fakeGateway) (*PaymentService, *fakeBookings, *fakePayments) {
	t.Helper()
	bookings := newFakeBookings()
	payments := newFakePayments(bookings)
	cfg := &config.Config{WechatService: "parlor-api"}
	svc := NewPaymentService(payments, bookings, gateway, cfg, discardLogger())
	return svc, bookings, payments
}

func seedPendingBooking(bookings *fakeBookings, userID int64) *models.Booking {
	start := time.Now().Add(24 * time.Hour)
	booking := &models.Booking{
		ID: bookings.nextID, UserID: userID, RoomID: 1,
		StartTime: start, EndTime: start.Add(2 * time.Hour),
		FinalAmount: 150, Status: models.BookingPending,
	}
	bookings.nextID++
	bookings.bookings[booking.ID] = booking
	return booking
}

func TestCreateOrderForBookingIsIdempotent(t *testing.T) {
	svc, bookings, _ := paymentFixtures(t, &fakeGateway{})
	booking := seedPendingBooking(bookings, 5)

	first, err := svc.CreateOrderForBooking(context.Background(), 5, booking.ID)
	if err != nil {
		t.Fatalf("CreateOrderForBooking: %v", err)
	}
	if first.TotalFee != 15000 {
		t.Errorf("total fee = %d fen, want 15000", first.TotalFee)
	}
	if booking.PaymentOrderID == nil || *booking.PaymentOrderID != first.ID {
		t.Fatal("booking not linked to the order")
	}

	second, err := svc.CreateOrderForBooking(context.Background(), 5, booking.ID)
	if err != nil {
		t.Fatalf("repeat CreateOrderForBooking: %v", err)
	}
	if second.ID != first.ID || second.TradeNo != first.TradeNo {
		t.Errorf("repeat returned a different order: %d/%s vs %d/%s",
			second.ID, second.TradeNo, first.ID, first.TradeNo)
	}
}

func TestCreateOrderForBookingRejectsNonPending(t *testing.T) {
	svc, bookings, _ := paymentFixtures(t, &fakeGateway{})
	booking := seedPendingBooking(bookings, 5)
	booking.Status = models.BookingCancelled

	if _, err := svc.CreateOrderForBooking(context.Background(), 5, booking.ID); !errors.Is(err, models.ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", err)
	}
}

func TestUnifiedOrderStoresPrepayID(t *testing.T) {
	gateway := &fakeGateway{params: &wechat.PaymentParams{
		PrepayID: "wx20260314prepay", Package: "prepay_id=wx20260314prepay",
	}}
	svc, bookings, payments := paymentFixtures(t, gateway)
	booking := seedPendingBooking(bookings, 5)

	order, err := svc.CreateOrderForBooking(context.Background(), 5, booking.ID)
	if err != nil {
		t.Fatalf("CreateOrderForBooking: %v", err)
	}

	params, updated, err := svc.UnifiedOrder(context.Background(), 5, "openid-5", order.TradeNo, "1.2.3.4")
	if err != nil {
		t.Fatalf("UnifiedOrder: %v", err)
	}
	if params.PrepayID != "wx20260314prepay" {
		t.Errorf("prepay id = %q", params.PrepayID)
	}
	if updated.PrepayID != "wx20260314prepay" || updated.OpenID != "openid-5" {
		t.Errorf("order not updated: %+v", updated)
	}

	stored, _ := payments.GetOrderByTradeNo(context.Background(), order.TradeNo)
	if stored.PrepayID != "wx20260314prepay" {
		t.Errorf("stored prepay id = %q", stored.PrepayID)
	}
}

func TestUnifiedOrderGatewayFailureKeepsOrderOpen(t *testing.T) {
	gateway := &fakeGateway{orderErr: models.ErrGateway}
	svc, bookings, payments := paymentFixtures(t, gateway)
	booking := seedPendingBooking(bookings, 5)

	order, err := svc.CreateOrderForBooking(context.Background(), 5, booking.ID)
	if err != nil {
		t.Fatalf("CreateOrderForBooking: %v", err)
	}

	_, _, err = svc.UnifiedOrder(context.Background(), 5, "openid-5", order.TradeNo, "1.2.3.4")
	if !errors.Is(err, models.ErrGateway) {
		t.Fatalf("error = %v, want ErrGateway", err)
	}

	stored, _ := payments.GetOrderByTradeNo(context.Background(), order.TradeNo)
	if stored.Status != models.PaymentCreated {
		t.Errorf("order status = %s, want created so the client can retry", stored.Status)
	}
}

// A transient placement failure must not poison the order: the client
// retries, pays, and the first genuine success callback settles it.
func TestUnifiedOrderRetryAfterFailureSettles(t *testing.T) {
	gateway := &fakeGateway{orderErr: models.ErrGateway, verifyResult: true}
	svc, bookings, _ := paymentFixtures(t, gateway)
	booking := seedPendingBooking(bookings, 5)

	order, err := svc.CreateOrderForBooking(context.Background(), 5, booking.ID)
	if err != nil {
		t.Fatalf("CreateOrderForBooking: %v", err)
	}

	if _, _, err := svc.UnifiedOrder(context.Background(), 5, "openid-5", order.TradeNo, "1.2.3.4"); !errors.Is(err, models.ErrGateway) {
		t.Fatalf("first attempt error = %v, want ErrGateway", err)
	}

	gateway.orderErr = nil
	gateway.params = &wechat.PaymentParams{PrepayID: "wxretry", Package: "prepay_id=wxretry"}
	if _, _, err := svc.UnifiedOrder(context.Background(), 5, "openid-5", order.TradeNo, "1.2.3.4"); err != nil {
		t.Fatalf("retry UnifiedOrder: %v", err)
	}

	cb := &Callback{
		ReturnCode: "SUCCESS", ResultCode: "SUCCESS",
		TradeNo: order.TradeNo, TransactionID: "tx-retry", TotalFee: order.TotalFee,
		Sign: "SIGNED",
	}
	settled, err := svc.HandleCallback(context.Background(), cb)
	if err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	if settled.Status != models.PaymentPaid || settled.TransactionID != "tx-retry" {
		t.Errorf("order not settled by the post-retry callback: %+v", settled)
	}
	if booking.Status != models.BookingConfirmed {
		t.Errorf("booking status = %s, want confirmed", booking.Status)
	}
}

func TestUnifiedOrderRejectsSettledOrder(t *testing.T) {
	gateway := &fakeGateway{verifyResult: true}
	svc, bookings, _ := paymentFixtures(t, gateway)
	booking := seedPendingBooking(bookings, 5)

	order, err := svc.CreateOrderForBooking(context.Background(), 5, booking.ID)
	if err != nil {
		t.Fatalf("CreateOrderForBooking: %v", err)
	}

	cb := &Callback{ReturnCode: "SUCCESS", ResultCode: "FAIL", TradeNo: order.TradeNo, Sign: "SIGNED"}
	if _, err := svc.HandleCallback(context.Background(), cb); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}

	if _, _, err := svc.UnifiedOrder(context.Background(), 5, "openid-5", order.TradeNo, "1.2.3.4"); !errors.Is(err, models.ErrConflict) {
		t.Errorf("placement against a settled order error = %v, want ErrConflict", err)
	}
}

func TestHandleCallbackSettlesOnce(t *testing.T) {
	gateway := &fakeGateway{verifyResult: true}
	svc, bookings, _ := paymentFixtures(t, gateway)
	booking := seedPendingBooking(bookings, 5)

	order, err := svc.CreateOrderForBooking(context.Background(), 5, booking.ID)
	if err != nil {
		t.Fatalf("CreateOrderForBooking: %v", err)
	}

	cb := &Callback{
		ReturnCode:    "SUCCESS",
		ResultCode:    "SUCCESS",
		TradeNo:       order.TradeNo,
		TransactionID: "4200001234",
		TotalFee:      order.TotalFee,
		Sign:          "SIGNED",
	}

	settled, err := svc.HandleCallback(context.Background(), cb)
	if err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	if settled.Status != models.PaymentPaid {
		t.Errorf("order status = %s, want paid", settled.Status)
	}
	if settled.TransactionID != "4200001234" || settled.PaidAt == nil {
		t.Errorf("settlement fields missing: %+v", settled)
	}
	if booking.Status != models.BookingConfirmed {
		t.Errorf("booking status = %s, want confirmed", booking.Status)
	}

	// A replay must not change anything.
	cb.TransactionID = "4200009999"
	replayed, err := svc.HandleCallback(context.Background(), cb)
	if err != nil {
		t.Fatalf("replayed HandleCallback: %v", err)
	}
	if replayed.TransactionID != "4200001234" {
		t.Errorf("replay overwrote transaction id: %s", replayed.TransactionID)
	}
}

func TestHandleCallbackFailure(t *testing.T) {
	gateway := &fakeGateway{verifyResult: true}
	svc, bookings, _ := paymentFixtures(t, gateway)
	booking := seedPendingBooking(bookings, 5)

	order, err := svc.CreateOrderForBooking(context.Background(), 5, booking.ID)
	if err != nil {
		t.Fatalf("CreateOrderForBooking: %v", err)
	}

	cb := &Callback{
		ReturnCode: "SUCCESS",
		ResultCode: "FAIL",
		TradeNo:    order.TradeNo,
		Sign:       "SIGNED",
	}
	settled, err := svc.HandleCallback(context.Background(), cb)
	if err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	if settled.Status != models.PaymentFailed {
		t.Errorf("order status = %s, want failed", settled.Status)
	}
	if booking.Status != models.BookingPending {
		t.Errorf("booking status = %s, want pending untouched", booking.Status)
	}
}

func TestHandleCallbackRejectsBadSignature(t *testing.T) {
	gateway := &fakeGateway{verifyResult: false}
	svc, bookings, _ := paymentFixtures(t, gateway)
	booking := seedPendingBooking(bookings, 5)

	order, err := svc.CreateOrderForBooking(context.Background(), 5, booking.ID)
	if err != nil {
		t.Fatalf("CreateOrderForBooking: %v", err)
	}

	cb := &Callback{ReturnCode: "SUCCESS", ResultCode: "SUCCESS", TradeNo: order.TradeNo, Sign: "FORGED"}
	if _, err := svc.HandleCallback(context.Background(), cb); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
}

func TestRefundOnlyFromPaid(t *testing.T) {
	gateway := &fakeGateway{verifyResult: true}
	svc, bookings, _ := paymentFixtures(t, gateway)
	booking := seedPendingBooking(bookings, 5)

	order, err := svc.CreateOrderForBooking(context.Background(), 5, booking.ID)
	if err != nil {
		t.Fatalf("CreateOrderForBooking: %v", err)
	}

	if _, err := svc.Refund(context.Background(), order.ID); !errors.Is(err, models.ErrConflict) {
		t.Errorf("refund of created order error = %v, want ErrConflict", err)
	}

	cb := &Callback{ReturnCode: "SUCCESS", ResultCode: "SUCCESS", TradeNo: order.TradeNo, Sign: "SIGNED"}
	if _, err := svc.HandleCallback(context.Background(), cb); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}

	refunded, err := svc.Refund(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("Refund: %v", err)
	}
	if refunded.Status != models.PaymentRefunded {
		t.Errorf("status = %s, want refunded", refunded.Status)
	}
}

// Paying for a booking end to end: reserve, open the order, place it
// with the gateway and settle the callback.
func TestBookingPaymentFlow(t *testing.T) {
	gateway := &fakeGateway{
		verifyResult: true,
		params:       &wechat.PaymentParams{Package: "prepay_id=wxflow", PrepayID: "wxflow"},
	}
	bookings := newFakeBookings()
	payments := newFakePayments(bookings)
	catalog := newFakeCatalog()
	catalog.rooms[1] = &models.Room{ID: 1, StoreID: 1, Name: "VIP Suite", HourlyPrice: 128, Capacity: 12, Status: models.RoomAvailable}

	cfg := &config.Config{WechatService: "parlor-api"}
	bookingSvc := NewBookingService(bookings, catalog, payments, discardLogger())
	paymentSvc := NewPaymentService(payments, bookings, gateway, cfg, discardLogger())

	start := time.Now().Add(48 * time.Hour).Truncate(time.Hour)
	booking, err := bookingSvc.Create(context.Background(), 9, &models.BookingCreate{
		RoomID: 1, StartTime: start, EndTime: start.Add(time.Hour),
		ContactName: "Wang", ContactPhone: "13700000000",
	})
	if err != nil {
		t.Fatalf("Create booking: %v", err)
	}
	if booking.PaymentOrderID == nil {
		t.Fatal("booking has no payment order")
	}

	order, err := payments.GetOrder(context.Background(), *booking.PaymentOrderID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}

	if _, _, err := paymentSvc.UnifiedOrder(context.Background(), 9, "openid-9", order.TradeNo, "10.0.0.1"); err != nil {
		t.Fatalf("UnifiedOrder: %v", err)
	}

	cb := &Callback{
		ReturnCode: "SUCCESS", ResultCode: "SUCCESS",
		TradeNo: order.TradeNo, TransactionID: "tx-flow", TotalFee: order.TotalFee,
		Sign: "SIGNED",
	}
	if _, err := paymentSvc.HandleCallback(context.Background(), cb); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}

	if booking.Status != models.BookingConfirmed {
		t.Errorf("booking status = %s, want confirmed after settlement", booking.Status)
	}
}
