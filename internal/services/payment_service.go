package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/xinghui/parlor/internal/config"
	"github.com/xinghui/parlor/internal/models"
	"github.com/xinghui/parlor/internal/wechat"
)

type PaymentService struct {
	payments models.PaymentRepo
	bookings models.BookingRepo
	gateway  wechat.Gateway
	cfg      *config.Config
	logger   *slog.Logger
}

func NewPaymentService(payments models.PaymentRepo, bookings models.BookingRepo, gateway wechat.Gateway, cfg *config.Config, logger *slog.Logger) *PaymentService {
	return &PaymentService{
		payments: payments,
		bookings: bookings,
		gateway:  gateway,
		cfg:      cfg,
		logger:   logger,
	}
}

// CreateOrderForBooking opens (or returns) the payment order backing a
// booking. Re-posting for the same booking returns the stored order.
func (ps *PaymentService) CreateOrderForBooking(ctx context.Context, userID, bookingID int64) (*models.PaymentOrder, error) {
	booking, err := ps.bookings.GetUserBooking(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingPending {
		return nil, fmt.Errorf("booking %d is %s, only pending bookings take payment: %w",
			booking.ID, booking.Status, models.ErrConflict)
	}
	if booking.PaymentOrderID != nil {
		return ps.payments.GetOrder(ctx, *booking.PaymentOrderID)
	}

	tradeNo, err := models.NewBookingTradeNo(userID, time.Now())
	if err != nil {
		return nil, err
	}
	order := &models.PaymentOrder{
		UserID:   userID,
		TradeNo:  tradeNo,
		Body:     fmt.Sprintf("booking %d", booking.ID),
		TotalFee: toFen(booking.FinalAmount),
		Status:   models.PaymentCreated,
	}
	stored, created, err := ps.payments.CreateOrGetOrder(ctx, order)
	if err != nil {
		return nil, err
	}
	if created {
		if err := ps.bookings.LinkPaymentOrder(ctx, booking.ID, stored.ID); err != nil {
			return nil, err
		}
	}
	return stored, nil
}

// UnifiedOrder places the order with the payment gateway and stores the
// prepay id. A gateway failure surfaces as 502 and leaves the order
// open, so the client can retry; failed is reserved for settlement
// callbacks.
func (ps *PaymentService) UnifiedOrder(ctx context.Context, userID int64, openid, tradeNo, clientIP string) (*wechat.PaymentParams, *models.PaymentOrder, error) {
	if openid == "" {
		return nil, nil, fmt.Errorf("%w: openid is required", models.ErrInvalid)
	}

	order, err := ps.payments.GetOrderByTradeNo(ctx, tradeNo)
	if err != nil {
		return nil, nil, err
	}
	if order.UserID != userID {
		return nil, nil, fmt.Errorf("order %s: %w", tradeNo, models.ErrNotFound)
	}
	if order.Status != models.PaymentCreated {
		return nil, nil, fmt.Errorf("order %s is already %s: %w", tradeNo, order.Status, models.ErrConflict)
	}

	if order.OpenID != openid {
		if err := ps.payments.SetOrderOpenID(ctx, order.ID, openid); err != nil {
			return nil, nil, err
		}
		order.OpenID = openid
	}

	params, err := ps.gateway.UnifiedOrder(ctx, &wechat.UnifiedOrderRequest{
		OpenID:     openid,
		TradeNo:    order.TradeNo,
		Body:       order.Body,
		TotalFee:   order.TotalFee,
		ClientIP:   clientIP,
		CloudEnvID: ps.cfg.WechatCloudEnv,
		Service:    ps.cfg.WechatService,
	})
	if err != nil {
		ps.logger.Error("unified order placement failed",
			"trade_no", order.TradeNo, "error", err)
		return nil, nil, err
	}

	if params.PrepayID != "" {
		if err := ps.payments.SetPrepayID(ctx, order.ID, params.PrepayID); err != nil {
			return nil, nil, err
		}
		order.PrepayID = params.PrepayID
	}

	ps.logger.Info("unified order placed", "trade_no", order.TradeNo, "total_fee", order.TotalFee)
	return params, order, nil
}

// Callback is the gateway's asynchronous settlement notification.
type Callback struct {
	ReturnCode    string `json:"return_code" binding:"required"`
	ResultCode    string `json:"result_code"`
	TradeNo       string `json:"out_trade_no" binding:"required"`
	TransactionID string `json:"transaction_id"`
	TotalFee      int64  `json:"total_fee"`
	NonceStr      string `json:"nonce_str"`
	TimeEnd       string `json:"time_end"`
	Sign          string `json:"sign"`
}

func (cb *Callback) params() map[string]string {
	return map[string]string{
		"return_code":    cb.ReturnCode,
		"result_code":    cb.ResultCode,
		"out_trade_no":   cb.TradeNo,
		"transaction_id": cb.TransactionID,
		"total_fee":      strconv.FormatInt(cb.TotalFee, 10),
		"nonce_str":      cb.NonceStr,
		"time_end":       cb.TimeEnd,
	}
}

func (cb *Callback) success() bool {
	return cb.ReturnCode == "SUCCESS" && cb.ResultCode == "SUCCESS"
}

// HandleCallback verifies the signature and settles the order exactly
// once. A replay for a settled order is a no-op.
func (ps *PaymentService) HandleCallback(ctx context.Context, cb *Callback) (*models.PaymentOrder, error) {
	if !ps.gateway.VerifyCallback(cb.params(), cb.Sign) {
		return nil, fmt.Errorf("%w: bad callback signature for %s", models.ErrUnauthorized, cb.TradeNo)
	}

	order, applied, err := ps.payments.Settle(ctx, cb.TradeNo, cb.success(), cb.TransactionID, time.Now())
	if err != nil {
		return nil, err
	}
	if !applied {
		ps.logger.Info("callback replay ignored", "trade_no", cb.TradeNo, "status", order.Status)
		return order, nil
	}

	if cb.success() && cb.TotalFee != 0 && cb.TotalFee != order.TotalFee {
		ps.logger.Warn("callback fee mismatch",
			"trade_no", cb.TradeNo,
			"expected", order.TotalFee,
			"reported", cb.TotalFee,
		)
	}

	ps.logger.Info("payment settled",
		"trade_no", cb.TradeNo,
		"status", order.Status,
		"transaction_id", cb.TransactionID,
	)
	return order, nil
}

func (ps *PaymentService) Get(ctx context.Context, userID, id int64) (*models.PaymentOrder, error) {
	order, err := ps.payments.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("order %d: %w", id, models.ErrNotFound)
	}
	return order, nil
}

func (ps *PaymentService) GetByTradeNo(ctx context.Context, userID int64, tradeNo string) (*models.PaymentOrder, error) {
	order, err := ps.payments.GetOrderByTradeNo(ctx, tradeNo)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("order %s: %w", tradeNo, models.ErrNotFound)
	}
	return order, nil
}

func (ps *PaymentService) ListMine(ctx context.Context, userID int64, status models.PaymentStatus, page, size int) ([]*models.PaymentOrder, int, int, int, error) {
	offset, limit, page, size := pageWindow(page, size)
	orders, total, err := ps.payments.ListOrdersByUser(ctx, userID, status, offset, limit)
	return orders, total, page, size, err
}

// Refund moves a paid order to refunded. Admin only.
func (ps *PaymentService) Refund(ctx context.Context, id int64) (*models.PaymentOrder, error) {
	order, err := ps.payments.Refund(ctx, id)
	if err != nil {
		return nil, err
	}
	ps.logger.Info("order refunded", "order_id", order.ID, "trade_no", order.TradeNo)
	return order, nil
}
