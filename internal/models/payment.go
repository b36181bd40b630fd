package models

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

type PaymentStatus string

const (
	PaymentCreated  PaymentStatus = "created"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

const (
	// TradeNoMaxLen is the canonical bound for merchant order numbers.
	// It is the payment gateway's out_trade_no limit and is enforced at
	// construction for every caller, prefixed or not.
	TradeNoMaxLen = 32

	// TradeNoColumnWidth is the physical width of the trade_no column.
	// schema.Provision gates startup on it; see internal/models/schema.go.
	TradeNoColumnWidth = 64

	// BookingTradeNoPrefix tags booking-initiated orders.
	BookingTradeNoPrefix = "BK"
)

type PaymentOrder struct {
	ID            int64         `gorm:"primaryKey" json:"id"`
	UserID        int64         `gorm:"index;not null" json:"user_id"`
	OpenID        string        `gorm:"size:64" json:"openid,omitempty"`
	TradeNo       string        `gorm:"size:64;uniqueIndex;not null" json:"trade_no"`
	Body          string        `gorm:"size:128;not null" json:"body"`
	TotalFee      int64         `gorm:"not null" json:"total_fee"` // cents
	Status        PaymentStatus `gorm:"size:20;default:'created';index" json:"status"`
	TransactionID string        `gorm:"size:32;index" json:"transaction_id,omitempty"`
	PrepayID      string        `gorm:"size:64" json:"prepay_id,omitempty"`
	IPAddress     string        `gorm:"size:45" json:"-"`
	CreatedAt     time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
}

// Settled reports whether the order has reached a terminal settlement
// state; a callback replay against a settled order is a no-op.
func (p *PaymentOrder) Settled() bool {
	return p.Status == PaymentPaid || p.Status == PaymentFailed || p.Status == PaymentRefunded
}

// NewTradeNo builds a merchant order number: a 14-digit timestamp, the
// user id zero-padded to 6 digits and a 6-digit random suffix.
func NewTradeNo(userID int64, now time.Time) (string, error) {
	return newTradeNo("", userID, now)
}

// NewBookingTradeNo is the booking-initiated variant carrying the BK prefix.
func NewBookingTradeNo(userID int64, now time.Time) (string, error) {
	return newTradeNo(BookingTradeNoPrefix, userID, now)
}

func newTradeNo(prefix string, userID int64, now time.Time) (string, error) {
	if userID <= 0 {
		return "", fmt.Errorf("%w: user id must be positive", ErrInvalid)
	}
	suffix, err := randomDigits(6)
	if err != nil {
		return "", fmt.Errorf("generate trade no suffix: %w", err)
	}
	no := fmt.Sprintf("%s%s%06d%s", prefix, now.Format("20060102150405"), userID, suffix)
	if len(no) > TradeNoMaxLen {
		return "", fmt.Errorf("%w: trade no %q exceeds %d characters", ErrInvalid, no, TradeNoMaxLen)
	}
	return no, nil
}

func randomDigits(n int) (string, error) {
	digits := make([]byte, n)
	for i := range digits {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + v.Int64())
	}
	return string(digits), nil
}
