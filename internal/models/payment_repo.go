package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepo interface {
	CreateOrGetOrder(ctx context.Context, order *PaymentOrder) (*PaymentOrder, bool, error)
	GetOrder(ctx context.Context, id int64) (*PaymentOrder, error)
	GetOrderByTradeNo(ctx context.Context, tradeNo string) (*PaymentOrder, error)
	ListOrdersByUser(ctx context.Context, userID int64, status PaymentStatus, offset, limit int) ([]*PaymentOrder, int, error)
	SetPrepayID(ctx context.Context, id int64, prepayID string) error
	SetOrderOpenID(ctx context.Context, id int64, openid string) error
	Settle(ctx context.Context, tradeNo string, success bool, transactionID string, at time.Time) (*PaymentOrder, bool, error)
	Refund(ctx context.Context, id int64) (*PaymentOrder, error)
}

// CreateOrGetOrder inserts the order, or returns the stored row when the
// trade no already exists. The second return reports whether a new row
// was created.
func (r *GormRepo) CreateOrGetOrder(ctx context.Context, order *PaymentOrder) (*PaymentOrder, bool, error) {
	var existing PaymentOrder
	err := r.db.WithContext(ctx).First(&existing, "trade_no = ?", order.TradeNo).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("lookup payment order: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, false, fmt.Errorf("trade no %s: %w", order.TradeNo, ErrConflict)
		}
		return nil, false, fmt.Errorf("create payment order: %w", err)
	}
	return order, true, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id int64) (*PaymentOrder, error) {
	var order PaymentOrder
	err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("payment order %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get payment order: %w", err)
	}
	return &order, nil
}

func (r *GormRepo) GetOrderByTradeNo(ctx context.Context, tradeNo string) (*PaymentOrder, error) {
	var order PaymentOrder
	err := r.db.WithContext(ctx).First(&order, "trade_no = ?", tradeNo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("payment order %s: %w", tradeNo, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get payment order: %w", err)
	}
	return &order, nil
}

func (r *GormRepo) ListOrdersByUser(ctx context.Context, userID int64, status PaymentStatus, offset, limit int) ([]*PaymentOrder, int, error) {
	q := r.db.WithContext(ctx).Model(&PaymentOrder{}).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count payment orders: %w", err)
	}
	var orders []*PaymentOrder
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("list payment orders: %w", err)
	}
	return orders, int(total), nil
}

func (r *GormRepo) SetPrepayID(ctx context.Context, id int64, prepayID string) error {
	err := r.db.WithContext(ctx).Model(&PaymentOrder{}).Where("id = ?", id).
		Update("prepay_id", prepayID).Error
	if err != nil {
		return fmt.Errorf("set prepay id: %w", err)
	}
	return nil
}

func (r *GormRepo) SetOrderOpenID(ctx context.Context, id int64, openid string) error {
	err := r.db.WithContext(ctx).Model(&PaymentOrder{}).Where("id = ?", id).
		Update("open_id", openid).Error
	if err != nil {
		return fmt.Errorf("set order open id: %w", err)
	}
	return nil
}

// Settle applies a settlement callback exactly once. The row is locked
// for the duration of the transaction; a replay against an already
// settled order returns the stored row with applied=false.
func (r *GormRepo) Settle(ctx context.Context, tradeNo string, success bool, transactionID string, at time.Time) (*PaymentOrder, bool, error) {
	var order PaymentOrder
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "trade_no = ?", tradeNo).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("payment order %s: %w", tradeNo, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("lock payment order: %w", err)
		}

		if order.Settled() {
			return nil
		}

		if success {
			order.Status = PaymentPaid
			order.TransactionID = transactionID
			order.PaidAt = &at
		} else {
			order.Status = PaymentFailed
		}
		if err := tx.Save(&order).Error; err != nil {
			return fmt.Errorf("settle payment order: %w", err)
		}

		// A paid order confirms its pending booking in the same transaction.
		if success {
			err := tx.Model(&Booking{}).
				Where("payment_order_id = ? AND status = ?", order.ID, BookingPending).
				Update("status", BookingConfirmed).Error
			if err != nil {
				return fmt.Errorf("confirm booking: %w", err)
			}
		}
		applied = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &order, applied, nil
}

func (r *GormRepo) Refund(ctx context.Context, id int64) (*PaymentOrder, error) {
	var order PaymentOrder
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("payment order %d: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("lock payment order: %w", err)
		}
		if order.Status != PaymentPaid {
			return fmt.Errorf("only paid orders can be refunded, order %d is %s: %w",
				id, order.Status, ErrConflict)
		}
		order.Status = PaymentRefunded
		if err := tx.Save(&order).Error; err != nil {
			return fmt.Errorf("refund payment order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}
