package models

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CatalogRepo interface {
	ListStores(ctx context.Context, offset, limit int) ([]*Store, int, error)
	GetStore(ctx context.Context, id int64) (*Store, error)
	CreateStore(ctx context.Context, store *Store) error
	CountStores(ctx context.Context) (int64, error)
	ListRooms(ctx context.Context, filter RoomFilter, offset, limit int) ([]*Room, int, error)
	GetRoom(ctx context.Context, id int64) (*Room, error)
	CreateRoom(ctx context.Context, room *Room) error
	UpdateRoomRating(ctx context.Context, roomID int64, rating float64, count int) error
	SetRoomImages(ctx context.Context, roomID int64, images datatypes.JSON) error
}

func (r *GormRepo) ListStores(ctx context.Context, offset, limit int) ([]*Store, int, error) {
	q := r.db.WithContext(ctx).Model(&Store{}).Where("is_active = true")
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count stores: %w", err)
	}
	var stores []*Store
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&stores).Error; err != nil {
		return nil, 0, fmt.Errorf("list stores: %w", err)
	}
	return stores, int(total), nil
}

func (r *GormRepo) GetStore(ctx context.Context, id int64) (*Store, error) {
	var store Store
	err := r.db.WithContext(ctx).Preload("Rooms").First(&store, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("store %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get store: %w", err)
	}
	return &store, nil
}

func (r *GormRepo) CreateStore(ctx context.Context, store *Store) error {
	if err := r.db.WithContext(ctx).Create(store).Error; err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	return nil
}

func (r *GormRepo) CountStores(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&Store{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count stores: %w", err)
	}
	return total, nil
}

func (r *GormRepo) ListRooms(ctx context.Context, filter RoomFilter, offset, limit int) ([]*Room, int, error) {
	q := r.db.WithContext(ctx).Model(&Room{})
	if filter.StoreID != 0 {
		q = q.Where("store_id = ?", filter.StoreID)
	}
	if filter.MinCapacity > 0 {
		q = q.Where("capacity >= ?", filter.MinCapacity)
	}
	if filter.MinPrice > 0 {
		q = q.Where("hourly_price >= ?", filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		q = q.Where("hourly_price <= ?", filter.MaxPrice)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		q = q.Where("name ILIKE ? OR description ILIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count rooms: %w", err)
	}
	var rooms []*Room
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&rooms).Error; err != nil {
		return nil, 0, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, int(total), nil
}

func (r *GormRepo) GetRoom(ctx context.Context, id int64) (*Room, error) {
	var room Room
	err := r.db.WithContext(ctx).First(&room, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("room %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	return &room, nil
}

func (r *GormRepo) CreateRoom(ctx context.Context, room *Room) error {
	if err := r.db.WithContext(ctx).Create(room).Error; err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

func (r *GormRepo) UpdateRoomRating(ctx context.Context, roomID int64, rating float64, count int) error {
	err := r.db.WithContext(ctx).Model(&Room{}).Where("id = ?", roomID).
		Updates(map[string]interface{}{"rating": rating, "review_count": count}).Error
	if err != nil {
		return fmt.Errorf("update room rating: %w", err)
	}
	return nil
}

func (r *GormRepo) SetRoomImages(ctx context.Context, roomID int64, images datatypes.JSON) error {
	res := r.db.WithContext(ctx).Model(&Room{}).Where("id = ?", roomID).
		Update("images", images)
	if res.Error != nil {
		return fmt.Errorf("set room images: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("room %d: %w", roomID, ErrNotFound)
	}
	return nil
}
