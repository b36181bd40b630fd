package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"gorm.io/datatypes"

	"github.com/xinghui/parlor/internal/helpers"
	"github.com/xinghui/parlor/internal/models"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// pageWindow normalizes page/size query values into an offset and limit.
func pageWindow(page, size int) (int, int, int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return (page - 1) * size, size, page, size
}

type CatalogService struct {
	catalog  models.CatalogRepo
	bookings models.BookingRepo
	cld      *cloudinary.Cloudinary
}

func NewCatalogService(catalog models.CatalogRepo, bookings models.BookingRepo, cld *cloudinary.Cloudinary) *CatalogService {
	return &CatalogService{catalog: catalog, bookings: bookings, cld: cld}
}

func (cs *CatalogService) ListStores(ctx context.Context, page, size int) ([]*models.Store, int, int, int, error) {
	offset, limit, page, size := pageWindow(page, size)
	stores, total, err := cs.catalog.ListStores(ctx, offset, limit)
	return stores, total, page, size, err
}

func (cs *CatalogService) GetStore(ctx context.Context, id int64) (*models.Store, error) {
	return cs.catalog.GetStore(ctx, id)
}

func (cs *CatalogService) ListRooms(ctx context.Context, filter models.RoomFilter, page, size int) ([]*models.Room, int, int, int, error) {
	if filter.MinPrice > 0 && filter.MaxPrice > 0 && filter.MinPrice > filter.MaxPrice {
		return nil, 0, 0, 0, fmt.Errorf("%w: min price above max price", models.ErrInvalid)
	}
	offset, limit, page, size := pageWindow(page, size)
	rooms, total, err := cs.catalog.ListRooms(ctx, filter, offset, limit)
	return rooms, total, page, size, err
}

// SearchRooms matches the query against room names and descriptions.
func (cs *CatalogService) SearchRooms(ctx context.Context, query string, page, size int) ([]*models.Room, int, int, int, error) {
	if query == "" {
		return nil, 0, 0, 0, fmt.Errorf("%w: search query is required", models.ErrInvalid)
	}
	return cs.ListRooms(ctx, models.RoomFilter{Query: query}, page, size)
}

func (cs *CatalogService) GetRoom(ctx context.Context, id int64) (*models.Room, error) {
	return cs.catalog.GetRoom(ctx, id)
}

// AddRoomImages uploads gallery images for a room and appends them to
// its image list. Admin only.
func (cs *CatalogService) AddRoomImages(ctx context.Context, roomID int64, images []string) (*models.Room, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: at least one image is required", models.ErrInvalid)
	}

	room, err := cs.catalog.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	urls := images
	if cs.cld != nil {
		uploaded, err := helpers.UploadImages(ctx, cs.cld, images, helpers.RoomFolder)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrGateway, err)
		}
		urls = uploaded
	}

	var gallery []string
	if len(room.Images) > 0 {
		if err := json.Unmarshal(room.Images, &gallery); err != nil {
			return nil, fmt.Errorf("decode room images: %w", err)
		}
	}
	gallery = append(gallery, urls...)

	blob, err := json.Marshal(gallery)
	if err != nil {
		return nil, fmt.Errorf("encode room images: %w", err)
	}
	if err := cs.catalog.SetRoomImages(ctx, roomID, datatypes.JSON(blob)); err != nil {
		return nil, err
	}
	room.Images = datatypes.JSON(blob)
	return room, nil
}

// Availability reports per-hour occupancy of a room for one calendar
// day, derived from bookings that still hold their slot.
func (cs *CatalogService) Availability(ctx context.Context, roomID int64, day time.Time) ([]models.HourSlot, error) {
	if _, err := cs.catalog.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	bookings, err := cs.bookings.ListForRoomWindow(ctx, roomID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	slots := make([]models.HourSlot, 24)
	for hour := range slots {
		slotStart := dayStart.Add(time.Duration(hour) * time.Hour)
		slotEnd := slotStart.Add(time.Hour)
		slots[hour].Hour = hour
		for _, b := range bookings {
			if b.Blocking() && b.Overlaps(slotStart, slotEnd) {
				slots[hour].Occupied = true
				break
			}
		}
	}
	return slots, nil
}
