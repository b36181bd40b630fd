package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xinghui/parlor/internal/models"
	"github.com/xinghui/parlor/internal/services"
)

func ListStores(cs *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, size := pageQuery(c)
		stores, total, page, size, err := cs.ListStores(c.Request.Context(), page, size)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(stores, page, size, total))
	}
}

func GetStore(cs *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		store, err := cs.GetStore(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(store, ""))
	}
}

func ListRooms(cs *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.RoomFilter
		if v := c.Query("store_id"); v != "" {
			filter.StoreID, _ = strconv.ParseInt(v, 10, 64)
		}
		if v := c.Query("capacity"); v != "" {
			filter.MinCapacity, _ = strconv.Atoi(v)
		}
		if v := c.Query("min_price"); v != "" {
			filter.MinPrice, _ = strconv.ParseFloat(v, 64)
		}
		if v := c.Query("max_price"); v != "" {
			filter.MaxPrice, _ = strconv.ParseFloat(v, 64)
		}
		if v := c.Query("status"); v != "" {
			filter.Status = models.RoomStatus(v)
		}

		page, size := pageQuery(c)
		rooms, total, page, size, err := cs.ListRooms(c.Request.Context(), filter, page, size)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(rooms, page, size, total))
	}
}

func SearchRooms(cs *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, size := pageQuery(c)
		rooms, total, page, size, err := cs.SearchRooms(c.Request.Context(), c.Query("q"), page, size)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(rooms, page, size, total))
	}
}

func GetRoom(cs *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		room, err := cs.GetRoom(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(room, ""))
	}
}

type roomImagesRequest struct {
	Images []string `json:"images" binding:"required,min=1"`
}

// AddRoomImages appends gallery images to a room. Admin only.
func AddRoomImages(cs *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		var req roomImagesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		room, err := cs.AddRoomImages(c.Request.Context(), id, req.Images)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(room, "Room images updated"))
	}
}

// RoomAvailability reports hour-by-hour occupancy for ?date=YYYY-MM-DD,
// defaulting to today.
func RoomAvailability(cs *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		day := time.Now()
		if v := c.Query("date"); v != "" {
			parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
			if err != nil {
				c.JSON(http.StatusBadRequest, models.ErrorResponse("date must be YYYY-MM-DD"))
				return
			}
			day = parsed
		}

		slots, err := cs.Availability(c.Request.Context(), id, day)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"room_id": id,
			"date":    day.Format("2006-01-02"),
			"slots":   slots,
		}, ""))
	}
}
