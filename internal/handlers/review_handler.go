package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xinghui/parlor/internal/models"
	"github.com/xinghui/parlor/internal/services"
)

func CreateReview(rs *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsOrAbort(c)
		if !ok {
			return
		}

		var req models.ReviewCreate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		review, err := rs.Create(c.Request.Context(), claims.UserID, &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(review, "Review posted"))
	}
}

func GetReview(rs *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		review, err := rs.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(review, ""))
	}
}

// GetReviewByBooking returns the caller's review for a booking; 404
// means the booking has not been reviewed yet.
func GetReviewByBooking(rs *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsOrAbort(c)
		if !ok {
			return
		}
		id, ok := idParam(c, "booking_id")
		if !ok {
			return
		}
		review, err := rs.GetByBooking(c.Request.Context(), claims.UserID, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(review, ""))
	}
}

func ListRoomReviews(rs *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		page, size := pageQuery(c)
		reviews, total, page, size, err := rs.ListByRoom(c.Request.Context(), id, page, size)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(reviews, page, size, total))
	}
}

func ListMyReviews(rs *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsOrAbort(c)
		if !ok {
			return
		}
		page, size := pageQuery(c)
		reviews, total, page, size, err := rs.ListMine(c.Request.Context(), claims.UserID, page, size)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(reviews, page, size, total))
	}
}

func RoomReviewStats(rs *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		stats, err := rs.RoomStats(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(stats, ""))
	}
}

type replyRequest struct {
	Reply string `json:"reply" binding:"required"`
}

// ReplyToReview attaches the store response. Admin only.
func ReplyToReview(rs *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		var req replyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		review, err := rs.Reply(c.Request.Context(), id, req.Reply)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(review, "Reply posted"))
	}
}
