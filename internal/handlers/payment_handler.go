package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xinghui/parlor/internal/models"
	"github.com/xinghui/parlor/internal/services"
)

type createOrderRequest struct {
	BookingID int64 `json:"booking_id" binding:"required"`
}

func CreatePaymentOrder(ps *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsOrAbort(c)
		if !ok {
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		order, err := ps.CreateOrderForBooking(c.Request.Context(), claims.UserID, req.BookingID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(order, "Payment order ready"))
	}
}

type unifiedOrderRequest struct {
	TradeNo string `json:"out_trade_no" binding:"required"`
	OpenID  string `json:"openid"`
}

// UnifiedOrder places the order with the payment gateway and returns
// the mini-program payment parameters.
func UnifiedOrder(ps *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsOrAbort(c)
		if !ok {
			return
		}

		var req unifiedOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		openid := req.OpenID
		if openid == "" {
			openid = claims.OpenID
		}

		params, order, err := ps.UnifiedOrder(c.Request.Context(), claims.UserID, openid, req.TradeNo, c.ClientIP())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"payment": params,
			"order":   order,
		}, "Unified order placed"))
	}
}

// PaymentCallback receives the gateway's settlement notification. The
// response body follows the gateway's errcode convention so it stops
// retrying once we acknowledge.
func PaymentCallback(ps *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cb services.Callback
		if err := c.ShouldBindJSON(&cb); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errcode": -1, "errmsg": err.Error()})
			return
		}

		if _, err := ps.HandleCallback(c.Request.Context(), &cb); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"errcode": 0, "errmsg": "OK"})
	}
}

func GetPaymentOrder(ps *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsOrAbort(c)
		if !ok {
			return
		}
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		order, err := ps.Get(c.Request.Context(), claims.UserID, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(order, ""))
	}
}

func GetPaymentOrderByTradeNo(ps *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsOrAbort(c)
		if !ok {
			return
		}
		tradeNo := c.Param("trade_no")
		if tradeNo == "" {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("trade_no parameter is required"))
			return
		}

		order, err := ps.GetByTradeNo(c.Request.Context(), claims.UserID, tradeNo)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(order, ""))
	}
}

func ListMyPaymentOrders(ps *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsOrAbort(c)
		if !ok {
			return
		}

		status := models.PaymentStatus(c.Query("status"))
		page, size := pageQuery(c)
		orders, total, page, size, err := ps.ListMine(c.Request.Context(), claims.UserID, status, page, size)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(orders, page, size, total))
	}
}

// RefundPaymentOrder moves a paid order to refunded. Admin only.
func RefundPaymentOrder(ps *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		order, err := ps.Refund(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(order, "Order refunded"))
	}
}
