package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/xinghui/parlor/docs"
	"github.com/xinghui/parlor/internal/container"
	"github.com/xinghui/parlor/internal/handlers"
	"github.com/xinghui/parlor/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(ctn *container.Container) *gin.Engine {
	if ctn.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(ctn.Logger))
	r.Use(middleware.ErrorHandler(ctn.Logger))
	r.Use(gin.Recovery())

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	auth := middleware.AuthMiddleware(ctn.Config.JWTSecret, ctn.Logger)
	admin := middleware.RequireAdmin()

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "OK",
				"service": "parlor-api",
			})
		})

		// public routes
		v1.POST("/users/login", handlers.Login(ctn.UserService))
		v1.POST("/users/refresh", handlers.RefreshToken(ctn.UserService))
		v1.POST("/payment/callback", handlers.PaymentCallback(ctn.PaymentService))

		v1.GET("/stores", handlers.ListStores(ctn.CatalogService))
		v1.GET("/stores/:id", handlers.GetStore(ctn.CatalogService))

		v1.GET("/rooms", handlers.ListRooms(ctn.CatalogService))
		v1.GET("/rooms/search", handlers.SearchRooms(ctn.CatalogService))
		v1.GET("/rooms/:id", handlers.GetRoom(ctn.CatalogService))
		v1.GET("/rooms/:id/availability", handlers.RoomAvailability(ctn.CatalogService))
		v1.GET("/rooms/:id/reviews", handlers.ListRoomReviews(ctn.ReviewService))
		v1.GET("/rooms/:id/reviews/stats", handlers.RoomReviewStats(ctn.ReviewService))
	}

	protected := v1.Group("/")
	protected.Use(auth)

	protected.POST("/rooms/:id/images", admin, handlers.AddRoomImages(ctn.CatalogService))

	userRoutes := protected.Group("/users")
	{
		userRoutes.GET("", admin, handlers.ListUsers(ctn.UserService))
		userRoutes.POST("/logout", handlers.Logout(ctn.UserService))
		userRoutes.GET("/me", handlers.GetProfile(ctn.UserService))
		userRoutes.PUT("/me", handlers.UpdateProfile(ctn.UserService))
		userRoutes.POST("/me/avatar", handlers.UploadAvatar(ctn.UserService))
	}

	bookingRoutes := protected.Group("/bookings")
	{
		bookingRoutes.POST("", handlers.CreateBooking(ctn.BookingService))
		bookingRoutes.GET("/me", handlers.ListMyBookings(ctn.BookingService))
		bookingRoutes.GET("/statistics", handlers.BookingStatistics(ctn.BookingService))
		bookingRoutes.GET("/:id", handlers.GetBooking(ctn.BookingService))
		bookingRoutes.PUT("/:id/cancel", handlers.CancelBooking(ctn.BookingService))
		bookingRoutes.PUT("/:id/status", admin, handlers.UpdateBookingStatus(ctn.BookingService))
	}

	reviewRoutes := protected.Group("/reviews")
	{
		reviewRoutes.POST("", handlers.CreateReview(ctn.ReviewService))
		reviewRoutes.GET("/me", handlers.ListMyReviews(ctn.ReviewService))
		reviewRoutes.GET("/by-booking/:booking_id", handlers.GetReviewByBooking(ctn.ReviewService))
		reviewRoutes.GET("/:id", handlers.GetReview(ctn.ReviewService))
		reviewRoutes.PUT("/:id/reply", admin, handlers.ReplyToReview(ctn.ReviewService))
	}

	paymentRoutes := protected.Group("/payment")
	{
		paymentRoutes.POST("/orders", handlers.CreatePaymentOrder(ctn.PaymentService))
		paymentRoutes.POST("/unified-order", handlers.UnifiedOrder(ctn.PaymentService))
		paymentRoutes.GET("/orders/me", handlers.ListMyPaymentOrders(ctn.PaymentService))
		paymentRoutes.GET("/orders/by-trade-no/:trade_no", handlers.GetPaymentOrderByTradeNo(ctn.PaymentService))
		paymentRoutes.GET("/orders/:id", handlers.GetPaymentOrder(ctn.PaymentService))
		paymentRoutes.PUT("/orders/:id/refund", admin, handlers.RefundPaymentOrder(ctn.PaymentService))
	}

	return r
}
