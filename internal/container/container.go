package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"gorm.io/gorm"

	"github.com/xinghui/parlor/internal/config"
	"github.com/xinghui/parlor/internal/models"
	"github.com/xinghui/parlor/internal/services"
	"github.com/xinghui/parlor/internal/wechat"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *slog.Logger
	DB         *gorm.DB
	Cloudinary *cloudinary.Cloudinary
	Gateway    wechat.Gateway

	UserService    *services.UserService
	CatalogService *services.CatalogService
	BookingService *services.BookingService
	ReviewService  *services.ReviewService
	PaymentService *services.PaymentService
}

// NewContainer wires repositories and services from the shared clients.
func NewContainer(
	cfg *config.Config,
	logger *slog.Logger,
	db *gorm.DB,
	cld *cloudinary.Cloudinary,
	gateway wechat.Gateway,
) *Container {
	repo := models.NewGormRepo(db)

	return &Container{
		Config:     cfg,
		Logger:     logger,
		DB:         db,
		Cloudinary: cld,
		Gateway:    gateway,

		UserService:    services.NewUserService(repo, gateway, cld, cfg, logger),
		CatalogService: services.NewCatalogService(repo, repo, cld),
		BookingService: services.NewBookingService(repo, repo, repo, logger),
		ReviewService:  services.NewReviewService(repo, repo, repo, cld, logger),
		PaymentService: services.NewPaymentService(repo, repo, gateway, cfg, logger),
	}
}
