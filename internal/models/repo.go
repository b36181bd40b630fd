package models

import (
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var Validate = validator.New()

// GormRepo is the concrete repository over the relational store. It
// implements UserRepo, CatalogRepo, BookingRepo, ReviewRepo and
// PaymentRepo; services depend on those interfaces.
type GormRepo struct {
	db *gorm.DB
}

func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{db: db}
}
