package models

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CurrentSchemaVersion is bumped whenever a change needs more than the
// additive provisioning below. Version 2 widened payment_orders.trade_no
// to TradeNoColumnWidth after booking-prefixed trade nos outgrew the
// original column.
const CurrentSchemaVersion = 2

type SchemaVersion struct {
	ID        int64     `gorm:"primaryKey"`
	Version   int       `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
}

// Provision creates missing tables and columns and gates startup on the
// schema version. It never alters an existing column's type or width;
// when the live schema is behind it fails fast and the operator must run
// the explicit migration step.
func Provision(db *gorm.DB) error {
	if err := db.AutoMigrate(&SchemaVersion{}); err != nil {
		return fmt.Errorf("migrate schema_versions: %w", err)
	}

	live, err := liveSchemaVersion(db)
	if err != nil {
		return err
	}
	if live == 0 {
		live, err = inferSchemaVersion(db)
		if err != nil {
			return err
		}
		if err := recordSchemaVersion(db, live); err != nil {
			return err
		}
	}
	if live < CurrentSchemaVersion {
		return fmt.Errorf(
			"live schema version %d is behind expected %d, run with -migrate first",
			live, CurrentSchemaVersion)
	}

	err = db.AutoMigrate(
		&User{},
		&UserSession{},
		&Store{},
		&Room{},
		&Booking{},
		&Review{},
		&PaymentOrder{},
	)
	if err != nil {
		return fmt.Errorf("provision schema: %w", err)
	}
	return nil
}

// Migrate applies the one-time schema alterations that Provision
// refuses to perform, stepping the recorded version up to current.
func Migrate(db *gorm.DB) error {
	live, err := liveSchemaVersion(db)
	if err != nil {
		return err
	}
	if live >= CurrentSchemaVersion {
		return nil
	}

	for v := live + 1; v <= CurrentSchemaVersion; v++ {
		switch v {
		case 2:
			err = db.Exec(fmt.Sprintf(
				"ALTER TABLE payment_orders ALTER COLUMN trade_no TYPE varchar(%d)",
				TradeNoColumnWidth)).Error
			if err != nil {
				return fmt.Errorf("widen trade_no column: %w", err)
			}
		}
		if err := recordSchemaVersion(db, v); err != nil {
			return err
		}
	}
	return nil
}

// inferSchemaVersion classifies a database with no recorded version. A
// fresh database comes out at the current layout because AutoMigrate
// creates it that way; a deployment that predates version tracking is
// recognized by its narrow trade_no column and must be migrated.
func inferSchemaVersion(db *gorm.DB) (int, error) {
	if !db.Migrator().HasTable(&PaymentOrder{}) {
		return CurrentSchemaVersion, nil
	}
	var width sql.NullInt64
	err := db.Raw(
		`SELECT character_maximum_length FROM information_schema.columns
		 WHERE table_name = 'payment_orders' AND column_name = 'trade_no'`,
	).Scan(&width).Error
	if err != nil {
		return 0, fmt.Errorf("inspect trade_no column: %w", err)
	}
	return schemaVersionForTradeNoWidth(width), nil
}

func schemaVersionForTradeNoWidth(width sql.NullInt64) int {
	if width.Valid && width.Int64 < TradeNoColumnWidth {
		return 1
	}
	return CurrentSchemaVersion
}

func liveSchemaVersion(db *gorm.DB) (int, error) {
	var rec SchemaVersion
	err := db.Order("version DESC").First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return rec.Version, nil
}

func recordSchemaVersion(db *gorm.DB, version int) error {
	rec := SchemaVersion{Version: version, AppliedAt: time.Now()}
	if err := db.Create(&rec).Error; err != nil {
		return fmt.Errorf("record schema version %d: %w", version, err)
	}
	return nil
}

// Seed inserts the demo store and its rooms when the catalog is empty.
// Safe to call on every start.
func Seed(ctx context.Context, repo CatalogRepo) error {
	total, err := repo.CountStores(ctx)
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}

	store := &Store{
		Name:          "Starlight Parlor",
		Address:       "111 Sanlitun St, Chaoyang, Beijing",
		Phone:         "010-12345678",
		BusinessHours: "00:00-24:00",
		Rating:        4.8,
		Latitude:      39.9042,
		Longitude:     116.4074,
		Features:      mustJSON([]string{"free wifi", "air conditioning", "free tea", "open 24h"}),
		Description:   "A modern parlor with private rooms of every size.",
		IsActive:      true,
	}
	if err := repo.CreateStore(ctx, store); err != nil {
		return err
	}

	rooms := []*Room{
		{Name: "Deluxe Suite", Capacity: 8, HourlyPrice: 88, Discount: 0.8, Rating: 4.9},
		{Name: "Standard Room A", Capacity: 6, HourlyPrice: 58, Rating: 4.7},
		{Name: "Standard Room B", Capacity: 6, HourlyPrice: 58, Status: RoomMaintenance, Rating: 4.6},
		{Name: "Cozy Room", Capacity: 4, HourlyPrice: 38, Discount: 0.9, Rating: 4.8},
		{Name: "VIP Suite", Capacity: 12, HourlyPrice: 128, Rating: 5.0},
		{Name: "Business Room", Capacity: 8, HourlyPrice: 78, Rating: 4.5},
	}
	for _, room := range rooms {
		room.StoreID = store.ID
		if room.Status == "" {
			room.Status = RoomAvailable
		}
		if err := repo.CreateRoom(ctx, room); err != nil {
			return err
		}
	}
	return nil
}

func mustJSON(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return datatypes.JSON(b)
}
