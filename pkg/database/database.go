package database

import (
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mission-service/internal/model"
	"mission-service/pkg/config"
)

var db *gorm.DB

// InitDB initializes the database connection with the provided configuration
func InitDB(cfg *config.Config) error {
	// Disable implicit prepared statement usage to avoid "prepared
	// statement already exists" errors behind connection poolers
	pgConfig := postgres.Config{
		DSN:                  cfg.DB.GetDSN(),
		PreferSimpleProtocol: true,
	}

	conn, err := gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger:         logger.Default.LogMode(cfg.DB.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		return err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}

	if cfg.DB.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	}
	if cfg.DB.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	}
	if cfg.DB.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	}

	if err := conn.AutoMigrate(
		&model.User{},
		&model.Tenant{},
		&model.Profile{},
		&model.Missionary{},
		&model.Donor{},
		&model.Post{},
		&model.PostComment{},
		&model.PostReaction{},
		&model.Donation{},
		&model.Fund{},
		&model.Follow{},
		&model.DonorFeedPreferences{},
		&model.Location{},
	); err != nil {
		return err
	}

	db = conn
	return nil
}

// GetDB returns the database instance, or nil before InitDB succeeds.
// Handlers treat nil as service-unavailable rather than panicking.
func GetDB() *gorm.DB {
	return db
}

// Available reports whether the database has been initialized.
func Available() bool {
	return db != nil
}

// TenantScope restricts a query to rows owned by the given tenant.
// Every tenant-scoped handler query goes through this.
func TenantScope(tenantID uint) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("tenant_id = ?", tenantID)
	}
}

// IsNotFound reports whether err is gorm's record-not-found.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicate reports whether err is a unique-constraint violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
