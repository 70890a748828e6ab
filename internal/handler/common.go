package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"mission-service/internal/apperr"
	"mission-service/internal/feedview"
	"mission-service/pkg/config"
	"mission-service/pkg/database"
)

// Dependencies shared across handler files, wired once at startup.
var (
	cfg       *config.Config
	feedStore *feedview.Store
)

// SetConfig wires the loaded configuration into the handlers.
func SetConfig(c *config.Config) {
	cfg = c
}

// SetFeedStore wires the in-memory feed store into the handlers.
func SetFeedStore(s *feedview.Store) {
	feedStore = s
}

// currentDB returns the database handle, or a tagged Unavailable error
// when the connection was never established. Handlers respond 503
// instead of panicking on a nil handle.
func currentDB() (*gorm.DB, error) {
	if !database.Available() {
		return nil, apperr.E(apperr.Unavailable, "service unavailable")
	}
	return database.GetDB(), nil
}

// tenantScope is a shorthand for the shared tenant filter scope.
func tenantScope(tenantID uint) func(*gorm.DB) *gorm.DB {
	return database.TenantScope(tenantID)
}

// paramID parses a numeric path parameter.
func paramID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, apperr.E(apperr.Validation, "invalid "+name)
	}
	return uint(id), nil
}
