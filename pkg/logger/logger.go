package logger

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mission-service/pkg/config"
)

var log *zap.Logger

// InitLogger initializes the global logger
func InitLogger(cfg *config.Config) {
	var logConfig zap.Config

	if cfg.Server.Env == "production" {
		// Production mode: structured JSON logs
		logConfig = zap.NewProductionConfig()
	} else {
		// Development mode: human-readable logs
		logConfig = zap.NewDevelopmentConfig()
		logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = zapcore.InfoLevel
	}
	logConfig.Level.SetLevel(level)

	var err error
	log, err = logConfig.Build()
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	log.Info("Logger initialized", zap.String("level", level.String()))
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if log == nil {
		// Fallback if not initialized
		var err error
		log, err = zap.NewProduction()
		if err != nil {
			panic("Failed to create fallback logger: " + err.Error())
		}
	}
	return log
}

// Middleware returns an Echo middleware that attaches a request-scoped
// logger to the context and logs each HTTP request on completion.
func Middleware(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			requestID := c.Request().Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = c.Response().Header().Get("X-Request-ID")
			}

			ctxLogger := logger.With(zap.String("request_id", requestID))
			c.Set("logger", ctxLogger)

			err := next(c)

			latency := time.Since(start)
			fields := []zapcore.Field{
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", latency),
				zap.String("ip", c.RealIP()),
			}

			if err != nil {
				fields = append(fields, zap.Error(err))
				ctxLogger.Error("HTTP request failed", fields...)
			} else {
				ctxLogger.Info("HTTP request completed", fields...)
			}

			return err
		}
	}
}
