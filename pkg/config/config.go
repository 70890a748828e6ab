package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// DBConfig holds database configuration
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// GetDSN returns the PostgreSQL connection string
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SigningKey      string
	ExpirationHours int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Prefix string
}

// DemoConfig holds demo-account credentials. Demo login is available
// only when Password and the role-specific email are all set, and in
// production only when AllowInProduction is explicitly enabled.
type DemoConfig struct {
	Password          string
	AdminEmail        string
	DonorEmail        string
	MissionaryEmail   string
	AllowInProduction bool
}

// EmailForRole returns the demo email configured for role, or "".
func (d *DemoConfig) EmailForRole(role string) string {
	switch role {
	case "admin":
		return d.AdminEmail
	case "donor":
		return d.DonorEmail
	case "missionary":
		return d.MissionaryEmail
	default:
		return ""
	}
}

// CloudinaryConfig holds image CDN credentials. An empty URL disables
// the upload endpoints (they respond 503 rather than failing at boot).
type CloudinaryConfig struct {
	URL          string
	UploadFolder string
}

// Enabled reports whether the image pipeline is configured.
func (c *CloudinaryConfig) Enabled() bool {
	return c.URL != ""
}

// Config holds all configuration
type Config struct {
	DB         DBConfig
	Server     ServerConfig
	JWT        JWTConfig
	Log        LogConfig
	Metrics    MetricsConfig
	Demo       DemoConfig
	Cloudinary CloudinaryConfig
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not returning error as .env file is optional
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	config := &Config{
		DB: DBConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "password"),
			DBName:          getEnv("DB_NAME", "mission_service"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		JWT: JWTConfig{
			SigningKey:      getEnv("JWT_SIGNING_KEY", "missionservicesecretkey"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", "mission"),
		},
		Demo: DemoConfig{
			Password:          getEnv("DEMO_PASSWORD", ""),
			AdminEmail:        getEnv("DEMO_ADMIN_EMAIL", ""),
			DonorEmail:        getEnv("DEMO_DONOR_EMAIL", ""),
			MissionaryEmail:   getEnv("DEMO_MISSIONARY_EMAIL", ""),
			AllowInProduction: getEnvAsBool("DEMO_ALLOW_IN_PRODUCTION", false),
		},
		Cloudinary: CloudinaryConfig{
			URL:          getEnv("CLOUDINARY_URL", ""),
			UploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "mission/media"),
		},
	}

	return config, nil
}

// DemoAvailable reports whether demo login may be offered in the
// current environment. In production it additionally requires the
// explicit opt-in flag.
func (c *Config) DemoAvailable(role string) bool {
	if c.Demo.Password == "" || c.Demo.EmailForRole(role) == "" {
		return false
	}
	if c.Server.Env == "production" && !c.Demo.AllowInProduction {
		return false
	}
	return true
}

// LogConfig returns the configuration as a zap logger-friendly format
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("environment", c.Server.Env),
		zap.String("db_host", c.DB.Host),
		zap.String("db_port", c.DB.Port),
		zap.String("db_name", c.DB.DBName),
		zap.String("server_port", c.Server.Port),
		zap.Bool("cloudinary_enabled", c.Cloudinary.Enabled()),
	}
}

// Helper function to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as integers
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as booleans
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as durations
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as log levels
func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	switch getEnv(key, "") {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}
