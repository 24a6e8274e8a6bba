package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	Maps     MapsConfig
	Region   RegionConfig
	Pricing  PricingConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// MapsConfig holds Google Maps API configuration.
type MapsConfig struct {
	APIKey string
}

// RegionConfig configures the home-region classifier. The locality
// allow-list is injectable data, not code.
type RegionConfig struct {
	HomeRegion     string
	HomeLocalities []string
}

// PricingConfig holds the rate card. All amounts are dollars.
type PricingConfig struct {
	BaseFare           float64 // standard base fare per leg
	BariatricBaseFare  float64 // base fare per leg at/above the weight threshold
	BariatricWeightLbs float64
	MaxWeightLbs       float64

	HomeMileRate float64 // per mile when both endpoints are in the home region
	AwayMileRate float64 // per mile otherwise

	RegionSurcharge     float64 // flat, trips touching 2+ non-home regions
	AfterHoursSurcharge float64 // flat, pickup outside the daytime window or on a weekend
	HolidaySurcharge    float64 // flat, additive with the after-hours surcharge
	EmergencyFee        float64
	WheelchairRentalFee float64

	VeteranDiscount float64 // fraction of subtotal, supersedes the default
	DefaultDiscount float64

	DayStartHour int // inclusive start of the daytime window
	DayEndHour   int // exclusive end of the daytime window

	Holidays []string // fixed-date holidays as MM-DD
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "nemt"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "nemt-booking"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Maps: MapsConfig{
			APIKey: getEnv("MAPS_API_KEY", ""),
		},
		Region: RegionConfig{
			HomeRegion:     getEnv("HOME_REGION", "Franklin County"),
			HomeLocalities: getSliceEnv("HOME_LOCALITIES", []string{"Columbus", "Dublin", "Westerville", "Gahanna", "Grove City"}),
		},
		Pricing: LoadPricing(),
	}
}

// LoadPricing loads the rate card from environment variables with the
// canonical defaults.
func LoadPricing() PricingConfig {
	return PricingConfig{
		BaseFare:            getFloatEnv("PRICE_BASE_FARE", 50.0),
		BariatricBaseFare:   getFloatEnv("PRICE_BARIATRIC_BASE_FARE", 150.0),
		BariatricWeightLbs:  getFloatEnv("PRICE_BARIATRIC_WEIGHT_LBS", 300.0),
		MaxWeightLbs:        getFloatEnv("PRICE_MAX_WEIGHT_LBS", 1500.0),
		HomeMileRate:        getFloatEnv("PRICE_HOME_MILE_RATE", 3.0),
		AwayMileRate:        getFloatEnv("PRICE_AWAY_MILE_RATE", 4.0),
		RegionSurcharge:     getFloatEnv("PRICE_REGION_SURCHARGE", 25.0),
		AfterHoursSurcharge: getFloatEnv("PRICE_AFTER_HOURS_SURCHARGE", 15.0),
		HolidaySurcharge:    getFloatEnv("PRICE_HOLIDAY_SURCHARGE", 20.0),
		EmergencyFee:        getFloatEnv("PRICE_EMERGENCY_FEE", 40.0),
		WheelchairRentalFee: getFloatEnv("PRICE_WHEELCHAIR_RENTAL_FEE", 10.0),
		VeteranDiscount:     getFloatEnv("PRICE_VETERAN_DISCOUNT", 0.20),
		DefaultDiscount:     getFloatEnv("PRICE_DEFAULT_DISCOUNT", 0.10),
		DayStartHour:        getIntEnv("PRICE_DAY_START_HOUR", 8),
		DayEndHour:          getIntEnv("PRICE_DAY_END_HOUR", 20),
		Holidays:            getSliceEnv("PRICE_HOLIDAYS", []string{"01-01", "07-04", "12-25"}),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
