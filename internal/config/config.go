package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-client-go/internal/pkg/validator"
	"github.com/joho/godotenv"
)

// Auth modes
const (
	AuthModeOAuth2 = "oauth2"
	AuthModeJSON   = "json"
)

// Location sources
const (
	LocationSourceGPSD   = "gpsd"
	LocationSourceStatic = "static"
)

// Location permission policies
const (
	PermissionPrompt  = "prompt"
	PermissionGranted = "granted"
	PermissionDenied  = "denied"
)

type Config struct {
	API      APIConfig
	Office   OfficeConfig
	Location LocationConfig
	Storage  StorageConfig
	Bridge   BridgeConfig
	App      AppConfig
}

// APIConfig holds the remote attendance API settings
type APIConfig struct {
	BaseURL           string
	Timeout           time.Duration
	AuthMode          string
	OAuthClientID     string
	OAuthClientSecret string
}

// OfficeConfig is the geofence and the working day
type OfficeConfig struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
	WorkStart    string
	WorkEnd      string
}

type LocationConfig struct {
	Source          string
	GPSDAddr        string
	StaticLatitude  *float64
	StaticLongitude *float64
	Timeout         time.Duration
	MaxAge          time.Duration
	Permission      string
}

type StorageConfig struct {
	Path       string
	Passphrase string
}

// BridgeConfig holds the local HTTP bridge settings
type BridgeConfig struct {
	Port           int
	AllowedOrigins []string
	TokenTTL       time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Env      string
	LogLevel string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	config := &Config{}
	var err error

	// API configuration
	apiTimeout, err := getEnvDuration("API_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	config.API = APIConfig{
		BaseURL:           getEnv("API_BASE_URL", "https://wf.dev.neo-fusion.com/fira-api"),
		Timeout:           apiTimeout,
		AuthMode:          strings.ToLower(getEnv("AUTH_MODE", AuthModeOAuth2)),
		OAuthClientID:     getEnv("OAUTH_CLIENT_ID", "fira-api-client"),
		OAuthClientSecret: getEnv("OAUTH_CLIENT_SECRET", "please-change-this"),
	}

	// Office configuration
	officeLat, err := getEnvFloat("OFFICE_LATITUDE", "40.7128")
	if err != nil {
		return nil, err
	}
	officeLon, err := getEnvFloat("OFFICE_LONGITUDE", "-74.0060")
	if err != nil {
		return nil, err
	}
	radius, err := getEnvFloat("OFFICE_RADIUS_METERS", "100")
	if err != nil {
		return nil, err
	}

	config.Office = OfficeConfig{
		Latitude:     officeLat,
		Longitude:    officeLon,
		RadiusMeters: radius,
		WorkStart:    getEnv("WORK_START", "09:00"),
		WorkEnd:      getEnv("WORK_END", "17:00"),
	}

	// Location configuration
	staticLat, err := getEnvOptionalFloat("STATIC_LATITUDE")
	if err != nil {
		return nil, err
	}
	staticLon, err := getEnvOptionalFloat("STATIC_LONGITUDE")
	if err != nil {
		return nil, err
	}
	locTimeout, err := getEnvDuration("LOCATION_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	locMaxAge, err := getEnvDuration("LOCATION_MAX_AGE", "10s")
	if err != nil {
		return nil, err
	}

	config.Location = LocationConfig{
		Source:          strings.ToLower(getEnv("LOCATION_SOURCE", LocationSourceGPSD)),
		GPSDAddr:        getEnv("GPSD_ADDR", "127.0.0.1:2947"),
		StaticLatitude:  staticLat,
		StaticLongitude: staticLon,
		Timeout:         locTimeout,
		MaxAge:          locMaxAge,
		Permission:      strings.ToLower(getEnv("LOCATION_PERMISSION", PermissionPrompt)),
	}

	// Storage configuration
	config.Storage = StorageConfig{
		Path:       getEnv("TOKEN_STORE_PATH", defaultStorePath()),
		Passphrase: getEnv("TOKEN_STORE_PASSPHRASE", ""),
	}

	// Bridge configuration
	bridgePort, err := strconv.Atoi(getEnv("BRIDGE_PORT", "8787"))
	if err != nil {
		return nil, fmt.Errorf("invalid BRIDGE_PORT: %w", err)
	}
	tokenTTL, err := getEnvDuration("BRIDGE_TOKEN_TTL", "12h")
	if err != nil {
		return nil, err
	}

	config.Bridge = BridgeConfig{
		Port:           bridgePort,
		AllowedOrigins: getEnvSlice("BRIDGE_ALLOWED_ORIGINS", "http://localhost:*,http://127.0.0.1:*"),
		TokenTTL:       tokenTTL,
	}

	config.App = AppConfig{
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	switch c.API.AuthMode {
	case AuthModeOAuth2:
		if c.API.OAuthClientID == "" {
			return fmt.Errorf("OAUTH_CLIENT_ID is required when AUTH_MODE=oauth2")
		}
	case AuthModeJSON:
	default:
		return fmt.Errorf("AUTH_MODE must be one of: oauth2, json")
	}

	if !validator.IsValidLatitude(c.Office.Latitude) {
		return fmt.Errorf("OFFICE_LATITUDE must be between -90 and 90")
	}
	if !validator.IsValidLongitude(c.Office.Longitude) {
		return fmt.Errorf("OFFICE_LONGITUDE must be between -180 and 180")
	}
	if !(c.Office.RadiusMeters > 0) {
		return fmt.Errorf("OFFICE_RADIUS_METERS must be positive")
	}
	if _, ok := validator.IsValidClock(c.Office.WorkStart); !ok {
		return fmt.Errorf("WORK_START must be HH:MM")
	}
	if _, ok := validator.IsValidClock(c.Office.WorkEnd); !ok {
		return fmt.Errorf("WORK_END must be HH:MM")
	}

	switch c.Location.Source {
	case LocationSourceGPSD:
		if c.Location.GPSDAddr == "" {
			return fmt.Errorf("GPSD_ADDR is required when LOCATION_SOURCE=gpsd")
		}
	case LocationSourceStatic:
		if c.Location.StaticLatitude == nil || c.Location.StaticLongitude == nil {
			return fmt.Errorf("STATIC_LATITUDE and STATIC_LONGITUDE are required when LOCATION_SOURCE=static")
		}
	default:
		return fmt.Errorf("LOCATION_SOURCE must be one of: gpsd, static")
	}
	switch c.Location.Permission {
	case PermissionPrompt, PermissionGranted, PermissionDenied:
	default:
		return fmt.Errorf("LOCATION_PERMISSION must be one of: prompt, granted, denied")
	}
	if c.Location.Timeout <= 0 {
		return fmt.Errorf("LOCATION_TIMEOUT must be positive")
	}
	if c.Location.MaxAge < 0 {
		return fmt.Errorf("LOCATION_MAX_AGE must not be negative")
	}

	if c.Storage.Path == "" {
		return fmt.Errorf("TOKEN_STORE_PATH is required")
	}
	if c.Bridge.Port <= 0 || c.Bridge.Port > 65535 {
		return fmt.Errorf("BRIDGE_PORT must be between 1 and 65535")
	}
	if c.Bridge.TokenTTL <= 0 {
		return fmt.Errorf("BRIDGE_TOKEN_TTL must be positive")
	}
	return nil
}

// LogLevel maps LOG_LEVEL onto slog levels, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "attendctl", "credentials.json")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvFloat(key, fallback string) (float64, error) {
	v, err := strconv.ParseFloat(getEnv(key, fallback), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvOptionalFloat(key string) (*float64, error) {
	if os.Getenv(key) == "" {
		return nil, nil
	}
	v, err := getEnvFloat(key, "")
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func getEnvDuration(key, fallback string) (time.Duration, error) {
	v, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvSlice(key, fallback string) []string {
	value := getEnv(key, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
