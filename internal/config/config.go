package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/geo"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported storage backends for attendance and employee records.
const (
	DriverPostgres = "postgres"
	DriverMongoDB  = "mongodb"
)

type Config struct {
	Database   DatabaseConfig
	Mongo      MongoConfig
	JWT        JWTConfig
	App        AppConfig
	Storage    StorageConfig
	Attendance AttendanceConfig
	Face       FaceConfig
	Bootstrap  BootstrapAdminConfig
}

type DatabaseConfig struct {
	Driver   string
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	// AutoMigrate applies pending migrations at startup
	AutoMigrate bool
}

type MongoConfig struct {
	URI      string
	Database string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
	MaxBodyBytes   int64
}

type StorageConfig struct {
	BasePath string
	BaseURL  string
}

// AttendanceConfig holds the shift and geofence rules.
type AttendanceConfig struct {
	ShiftStart      string
	Weekends        []time.Weekday
	Timezone        string
	OfficeLatitude  float64
	OfficeLongitude float64
	OfficeRadiusKm  float64
	// PolicyFile is an optional YAML file overriding the values above
	PolicyFile string
}

type FaceConfig struct {
	MatchThreshold float64
	CacheTTL       time.Duration
}

// BootstrapAdminConfig seeds the first admin account; skipped when Email is empty.
type BootstrapAdminConfig struct {
	Name         string
	Email        string
	EmployeeCode string
	Password     string
}

func Load() (*Config, error) {
	// .env is optional, the process environment always wins
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config, err := fromEnv()
	if err != nil {
		return nil, err
	}

	if config.Attendance.PolicyFile != "" {
		if err := config.Attendance.applyPolicyFile(config.Attendance.PolicyFile); err != nil {
			return nil, err
		}
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func fromEnv() (*Config, error) {
	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	autoMigrate, err := strconv.ParseBool(getEnv("DB_AUTO_MIGRATE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_AUTO_MIGRATE: %w", err)
	}

	config.Database = DatabaseConfig{
		Driver:      strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		URL:         getEnv("DATABASE_URL", ""),
		Host:        getEnv("DB_HOST", "localhost"),
		Port:        dbPort,
		User:        getEnv("DB_USER", "postgres"),
		Password:    getEnv("DB_PASSWORD", ""),
		Name:        getEnv("DB_NAME", "attendance"),
		SSLMode:     getEnv("DB_SSL_MODE", "disable"),
		AutoMigrate: autoMigrate,
	}

	config.Mongo = MongoConfig{
		URI:      getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		Database: getEnv("MONGO_DATABASE", "attendance_db"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	maxBody, err := strconv.ParseInt(getEnv("APP_MAX_BODY_BYTES", strconv.Itoa(10<<20)), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_MAX_BODY_BYTES: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		MaxBodyBytes:   maxBody,
	}

	// JWT configuration
	accessExpiration, err := time.ParseDuration(getEnv("JWT_ACCESS_EXPIRATION_TIME", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: accessExpiration,
	}

	port := strconv.Itoa(appPort)
	config.Storage = StorageConfig{
		BasePath: getEnv("STORAGE_BASE_PATH", "./uploads"),
		BaseURL:  getEnv("STORAGE_BASE_URL", "http://localhost:"+port+"/uploads"),
	}

	// Attendance policy
	weekends, err := parseWeekdays(getEnvSlice("ATTENDANCE_WEEKENDS", "saturday,sunday"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_WEEKENDS: %w", err)
	}

	officeLat, err := getEnvFloat("OFFICE_LATITUDE", 40.7580)
	if err != nil {
		return nil, err
	}
	officeLng, err := getEnvFloat("OFFICE_LONGITUDE", -73.9855)
	if err != nil {
		return nil, err
	}
	officeRadius, err := getEnvFloat("OFFICE_RADIUS_KM", 0.5)
	if err != nil {
		return nil, err
	}

	config.Attendance = AttendanceConfig{
		ShiftStart:      getEnv("SHIFT_START", "10:00"),
		Weekends:        weekends,
		Timezone:        getEnv("ATTENDANCE_TIMEZONE", "UTC"),
		OfficeLatitude:  officeLat,
		OfficeLongitude: officeLng,
		OfficeRadiusKm:  officeRadius,
		PolicyFile:      getEnv("ATTENDANCE_POLICY_FILE", ""),
	}

	// Face verification
	threshold, err := getEnvFloat("FACE_MATCH_THRESHOLD", 0.6)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := time.ParseDuration(getEnv("FACE_CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid FACE_CACHE_TTL: %w", err)
	}

	config.Face = FaceConfig{
		MatchThreshold: threshold,
		CacheTTL:       cacheTTL,
	}

	config.Bootstrap = BootstrapAdminConfig{
		Name:         getEnv("BOOTSTRAP_ADMIN_NAME", "Administrator"),
		Email:        getEnv("BOOTSTRAP_ADMIN_EMAIL", ""),
		EmployeeCode: getEnv("BOOTSTRAP_ADMIN_EMPLOYEE_CODE", "ADMIN"),
		Password:     getEnv("BOOTSTRAP_ADMIN_PASSWORD", ""),
	}

	return config, nil
}

// policyFile mirrors AttendanceConfig; absent keys leave the environment values untouched.
type policyFile struct {
	ShiftStart *string  `yaml:"shift_start"`
	Timezone   *string  `yaml:"timezone"`
	Weekends   []string `yaml:"weekends"`
	Office     *struct {
		Latitude  *float64 `yaml:"latitude"`
		Longitude *float64 `yaml:"longitude"`
		RadiusKm  *float64 `yaml:"radius_km"`
	} `yaml:"office"`
}

func (a *AttendanceConfig) applyPolicyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read attendance policy file: %w", err)
	}

	var file policyFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("failed to parse attendance policy file: %w", err)
	}

	if file.ShiftStart != nil {
		a.ShiftStart = *file.ShiftStart
	}
	if file.Timezone != nil {
		a.Timezone = *file.Timezone
	}
	if file.Weekends != nil {
		weekends, err := parseWeekdays(file.Weekends)
		if err != nil {
			return fmt.Errorf("invalid weekends in attendance policy file: %w", err)
		}
		a.Weekends = weekends
	}
	if file.Office != nil {
		if file.Office.Latitude != nil {
			a.OfficeLatitude = *file.Office.Latitude
		}
		if file.Office.Longitude != nil {
			a.OfficeLongitude = *file.Office.Longitude
		}
		if file.Office.RadiusKm != nil {
			a.OfficeRadiusKm = *file.Office.RadiusKm
		}
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.JWT.AccessExpiration <= 0 {
		return fmt.Errorf("JWT_ACCESS_EXPIRATION_TIME must be positive")
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.URL == "" && c.Database.Password == "" {
			return fmt.Errorf("DATABASE_URL or DB_PASSWORD is required")
		}
	case DriverMongoDB:
		if c.Mongo.URI == "" {
			return fmt.Errorf("MONGO_URI is required")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	if _, err := c.Policy(); err != nil {
		return err
	}
	if !geo.ValidCoordinate(c.Attendance.OfficeLatitude, c.Attendance.OfficeLongitude) {
		return fmt.Errorf("office coordinates are out of range")
	}
	if c.Attendance.OfficeRadiusKm < 0 {
		return fmt.Errorf("OFFICE_RADIUS_KM must not be negative")
	}

	if c.Face.MatchThreshold <= 0 {
		return fmt.Errorf("FACE_MATCH_THRESHOLD must be positive")
	}

	if c.Bootstrap.Email != "" && len(c.Bootstrap.Password) < 8 {
		return fmt.Errorf("BOOTSTRAP_ADMIN_PASSWORD must be at least 8 characters")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Policy builds the shift policy punches are classified against.
func (c *Config) Policy() (attendance.Policy, error) {
	policy, err := attendance.NewPolicy(c.Attendance.ShiftStart, c.Attendance.Weekends, c.Attendance.Timezone)
	if err != nil {
		return attendance.Policy{}, fmt.Errorf("invalid attendance policy: %w", err)
	}
	return policy, nil
}

func (c *Config) Office() geo.Office {
	return geo.Office{
		Latitude:  c.Attendance.OfficeLatitude,
		Longitude: c.Attendance.OfficeLongitude,
		RadiusKm:  c.Attendance.OfficeRadiusKm,
	}
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekdays(names []string) ([]time.Weekday, error) {
	result := make([]time.Weekday, 0, len(names))
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		day, ok := weekdays[key]
		if !ok {
			// Accept three-letter abbreviations too
			for full, d := range weekdays {
				if len(key) == 3 && strings.HasPrefix(full, key) {
					day, ok = d, true
					break
				}
			}
		}
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		result = append(result, day)
	}
	return result, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

// getEnvSlice splits a comma separated variable. Setting it to "none" yields an empty slice.
func getEnvSlice(env string, fallback string) []string {
	value := getEnv(env, fallback)
	if value == "" || strings.EqualFold(value, "none") {
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
