package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port               string
	AppEnv             string
	DBDriver           string
	DBHost             string
	DBPort             string
	DBUser             string
	DBPassword         string
	DBName             string
	SQLitePath         string
	SessionStore       string
	RedisHost          string
	RedisPort          string
	SessionSecret      string
	GinMode            string
	ReportCommand      []string
	ReportTimeout      time.Duration
	ReferenceCacheSize int
	ReferenceCacheTTL  time.Duration
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		AppEnv:             getEnv("APP_ENV", "development"),
		DBDriver:           getEnv("DB_DRIVER", "mysql"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "3306"),
		DBUser:             getEnv("DB_USER", "sgs"),
		DBPassword:         getEnv("DB_PASSWORD", "sgspassword"),
		DBName:             getEnv("DB_NAME", "groundcheck"),
		SQLitePath:         getEnv("SQLITE_PATH", "groundcheck.db"),
		SessionStore:       getEnv("SESSION_STORE", "cookie"),
		RedisHost:          getEnv("REDIS_HOST", "localhost"),
		RedisPort:          getEnv("REDIS_PORT", "6379"),
		SessionSecret:      getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:            getEnv("GIN_MODE", "debug"),
		ReportCommand:      strings.Fields(getEnv("REPORT_COMMAND", "reportgen")),
		ReportTimeout:      getEnvDuration("REPORT_TIMEOUT", 60*time.Second),
		ReferenceCacheSize: getEnvInt("REFERENCE_CACHE_SIZE", 256),
		ReferenceCacheTTL:  getEnvDuration("REFERENCE_CACHE_TTL", 5*time.Minute),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// ClientConfig configures the field CLI. Flags override these values.
type ClientConfig struct {
	AppEnv              string
	ServerURL           string
	DataPath            string
	CameraDevice        string
	CameraCommand       []string
	ReportCommand       []string
	OnlineCheckInterval time.Duration
	SubmitTimeout       time.Duration
	RequestTimeout      time.Duration
}

func LoadClient() *ClientConfig {
	return &ClientConfig{
		AppEnv:              getEnv("APP_ENV", "development"),
		ServerURL:           getEnv("SGS_SERVER_URL", "http://localhost:8080"),
		DataPath:            getEnv("SGS_DATA_PATH", defaultDataPath()),
		CameraDevice:        getEnv("SGS_CAMERA_DEVICE", "/dev/video0"),
		CameraCommand:       strings.Fields(os.Getenv("SGS_CAMERA_COMMAND")),
		ReportCommand:       strings.Fields(os.Getenv("SGS_REPORT_COMMAND")),
		OnlineCheckInterval: getEnvDuration("SGS_ONLINE_CHECK_INTERVAL", 5*time.Second),
		SubmitTimeout:       getEnvDuration("SGS_SUBMIT_TIMEOUT", 10*time.Second),
		RequestTimeout:      getEnvDuration("SGS_REQUEST_TIMEOUT", 30*time.Second),
	}
}

func defaultDataPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".sgs", "clerk.db")
	}
	return filepath.Join(home, ".sgs", "clerk.db")
}
