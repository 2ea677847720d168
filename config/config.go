package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultPath = "config/config.json"

// File-based configuration. The JSON file is optional and its values are
// exported into environment variables, so env and file can be mixed.
// Keys map to env vars as follows:
//
//	listen           -> LISTEN (e.g. :5000)
//	db_driver        -> DB_DRIVER (pgx|postgres|sqlite)
//	database_url     -> DATABASE_URL
//	db_host          -> DB_HOST
//	db_port          -> DB_PORT
//	db_user          -> DB_USER
//	db_password      -> DB_PASSWORD
//	db_name          -> DB_NAME
//	session_secret   -> SESSION_SECRET
//	session_ttl      -> SESSION_TTL (e.g. 12h)
//	session_secure   -> SESSION_SECURE ("true" sends the cookie over HTTPS only)
//	redis_url        -> REDIS_URL
//	admin_email      -> ADMIN_EMAIL
//	admin_password   -> ADMIN_PASSWORD
//	site_dir         -> SITE_DIR
//	admin_static_dir -> ADMIN_STATIC_DIR
//	cors_origins     -> CORS_ORIGINS (comma separated)
//	log              -> LOG ("1" to enable)
//	log_level        -> LOG_LEVEL (debug|info|error|off)
type file struct {
	Listen         string `json:"listen"`
	DBDriver       string `json:"db_driver"`
	DatabaseURL    string `json:"database_url"`
	DBHost         string `json:"db_host"`
	DBPort         string `json:"db_port"`
	DBUser         string `json:"db_user"`
	DBPassword     string `json:"db_password"`
	DBName         string `json:"db_name"`
	SessionSecret  string `json:"session_secret"`
	SessionTTL     string `json:"session_ttl"`
	SessionSecure  string `json:"session_secure"`
	RedisURL       string `json:"redis_url"`
	AdminEmail     string `json:"admin_email"`
	AdminPassword  string `json:"admin_password"`
	SiteDir        string `json:"site_dir"`
	AdminStaticDir string `json:"admin_static_dir"`
	CORSOrigins    string `json:"cors_origins"`
	Log            string `json:"log"`
	LogLevel       string `json:"log_level"`
}

type Config struct {
	Listen   string
	Database DatabaseConfig
	Session  SessionConfig
	Admin    AdminConfig
	Static   StaticConfig
	CORS     []string
}

type DatabaseConfig struct {
	Driver   string
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

type SessionConfig struct {
	Secret   string
	TTL      time.Duration
	Secure   bool
	RedisURL string
}

type AdminConfig struct {
	Email    string
	Password string
}

type StaticConfig struct {
	SiteDir  string
	AdminDir string
}

var drivers = map[string]bool{"pgx": true, "postgres": true, "sqlite": true}

func setEnvIfNotEmpty(key, val string) {
	if val == "" {
		return
	}
	_ = os.Setenv(key, val)
}

// exportFile reads the JSON config at path and exports it to the environment.
// A missing file is not an error.
func exportFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	var c file
	if err := json.NewDecoder(f).Decode(&c); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	setEnvIfNotEmpty("LISTEN", c.Listen)
	setEnvIfNotEmpty("DB_DRIVER", c.DBDriver)
	setEnvIfNotEmpty("DATABASE_URL", c.DatabaseURL)
	setEnvIfNotEmpty("DB_HOST", c.DBHost)
	setEnvIfNotEmpty("DB_PORT", c.DBPort)
	setEnvIfNotEmpty("DB_USER", c.DBUser)
	setEnvIfNotEmpty("DB_PASSWORD", c.DBPassword)
	setEnvIfNotEmpty("DB_NAME", c.DBName)
	setEnvIfNotEmpty("SESSION_SECRET", c.SessionSecret)
	setEnvIfNotEmpty("SESSION_TTL", c.SessionTTL)
	setEnvIfNotEmpty("SESSION_SECURE", c.SessionSecure)
	setEnvIfNotEmpty("REDIS_URL", c.RedisURL)
	setEnvIfNotEmpty("ADMIN_EMAIL", c.AdminEmail)
	setEnvIfNotEmpty("ADMIN_PASSWORD", c.AdminPassword)
	setEnvIfNotEmpty("SITE_DIR", c.SiteDir)
	setEnvIfNotEmpty("ADMIN_STATIC_DIR", c.AdminStaticDir)
	setEnvIfNotEmpty("CORS_ORIGINS", c.CORSOrigins)
	setEnvIfNotEmpty("LOG", c.Log)
	setEnvIfNotEmpty("LOG_LEVEL", c.LogLevel)
	return nil
}

// Load reads .env and the JSON file at path (both optional) and builds the
// configuration from the environment.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()
	if path == "" {
		path = DefaultPath
	}
	if err := exportFile(path); err != nil {
		return nil, err
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (*Config, error) {
	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "12h"))
	if err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}
	cfg := &Config{
		Listen: getEnv("LISTEN", ":5000"),
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", "pgx")),
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnv("DB_NAME", "portfolio"),
		},
		Session: SessionConfig{
			Secret:   os.Getenv("SESSION_SECRET"),
			TTL:      ttl,
			Secure:   getEnvAsBool("SESSION_SECURE", false),
			RedisURL: os.Getenv("REDIS_URL"),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", "kravann.yorm@student.passerellesnumeriques.org"),
			Password: getEnv("ADMIN_PASSWORD", "1234567"),
		},
		Static: StaticConfig{
			SiteDir:  getEnv("SITE_DIR", "portfolio"),
			AdminDir: getEnv("ADMIN_STATIC_DIR", "static"),
		},
		CORS: splitList(getEnv("CORS_ORIGINS",
			"http://127.0.0.1:5500,http://localhost:5500,http://127.0.0.1:5000")),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("LISTEN is required")
	}
	if !drivers[c.Database.Driver] {
		return fmt.Errorf("DB_DRIVER %q is not supported", c.Database.Driver)
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.Admin.Email == "" || c.Admin.Password == "" {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}
	return nil
}

// DSN returns DATABASE_URL when set, otherwise a URL assembled from the
// connection parameters. For sqlite the database name is the file path.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == "sqlite" {
		return d.Name
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
