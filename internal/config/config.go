package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultJWTSecret = "supersecretkey"

type Config struct {
	Addr          string          `yaml:"addr"`
	JWTSecret     string          `yaml:"jwt_secret"`
	APITimeout    time.Duration   `yaml:"timeout"`
	TokenDuration time.Duration   `yaml:"token_duration"`
	Database      DatabaseConfig  `yaml:"database"`
	Assets        AssetsConfig    `yaml:"assets"`
	Directory     DirectoryConfig `yaml:"directory"`
	Log           LogConfig       `yaml:"log"`
}

type DatabaseConfig struct {
	// Driver is one of sqlite, postgres or memory.
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	DSN    string `yaml:"dsn"`
}

type AssetsConfig struct {
	// Driver is one of fs, s3 or memory.
	Driver string   `yaml:"driver"`
	Root   string   `yaml:"root"`
	S3     S3Config `yaml:"s3"`
	// MaxUploadBytes bounds a single image upload.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
	// Static credentials; when empty the default AWS credential chain applies.
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type DirectoryConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadConfig reads a .env file when present, builds defaults from the
// STAFFDIR_* environment and then applies the YAML file at path, if any.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Addr:          getEnv("STAFFDIR_ADDR", ":8080"),
		JWTSecret:     getEnv("STAFFDIR_JWT_SECRET", defaultJWTSecret),
		APITimeout:    15 * time.Second,
		TokenDuration: 1 * time.Hour,
		Database: DatabaseConfig{
			Driver: getEnv("STAFFDIR_DATABASE_DRIVER", "sqlite"),
			Path:   getEnv("STAFFDIR_DATABASE_PATH", "staffdir.db"),
			DSN:    getEnv("STAFFDIR_DATABASE_DSN", ""),
		},
		Assets: AssetsConfig{
			Driver: getEnv("STAFFDIR_ASSETS_DRIVER", "fs"),
			Root:   getEnv("STAFFDIR_ASSETS_ROOT", "data"),
			S3: S3Config{
				Bucket:          getEnv("STAFFDIR_ASSETS_S3_BUCKET", ""),
				Region:          getEnv("STAFFDIR_ASSETS_S3_REGION", "us-east-1"),
				Endpoint:        getEnv("STAFFDIR_ASSETS_S3_ENDPOINT", ""),
				PathStyle:       strings.EqualFold(os.Getenv("STAFFDIR_ASSETS_S3_PATH_STYLE"), "true"),
				AccessKeyID:     getEnv("STAFFDIR_ASSETS_S3_ACCESS_KEY_ID", ""),
				SecretAccessKey: getEnv("STAFFDIR_ASSETS_S3_SECRET_ACCESS_KEY", ""),
			},
			MaxUploadBytes: 5 << 20,
		},
		Directory: DirectoryConfig{
			DefaultPageSize: getEnvInt("STAFFDIR_DEFAULT_PAGE_SIZE", 10),
			MaxPageSize:     getEnvInt("STAFFDIR_MAX_PAGE_SIZE", 100),
		},
		Log: LogConfig{
			Level:  getEnv("STAFFDIR_LOG_LEVEL", "info"),
			Format: getEnv("STAFFDIR_LOG_FORMAT", "json"),
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks the configuration and fills zero values with defaults.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if c.JWTSecret == defaultJWTSecret && os.Getenv("STAFFDIR_ENV") != "development" {
		return fmt.Errorf("insecure jwt_secret: set STAFFDIR_JWT_SECRET or STAFFDIR_ENV=development")
	}
	if c.APITimeout <= 0 {
		c.APITimeout = 15 * time.Second
	}
	if c.TokenDuration <= 0 {
		c.TokenDuration = 1 * time.Hour
	}

	switch c.Database.Driver {
	case "", "sqlite":
		c.Database.Driver = "sqlite"
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}

	switch c.Assets.Driver {
	case "", "fs":
		c.Assets.Driver = "fs"
		if c.Assets.Root == "" {
			return fmt.Errorf("assets.root is required for fs")
		}
	case "s3":
		if c.Assets.S3.Bucket == "" {
			return fmt.Errorf("assets.s3.bucket is required for s3")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported assets.driver %q", c.Assets.Driver)
	}
	if c.Assets.MaxUploadBytes <= 0 {
		c.Assets.MaxUploadBytes = 5 << 20
	}

	if c.Directory.DefaultPageSize <= 0 {
		c.Directory.DefaultPageSize = 10
	}
	if c.Directory.MaxPageSize <= 0 {
		c.Directory.MaxPageSize = 100
	}
	if c.Directory.DefaultPageSize > c.Directory.MaxPageSize {
		return fmt.Errorf("directory.default_page_size (%d) exceeds max_page_size (%d)",
			c.Directory.DefaultPageSize, c.Directory.MaxPageSize)
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "json", "text":
	default:
		return fmt.Errorf("unsupported log.format %q", c.Log.Format)
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}

	return def
}
