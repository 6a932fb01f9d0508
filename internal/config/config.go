package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `json:"server"`
	Assets  AssetsConfig  `json:"assets"`
	Render  RenderConfig  `json:"render"`
	Batch   BatchConfig   `json:"batch"`
	Storage StorageConfig `json:"storage"`
	Logging LoggingConfig `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string   `json:"host"`
	Port         int      `json:"port"`
	ReadTimeout  Duration `json:"read_timeout"`
	WriteTimeout Duration `json:"write_timeout"`
	IdleTimeout  Duration `json:"idle_timeout"`
}

// AssetsConfig locates fonts and the fixed decoration images
type AssetsConfig struct {
	FontDir    string `json:"font_dir"`
	FontFamily string `json:"font_family"`
	Regular    string `json:"regular"`
	Bold       string `json:"bold"`
	Italic     string `json:"italic"`
	Watermark  string `json:"watermark"`
	Logo       string `json:"logo"`
	Frame      string `json:"frame"`
}

// RenderConfig controls single renders
type RenderConfig struct {
	DefaultTemplate string   `json:"default_template"`
	OutputDir       string   `json:"output_dir"`
	RemoteTimeout   Duration `json:"remote_timeout"`
}

// BatchConfig controls batch runs and the roster worker
type BatchConfig struct {
	MaxConcurrent int      `json:"max_concurrent"`
	RenderTimeout Duration `json:"render_timeout"`
	InboxDir      string   `json:"inbox_dir"`
	Schedule      string   `json:"schedule"`
}

// StorageConfig configures S3 publishing. An empty bucket disables it.
type StorageConfig struct {
	Bucket          string   `json:"bucket"`
	Prefix          string   `json:"prefix"`
	Region          string   `json:"region"`
	Endpoint        string   `json:"endpoint"`
	AccessKeyID     string   `json:"access_key_id"`
	SecretAccessKey string   `json:"secret_access_key"`
	UsePathStyle    bool     `json:"use_path_style"`
	PresignExpiry   Duration `json:"presign_expiry"`
}

// LoggingConfig
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"` // json or console
}

// Duration is a time.Duration read from JSON as "30s" or as nanoseconds.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid duration %s", b)
	}
	*d = Duration(n)
	return nil
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  Duration(15 * time.Second),
			WriteTimeout: Duration(30 * time.Second),
			IdleTimeout:  Duration(60 * time.Second),
		},
		Assets: AssetsConfig{
			FontDir:    "font",
			FontFamily: "EBGaramond",
			Regular:    "EBGaramond-Regular.ttf",
			Bold:       "EBGaramond-Bold.ttf",
			Italic:     "EBGaramond-Italic.ttf",
			Watermark:  "images/1717996420665_backImage.png",
			Logo:       "images/1717996285387_rainlogo.png",
			Frame:      "images/1717996469308_frame.png",
		},
		Render: RenderConfig{
			DefaultTemplate: "bordered-inset",
			OutputDir:       "output",
			RemoteTimeout:   Duration(15 * time.Second),
		},
		Batch: BatchConfig{
			MaxConcurrent: 4,
			RenderTimeout: Duration(time.Minute),
			InboxDir:      "inbox",
			Schedule:      "@every 1m",
		},
		Storage: StorageConfig{
			Prefix:        "certificates",
			Region:        "us-east-1",
			PresignExpiry: Duration(24 * time.Hour),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from defaults, an optional JSON file, a
// .env file in the working directory and CERTGEN_* environment variables,
// later sources winning.
func LoadConfig(configPath string) (*Config, error) {
	config := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// .env never overrides variables already set in the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := overrideWithEnv(config); err != nil {
		return nil, err
	}
	return config, nil
}

func overrideWithEnv(config *Config) error {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	dur := func(key string, dst *Duration) {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = Duration(d)
		}
	}
	flag := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	str("CERTGEN_SERVER_HOST", &config.Server.Host)
	num("CERTGEN_SERVER_PORT", &config.Server.Port)

	str("CERTGEN_FONT_DIR", &config.Assets.FontDir)
	str("CERTGEN_WATERMARK", &config.Assets.Watermark)
	str("CERTGEN_LOGO", &config.Assets.Logo)
	str("CERTGEN_FRAME", &config.Assets.Frame)

	str("CERTGEN_TEMPLATE", &config.Render.DefaultTemplate)
	str("CERTGEN_OUTPUT_DIR", &config.Render.OutputDir)
	dur("CERTGEN_REMOTE_TIMEOUT", &config.Render.RemoteTimeout)

	num("CERTGEN_BATCH_MAX_CONCURRENT", &config.Batch.MaxConcurrent)
	str("CERTGEN_BATCH_INBOX", &config.Batch.InboxDir)
	str("CERTGEN_BATCH_SCHEDULE", &config.Batch.Schedule)

	str("CERTGEN_S3_BUCKET", &config.Storage.Bucket)
	str("CERTGEN_S3_PREFIX", &config.Storage.Prefix)
	str("CERTGEN_S3_REGION", &config.Storage.Region)
	str("CERTGEN_S3_ENDPOINT", &config.Storage.Endpoint)
	str("CERTGEN_S3_ACCESS_KEY_ID", &config.Storage.AccessKeyID)
	str("CERTGEN_S3_SECRET_ACCESS_KEY", &config.Storage.SecretAccessKey)
	flag("CERTGEN_S3_USE_PATH_STYLE", &config.Storage.UsePathStyle)
	dur("CERTGEN_S3_PRESIGN_EXPIRY", &config.Storage.PresignExpiry)

	str("CERTGEN_LOG_LEVEL", &config.Logging.Level)
	str("CERTGEN_LOG_FORMAT", &config.Logging.Format)

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment: %w", errors.Join(errs...))
	}
	return nil
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PublishingEnabled reports whether rendered certificates can be uploaded.
func (c *StorageConfig) PublishingEnabled() bool {
	return c.Bucket != ""
}

// NewLogger builds a zap logger for the configured level and format.
func (c *LoggingConfig) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(c.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}

	cfg := zap.NewProductionConfig()
	if c.Format == "console" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}
