package config

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/nikogura/resume-matcher/pkg/chart"
	"github.com/nikogura/resume-matcher/pkg/renderer"
	"github.com/nikogura/resume-matcher/pkg/report"
	"github.com/nikogura/resume-matcher/pkg/scoring"
	"github.com/nikogura/resume-matcher/pkg/theme"
	"github.com/pkg/errors"
)

// Theme store backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Export formats.
const (
	FormatPDF  = "pdf"
	FormatHTML = "html"
)

// Environment overrides.
const (
	EnvEndpoint  = "RESUME_MATCHER_ENDPOINT"
	EnvRedisAddr = "RESUME_MATCHER_REDIS_ADDR"
	EnvTimeout   = "RESUME_MATCHER_TIMEOUT_SECONDS"
)

// Config represents the application configuration.
type Config struct {
	Endpoint       string            `json:"endpoint"`
	TimeoutSeconds int               `json:"timeout_seconds"`
	Theme          ThemeConfig       `json:"theme"`
	Chart          ChartConfig       `json:"chart"`
	Colors         report.TierColors `json:"colors"`
	Palettes       theme.Palettes    `json:"palettes"`
	Export         ExportConfig      `json:"export"`
	Server         ServerConfig      `json:"server"`
	CopyAckMillis  int               `json:"copy_ack_millis"`
}

// ThemeConfig selects where the theme flag is persisted.
type ThemeConfig struct {
	Backend       string `json:"backend"`
	StatePath     string `json:"state_path,omitempty"`
	RedisAddr     string `json:"redis_addr,omitempty"`
	RedisPassword string `json:"redis_password,omitempty"`
	RedisDB       int    `json:"redis_db,omitempty"`
	RedisPrefix   string `json:"redis_prefix,omitempty"`
}

// ChartConfig holds the chart canvas size and layout.
type ChartConfig struct {
	Width    int            `json:"width"`
	Height   int            `json:"height"`
	Geometry chart.Geometry `json:"geometry"`
}

// ExportConfig holds report export settings.
type ExportConfig struct {
	Format    string `json:"format"`
	PDFEngine string `json:"pdf_engine"`
	renderer.ExportOptions
}

// ServerConfig holds settings for the served page.
type ServerConfig struct {
	Addr string `json:"addr"`
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() (d time.Duration) {
	d = time.Duration(c.TimeoutSeconds) * time.Second
	return d
}

// CopyAckDelay returns how long the copy confirmation stays visible.
func (c *Config) CopyAckDelay() (d time.Duration) {
	d = time.Duration(c.CopyAckMillis) * time.Millisecond
	return d
}

// Dir returns the default configuration directory.
func Dir() (dir string, err error) {
	var homeDir string
	homeDir, err = os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return dir, err
	}
	dir = filepath.Join(homeDir, ".resume-matcher")
	return dir, err
}

// Default returns the built-in configuration.
func Default() (cfg Config) {
	cfg = Config{
		Endpoint:       scoring.DefaultEndpoint,
		TimeoutSeconds: int(scoring.DefaultTimeout / time.Second),
		Theme: ThemeConfig{
			Backend:     BackendFile,
			RedisPrefix: "resume-matcher:",
		},
		Chart: ChartConfig{
			Width:    400,
			Height:   300,
			Geometry: chart.DefaultGeometry(),
		},
		Colors:   report.DefaultTierColors(),
		Palettes: theme.DefaultPalettes(),
		Export: ExportConfig{
			Format:        FormatPDF,
			PDFEngine:     "wkhtmltopdf",
			ExportOptions: renderer.DefaultExportOptions(),
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
		CopyAckMillis: 2000,
	}
	return cfg
}

// Load reads configuration from file with environment variable overrides.
// A missing file at the default location yields the defaults; a missing explicit path is an error.
func Load(configPath string) (cfg Config, err error) {
	cfg = Default()

	// Values from a local .env become visible to the overrides below.
	_ = godotenv.Load()

	// Determine config file location
	path := configPath
	if path == "" {
		var dir string
		dir, err = Dir()
		if err != nil {
			return cfg, err
		}
		path = filepath.Join(dir, "config.json")
	}

	// Read config file
	var data []byte
	data, err = os.ReadFile(path)
	switch {
	case err == nil:
		err = json.Unmarshal(data, &cfg)
		if err != nil {
			err = errors.Wrapf(err, "failed to parse config file: %s", path)
			return cfg, err
		}
	case os.IsNotExist(err) && configPath == "":
		err = nil
	case os.IsNotExist(err):
		err = errors.Errorf("config file not found: %s (run 'resume-matcher init' to create)", path)
		return cfg, err
	default:
		err = errors.Wrapf(err, "failed to read config file: %s", path)
		return cfg, err
	}

	err = cfg.applyEnv()
	if err != nil {
		return cfg, err
	}

	err = cfg.Validate()
	if err != nil {
		err = errors.Wrap(err, "config validation failed")
		return cfg, err
	}

	return cfg, err
}

func (c *Config) applyEnv() (err error) {
	if endpoint := os.Getenv(EnvEndpoint); endpoint != "" {
		c.Endpoint = endpoint
	}

	if addr := os.Getenv(EnvRedisAddr); addr != "" {
		c.Theme.Backend = BackendRedis
		c.Theme.RedisAddr = addr
	}

	if timeout := os.Getenv(EnvTimeout); timeout != "" {
		c.TimeoutSeconds, err = strconv.Atoi(timeout)
		if err != nil {
			err = errors.Wrapf(err, "invalid %s: %s", EnvTimeout, timeout)
			return err
		}
	}

	return err
}

// Validate checks the configuration and fills unset values with defaults.
func (c *Config) Validate() (err error) {
	if c.Endpoint == "" {
		c.Endpoint = scoring.DefaultEndpoint
	}

	var u *url.URL
	u, err = url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		err = errors.Errorf("endpoint must be an http(s) URL: %s", c.Endpoint)
		return err
	}

	if c.TimeoutSeconds <= 0 {
		err = errors.New("timeout_seconds must be positive")
		return err
	}

	if c.Theme.Backend == "" {
		c.Theme.Backend = BackendFile
	}
	switch c.Theme.Backend {
	case BackendFile:
		if c.Theme.StatePath == "" {
			var dir string
			dir, err = Dir()
			if err != nil {
				return err
			}
			c.Theme.StatePath = filepath.Join(dir, "state.json")
		}
	case BackendRedis:
		if c.Theme.RedisAddr == "" {
			err = errors.Errorf("theme.redis_addr is required for the redis backend (or set %s)", EnvRedisAddr)
			return err
		}
	case BackendMemory:
	default:
		err = errors.Errorf("unknown theme backend: %s", c.Theme.Backend)
		return err
	}

	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		err = errors.Errorf("chart size must be positive, got %dx%d", c.Chart.Width, c.Chart.Height)
		return err
	}
	c.Chart.Geometry = c.Chart.Geometry.WithDefaults()
	c.Colors = c.Colors.WithDefaults()
	c.Palettes = c.Palettes.WithDefaults()

	err = c.validateExport()
	if err != nil {
		return err
	}

	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8080"
	}
	if c.CopyAckMillis <= 0 {
		c.CopyAckMillis = 2000
	}

	return err
}

func (c *Config) validateExport() (err error) {
	export := &c.Export
	export.Format = strings.ToLower(export.Format)
	if export.Format == "" {
		export.Format = FormatPDF
	}
	if export.Format != FormatPDF && export.Format != FormatHTML {
		err = errors.Errorf("export.format must be %q or %q, got %q", FormatPDF, FormatHTML, export.Format)
		return err
	}

	if export.PDFEngine == "" {
		export.PDFEngine = "wkhtmltopdf"
	}
	if export.FilenameTemplate == "" {
		export.FilenameTemplate = renderer.DefaultFilenameTemplate
	}
	if export.OutputDir == "" {
		export.OutputDir = "."
	}
	if export.PageSize == "" {
		export.PageSize = "A4"
	}

	if export.MarginMM < 0 {
		err = errors.New("export.margin_mm must not be negative")
		return err
	}
	if export.ImageQuality <= 0 || export.ImageQuality > 1 {
		err = errors.Errorf("export.image_quality must be in (0, 1], got %v", export.ImageQuality)
		return err
	}
	if export.Scale <= 0 {
		err = errors.Errorf("export.scale must be positive, got %v", export.Scale)
		return err
	}

	switch strings.ToLower(export.Orientation) {
	case "":
		export.Orientation = "portrait"
	case "portrait", "landscape":
	default:
		err = errors.Errorf("export.orientation must be portrait or landscape, got %q", export.Orientation)
		return err
	}

	return err
}

// InitConfig creates a default configuration file.
func InitConfig(configPath string) (err error) {
	// Determine config file location
	path := configPath
	if path == "" {
		var dir string
		dir, err = Dir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.json")
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create config directory: %s", dir)
		return err
	}

	// Check if file already exists
	_, err = os.Stat(path)
	if err == nil {
		err = errors.Errorf("config file already exists: %s", path)
		return err
	}

	defaultConfig := Default()
	defaultConfig.Theme.StatePath = filepath.Join(dir, "state.json")

	// Write to file
	var data []byte
	data, err = json.MarshalIndent(defaultConfig, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal default config")
		return err
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write config file: %s", path)
		return err
	}

	return err
}
