// Package config loads config/corporate_reports.yaml and the .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"corporate_reports/pkg/core/edinet"
	"corporate_reports/pkg/core/financials"
	"corporate_reports/pkg/core/report"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	DefaultPath = "config/corporate_reports.yaml"

	EnvConfigPath  = "CORPORATE_REPORTS_CONFIG"
	EnvAPIKey      = "EDINET_API_KEY"
	EnvDatabaseURL = "DATABASE_URL"
)

type Config struct {
	EDINET  EDINETConfig  `yaml:"edinet"`
	Extract ExtractConfig `yaml:"extract"`
	Report  ReportConfig  `yaml:"report"`
	Cache   CacheConfig   `yaml:"cache"`
	Server  ServerConfig  `yaml:"server"`

	// Empty means file-only caching.
	DatabaseURL string `yaml:"database_url"`
}

type EDINETConfig struct {
	APIKey             string `yaml:"-"` // only from EDINET_API_KEY
	BaseURL            string `yaml:"base_url"`
	RequestIntervalMS  int    `yaml:"request_interval_ms"`
	SearchTimeoutSec   int    `yaml:"search_timeout_sec"`
	DownloadTimeoutSec int    `yaml:"download_timeout_sec"`
}

type ExtractConfig struct {
	Concurrency int `yaml:"concurrency"`
}

type ReportConfig struct {
	CSSPath    string `yaml:"css_path"`
	EChartsCDN string `yaml:"echarts_cdn"`
}

type CacheConfig struct {
	Dir string `yaml:"dir"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		EDINET: EDINETConfig{
			BaseURL:            edinet.DefaultBaseURL,
			RequestIntervalMS:  int(edinet.DefaultRequestInterval / time.Millisecond),
			SearchTimeoutSec:   int(edinet.DefaultSearchTimeout / time.Second),
			DownloadTimeoutSec: int(edinet.DefaultDownloadTimeout / time.Second),
		},
		Extract: ExtractConfig{Concurrency: financials.DefaultBatchConcurrency},
		Report: ReportConfig{
			CSSPath:    report.DefaultCSSPath,
			EChartsCDN: report.DefaultEChartsCDN,
		},
		Cache:  CacheConfig{Dir: "data/edinet_cache"},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// LoadEnv loads .env files into the process environment. Missing files are
// not an error.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("[Config] failed to load .env: %v", err)
	}
}

// Path returns the config file location, honouring CORPORATE_REPORTS_CONFIG.
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("invalid config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		log.Printf("[Config] %s not found, using defaults", path)
	default:
		return cfg, err
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.EDINET.APIKey = v
	}
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		c.DatabaseURL = v
	}
}

// ClientConfig converts the EDINET section for edinet.NewClient.
func (c EDINETConfig) ClientConfig() edinet.ClientConfig {
	return edinet.ClientConfig{
		APIKey:          c.APIKey,
		BaseURL:         c.BaseURL,
		RequestInterval: time.Duration(c.RequestIntervalMS) * time.Millisecond,
		SearchTimeout:   time.Duration(c.SearchTimeoutSec) * time.Second,
		DownloadTimeout: time.Duration(c.DownloadTimeoutSec) * time.Second,
	}
}

// Options converts the report section for report.BuildReport.
func (c ReportConfig) Options(noCharts bool) report.Options {
	return report.Options{
		NoCharts:   noCharts,
		CSSPath:    c.CSSPath,
		EChartsCDN: c.EChartsCDN,
	}
}
