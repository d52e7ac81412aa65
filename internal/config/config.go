package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTP    HTTP
	Archive Archive
	FX      FX
	Files   Files
	S3      S3
	Bot     Bot
	Server  Server
	Log     Log
}

type HTTP struct {
	UserAgent         string        `env:"HTTP_USER_AGENT"          envDefault:"pricetrack/1.0 (+https://github.com/pricetrack)"`
	Timeout           time.Duration `env:"HTTP_TIMEOUT"             envDefault:"20s"`
	Retries           int           `env:"HTTP_RETRIES"             envDefault:"2"`
	RetryBackoff      time.Duration `env:"HTTP_RETRY_BACKOFF"       envDefault:"1s"`
	RequestsPerSecond float64       `env:"HTTP_REQUESTS_PER_SECOND" envDefault:"1"`
	MaxBodyBytes      int64         `env:"HTTP_MAX_BODY_BYTES"      envDefault:"8388608"`
	LogBodyMaxLen     int           `env:"HTTP_LOG_BODY_MAX_LEN"    envDefault:"2048"`
}

type Archive struct {
	CDXURL      string `env:"ARCHIVE_CDX_URL"`
	WebURL      string `env:"ARCHIVE_WEB_URL"`
	SampleMode  string `env:"ARCHIVE_SAMPLE_MODE"  envDefault:"even"`
	SampleCap   int    `env:"ARCHIVE_SAMPLE_CAP"   envDefault:"10"`
	Concurrency int    `env:"ARCHIVE_CONCURRENCY"  envDefault:"3"`
	From        string `env:"ARCHIVE_FROM"`
	To          string `env:"ARCHIVE_TO"`
}

type FX struct {
	BaseURL  string        `env:"FX_BASE_URL"`
	Provider string        `env:"FX_PROVIDER_NAME"`
	CacheTTL time.Duration `env:"FX_CACHE_TTL"     envDefault:"1h"`
}

type Files struct {
	Catalog         string `env:"CATALOG_FILE"        envDefault:"configs/catalog.json"`
	Supplementary   string `env:"SUPPLEMENTARY_FILE"  envDefault:"data/supplementary.json"`
	Artifact        string `env:"ARTIFACT_FILE"       envDefault:"public/data/series.json"`
	MetricsTextfile string `env:"METRICS_TEXTFILE"`
}

// S3 publishing is enabled by a non-empty bucket.
type S3 struct {
	Bucket          string `env:"S3_BUCKET"`
	Key             string `env:"S3_KEY"               envDefault:"data/series.json"`
	Region          string `env:"S3_REGION"            envDefault:"us-east-1"`
	Endpoint        string `env:"S3_ENDPOINT"`
	AccessKeyID     string `env:"S3_ACCESS_KEY_ID"     json:"-"`
	SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY" json:"-"`
	PathStyle       bool   `env:"S3_PATH_STYLE"`
	CacheControl    string `env:"S3_CACHE_CONTROL"     envDefault:"max-age=300"`
}

func (s S3) Enabled() bool {
	return s.Bucket != ""
}

type Server struct {
	ListenAddress        string        `env:"SERVER_LISTEN_ADDRESS"  envDefault:":8080"`
	MetricsListenAddress string        `env:"METRICS_LISTEN_ADDRESS" envDefault:":9090"`
	ProbeListenAddress   string        `env:"PROBE_LISTEN_ADDRESS"   envDefault:":8081"`
	ShutdownTimeout      time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	ScanInterval         time.Duration `env:"SCAN_INTERVAL"`
	ScanRequestInterval  time.Duration `env:"SCAN_REQUEST_INTERVAL"  envDefault:"2s"`
	MaxListings          int           `env:"SCAN_MAX_LISTINGS"      envDefault:"50"`
}

type Log struct {
	Level      string `env:"LOG_LEVEL"        envDefault:"info"`
	File       string `env:"LOG_FILE"`
	FileMaxMB  int    `env:"LOG_FILE_MAX_MB"  envDefault:"10"`
	FileMaxAge int    `env:"LOG_FILE_MAX_AGE" envDefault:"14"`
	NoColor    bool   `env:"LOG_NO_COLOR"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	return config, nil
}
