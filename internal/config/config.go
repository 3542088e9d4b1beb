package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yaml"

type Config struct {
	Server struct {
		Port         int           `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"readTimeout"`
		WriteTimeout time.Duration `yaml:"writeTimeout"`
		MaxBodyMB    int64         `yaml:"maxBodyMB"`
		CORSOrigins  []string      `yaml:"corsOrigins"`
		RateLimit    struct {
			RPS   float64 `yaml:"rps"`
			Burst int     `yaml:"burst"`
		} `yaml:"rateLimit"`
	} `yaml:"server"`

	AI struct {
		Provider  string `yaml:"provider"` // openai | gemini | sample
		APIKey    string `yaml:"apiKey"`
		Model     string `yaml:"model"`
		BaseURL   string `yaml:"baseURL"`
		MaxTokens int    `yaml:"maxTokens"`
	} `yaml:"ai"`

	Report struct {
		FilePrefix  string `yaml:"filePrefix"`
		Attribution string `yaml:"attribution"`
	} `yaml:"report"`

	Storage struct {
		Driver string `yaml:"driver"` // none | minio | azure | local

		Minio struct {
			Endpoint   string `yaml:"endpoint"`
			AccessKey  string `yaml:"accessKey"`
			SecretKey  string `yaml:"secretKey"`
			BucketName string `yaml:"bucketName"`
			Region     string `yaml:"region"`
			UseSSL     bool   `yaml:"useSSL"`
		} `yaml:"minio"`

		Azure struct {
			ConnectionString string `yaml:"connectionString"`
			AccountName      string `yaml:"accountName"`
			AccountKey       string `yaml:"accountKey"`
			Container        string `yaml:"container"`
		} `yaml:"azure"`

		Local struct {
			Dir     string `yaml:"dir"`
			BaseURL string `yaml:"baseURL"`
		} `yaml:"local"`
	} `yaml:"storage"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default returns a config that runs the API against the hosted gateway with publishing off.
func Default() *Config {
	var c Config
	c.Server.Port = 8080
	c.Server.ReadTimeout = 30 * time.Second
	c.Server.WriteTimeout = 120 * time.Second
	c.Server.MaxBodyMB = 20
	c.Server.CORSOrigins = []string{"*"}
	c.Server.RateLimit.RPS = 2
	c.Server.RateLimit.Burst = 5
	c.AI.Provider = "openai"
	c.Report.FilePrefix = "Achalasia_Report"
	c.Storage.Driver = "none"
	c.Storage.Local.Dir = "reports"
	c.Log.Level = "info"
	c.Log.Format = "json"
	return &c
}

// Load baca file config.yaml, lalu timpa dengan env. File default boleh tidak ada.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && path == DefaultPath:
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides file values with environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
				*dst = strings.TrimSpace(v)
				return
			}
		}
	}

	if v, ok := lookup("PORT"); ok && strings.TrimSpace(v) != "" {
		if p, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.Server.Port = p
		} else {
			c.Server.Port = -1
		}
	}
	str(&c.AI.Provider, "AI_PROVIDER")
	str(&c.AI.APIKey, apiKeyEnv(c.AI.Provider)...)
	str(&c.AI.Model, "AI_MODEL")
	str(&c.AI.BaseURL, "AI_BASE_URL")
	str(&c.Log.Level, "LOG_LEVEL")
	str(&c.Log.Format, "LOG_FORMAT")
	str(&c.Storage.Driver, "STORAGE_DRIVER")
	str(&c.Storage.Minio.Endpoint, "MINIO_ENDPOINT")
	str(&c.Storage.Minio.AccessKey, "MINIO_ACCESS_KEY")
	str(&c.Storage.Minio.SecretKey, "MINIO_SECRET_KEY")
	str(&c.Storage.Minio.BucketName, "MINIO_BUCKET")
	str(&c.Storage.Azure.ConnectionString, "AZURE_STORAGE_CONNECTION_STRING")
	str(&c.Storage.Azure.AccountName, "AZURE_STORAGE_ACCOUNT")
	str(&c.Storage.Azure.AccountKey, "AZURE_STORAGE_KEY")
	str(&c.Storage.Azure.Container, "AZURE_STORAGE_CONTAINER")
	str(&c.Storage.Local.Dir, "REPORTS_DIR")
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.RateLimit.RPS < 0 {
		errs = append(errs, fmt.Errorf("server.rateLimit.rps must be >= 0 (0 disables), got %g", c.Server.RateLimit.RPS))
	}
	switch strings.ToLower(c.AI.Provider) {
	case "openai", "gemini", "sample":
	default:
		errs = append(errs, fmt.Errorf("ai.provider %q is not one of openai, gemini, sample", c.AI.Provider))
	}
	switch strings.ToLower(c.Storage.Driver) {
	case "", "none", "local":
	case "minio":
		if c.Storage.Minio.Endpoint == "" || c.Storage.Minio.BucketName == "" {
			errs = append(errs, errors.New("storage.minio needs endpoint and bucketName"))
		}
	case "azure":
		if c.Storage.Azure.Container == "" {
			errs = append(errs, errors.New("storage.azure needs container"))
		}
		if c.Storage.Azure.ConnectionString == "" && c.Storage.Azure.AccountName == "" {
			errs = append(errs, errors.New("storage.azure needs connectionString or accountName"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not one of none, local, minio, azure", c.Storage.Driver))
	}
	return errors.Join(errs...)
}

// apiKeyEnv lists, in lookup order, the variables that may hold the key for
// provider. A gateway key never falls through to the native Gemini client.
func apiKeyEnv(provider string) []string {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gemini":
		return []string{"AI_API_KEY", "GEMINI_API_KEY"}
	case "sample":
		return []string{"AI_API_KEY"}
	default:
		return []string{"AI_API_KEY", "LOVABLE_API_KEY"}
	}
}

// RateLimitEnabled reports whether inbound requests should be throttled.
// server.rateLimit.rps = 0 turns throttling off.
func (c *Config) RateLimitEnabled() bool {
	return c.Server.RateLimit.RPS > 0
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
