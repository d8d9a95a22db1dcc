package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingAPIKey is the only fatal startup condition: without a model
// credential nothing can be analyzed.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY is not set")

// ErrIncompatibleModel is returned when the configured model cannot accept
// what the ai section asks it to do.
var ErrIncompatibleModel = errors.New("model does not support the requested ai options")

// textOnlyModels reject image parts and the json_object response format.
var textOnlyModels = map[string]bool{
	"gpt-4":         true,
	"gpt-4-0613":    true,
	"gpt-4-32k":     true,
	"gpt-3.5-turbo": true,
}

type Config struct {
	Server struct {
		Port           int   `yaml:"port"`
		MaxUploadBytes int64 `yaml:"maxUploadBytes"`
	} `yaml:"server"`

	AI struct {
		APIKey             string `yaml:"apiKey"`
		BaseURL            string `yaml:"baseURL"`
		Model              string `yaml:"model"`
		MaxTokens          int    `yaml:"maxTokens"`
		AttachImage        bool   `yaml:"attachImage"`
		StructuredHeadline bool   `yaml:"structuredHeadline"`
	} `yaml:"ai"`

	Geo struct {
		IPInfoURL    string `yaml:"ipinfoURL"`
		IPInfoToken  string `yaml:"ipinfoToken"`
		NominatimURL string `yaml:"nominatimURL"`
		UserAgent    string `yaml:"userAgent"`
	} `yaml:"geo"`

	Hospital struct {
		Name  string `yaml:"name"`
		Phone string `yaml:"phone"`
	} `yaml:"hospital"`

	Speech struct {
		Provider string `yaml:"provider"` // gtts | openai
		GTTSURL  string `yaml:"gttsURL"`
		Lang     string `yaml:"lang"`
		Voice    string `yaml:"voice"`
	} `yaml:"speech"`

	Translate struct {
		Provider        string `yaml:"provider"` // gtx | cloud | openai
		GTXURL          string `yaml:"gtxURL"`
		CredentialsFile string `yaml:"credentialsFile"`
		Model           string `yaml:"model"`
	} `yaml:"translate"`

	Minio struct {
		Enabled    bool          `yaml:"enabled"`
		Endpoint   string        `yaml:"endpoint"`
		AccessKey  string        `yaml:"accessKey"`
		SecretKey  string        `yaml:"secretKey"`
		BucketName string        `yaml:"bucketName"`
		Region     string        `yaml:"region"`
		UseSSL     bool          `yaml:"useSSL"`
		URLExpiry  time.Duration `yaml:"urlExpiry"`
	} `yaml:"minio"`

	Session struct {
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"session"`

	// Timeouts bound every outbound call; a zero value falls back to defaults.
	Timeouts struct {
		Geolocation time.Duration `yaml:"geolocation"`
		Analysis    time.Duration `yaml:"analysis"`
		Geocoding   time.Duration `yaml:"geocoding"`
		Speech      time.Duration `yaml:"speech"`
		Translation time.Duration `yaml:"translation"`
	} `yaml:"timeouts"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`

	Assets struct {
		LogoPath string `yaml:"logoPath"`
	} `yaml:"assets"`
}

// Load baca .env (kalau ada), lalu config.yaml, lalu override dari env.
// A missing config file is not an error; defaults plus environment are enough
// to start.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	// attachImage defaults to true, so it must be seeded before decoding
	cfg.AI.AttachImage = true

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if cfg.AI.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if err := cfg.checkModel(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.AI.APIKey = v
	}
	if v := os.Getenv("IPINFO_TOKEN"); v != "" {
		c.Geo.IPInfoToken = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		c.Minio.AccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		c.Minio.SecretKey = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.MaxUploadBytes <= 0 {
		c.Server.MaxUploadBytes = 10 << 20
	}
	if c.AI.Model == "" {
		// gpt-4 cuma teks; kirim gambar butuh model vision
		if c.AI.AttachImage || c.AI.StructuredHeadline {
			c.AI.Model = "gpt-4o"
		} else {
			c.AI.Model = "gpt-4"
		}
	}
	if c.AI.MaxTokens <= 0 {
		c.AI.MaxTokens = 2048
	}
	if c.Geo.IPInfoURL == "" {
		c.Geo.IPInfoURL = "https://ipinfo.io"
	}
	if c.Geo.NominatimURL == "" {
		c.Geo.NominatimURL = "https://nominatim.openstreetmap.org"
	}
	if c.Geo.UserAgent == "" {
		c.Geo.UserAgent = "aarogyam"
	}
	if c.Hospital.Name == "" {
		c.Hospital.Name = "City Medical Center"
	}
	if c.Hospital.Phone == "" {
		c.Hospital.Phone = "+1-234-567-8901"
	}
	if c.Speech.Provider == "" {
		c.Speech.Provider = "gtts"
	}
	if c.Speech.GTTSURL == "" {
		c.Speech.GTTSURL = "https://translate.google.com/translate_tts"
	}
	if c.Speech.Lang == "" {
		c.Speech.Lang = "en"
	}
	if c.Speech.Voice == "" {
		c.Speech.Voice = "alloy"
	}
	if c.Translate.Provider == "" {
		c.Translate.Provider = "gtx"
	}
	if c.Translate.GTXURL == "" {
		c.Translate.GTXURL = "https://translate.googleapis.com/translate_a/single"
	}
	if c.Translate.Model == "" {
		c.Translate.Model = "gpt-4o-mini"
	}
	if c.Minio.BucketName == "" {
		c.Minio.BucketName = "aarogyam-audio"
	}
	if c.Minio.URLExpiry <= 0 {
		c.Minio.URLExpiry = 15 * time.Minute
	}
	if c.Session.TTL <= 0 {
		c.Session.TTL = time.Hour
	}
	if c.Timeouts.Geolocation <= 0 {
		c.Timeouts.Geolocation = 5 * time.Second
	}
	if c.Timeouts.Analysis <= 0 {
		c.Timeouts.Analysis = 90 * time.Second
	}
	if c.Timeouts.Geocoding <= 0 {
		c.Timeouts.Geocoding = 10 * time.Second
	}
	if c.Timeouts.Speech <= 0 {
		c.Timeouts.Speech = 15 * time.Second
	}
	if c.Timeouts.Translation <= 0 {
		c.Timeouts.Translation = 20 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Assets.LogoPath == "" {
		c.Assets.LogoPath = "health-logo.png"
	}
}

func (c *Config) checkModel() error {
	if !textOnlyModels[c.AI.Model] {
		return nil
	}
	if c.AI.AttachImage {
		return fmt.Errorf("%w: %s cannot read images, set ai.attachImage to false or use a vision model such as gpt-4o", ErrIncompatibleModel, c.AI.Model)
	}
	if c.AI.StructuredHeadline {
		return fmt.Errorf("%w: %s has no json_object response format, set ai.structuredHeadline to false or use gpt-4o", ErrIncompatibleModel, c.AI.Model)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
