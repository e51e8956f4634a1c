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

	domain "github.com/bryanwahyu/cyber-assistant/internal/domain/analysis"
)

// History backends
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Credentials come from the environment only, never from the YAML file.
type Credentials struct {
	Groq       string
	VirusTotal string
	OTX        string
	Google     string
	AbuseIPDB  string
}

type Config struct {
	Server struct {
		Port        int      `yaml:"port"`
		CORSOrigins []string `yaml:"corsOrigins"`
		MaxUploadMB int64    `yaml:"maxUploadMB"`
		RateLimit   struct {
			Capacity   int `yaml:"capacity"`
			RefillRate int `yaml:"refillRate"`
		} `yaml:"rateLimit"`
	} `yaml:"server"`

	Completion struct {
		BaseURL        string `yaml:"baseURL"`
		Model          string `yaml:"model"`
		TimeoutSeconds int    `yaml:"timeoutSeconds"`
	} `yaml:"completion"`

	// Upstream base URLs, empty means the public service.
	Upstreams struct {
		VirusTotal   string `yaml:"virustotal"`
		SafeBrowsing string `yaml:"safebrowsing"`
		AbuseIPDB    string `yaml:"abuseipdb"`
		OTX          string `yaml:"otx"`
	} `yaml:"upstreams"`

	History struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
		Path   string `yaml:"path"`
	} `yaml:"history"`

	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"database"`

	Redis struct {
		URL        string `yaml:"url"`
		TTLMinutes int    `yaml:"ttlMinutes"`
	} `yaml:"redis"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	SMS struct {
		DefaultRegion string `yaml:"defaultRegion"`
	} `yaml:"sms"`

	Tracing struct {
		Enabled     bool   `yaml:"enabled"`
		ServiceName string `yaml:"serviceName"`
	} `yaml:"tracing"`

	Credentials Credentials `yaml:"-"`
}

// Default returns a config that serves on :8000 with in-memory history.
func Default() *Config {
	var c Config
	c.Server.Port = 8000
	c.Server.CORSOrigins = []string{"*"}
	c.Server.MaxUploadMB = 32
	c.Server.RateLimit.Capacity = 60
	c.Server.RateLimit.RefillRate = 1
	c.Completion.TimeoutSeconds = 30
	c.History.Driver = DriverMemory
	c.History.Path = "scan_history.json"
	c.Redis.TTLMinutes = 60
	c.SMS.DefaultRegion = "ID"
	c.Tracing.ServiceName = "cyber-assistant"
	return &c
}

// Load reads .env (if any), the YAML file at path (missing file keeps defaults)
// and then applies environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(k string) string {
		v, _ := lookup(k)
		return strings.TrimSpace(v)
	}

	c.Credentials = Credentials{
		Groq:       get("GROQ_API_KEY"),
		VirusTotal: get("VT_API_KEY"),
		OTX:        get("OTX_API_KEY"),
		Google:     get("GOOGLE_API_KEY"),
		AbuseIPDB:  get("ABUSEIPDB_KEY"),
	}

	if v := get("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := get("HISTORY_DRIVER"); v != "" {
		c.History.Driver = strings.ToLower(v)
	}
	if v := get("HISTORY_DSN"); v != "" {
		c.History.DSN = v
	}
	if v := get("REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
	return nil
}

// Validate rejects a config the process must not serve traffic with.
func (c *Config) Validate() error {
	if c.Credentials.Groq == "" {
		return fmt.Errorf("GROQ_API_KEY: %w", domain.ErrMissingCredential)
	}
	switch c.History.Driver {
	case DriverMemory, DriverFile, DriverSQLite, DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("unknown history driver %q", c.History.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	if c.History.DSN != "" {
		return c.History.DSN
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN mirrors MySQLDSN for lib/pq.
func (c *Config) PostgresDSN() string {
	if c.History.DSN != "" {
		return c.History.DSN
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

// SQLitePath falls back to a file next to the JSON history.
func (c *Config) SQLitePath() string {
	if c.History.DSN != "" {
		return c.History.DSN
	}
	return "scan_history.db"
}

func (c *Config) CompletionTimeout() time.Duration {
	return time.Duration(c.Completion.TimeoutSeconds) * time.Second
}

func (c *Config) RedisTTL() time.Duration {
	return time.Duration(c.Redis.TTLMinutes) * time.Minute
}

func (c *Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadMB << 20
}

func (c *Config) MinioEnabled() bool {
	return c.Minio.Endpoint != "" && c.Minio.BucketName != ""
}
