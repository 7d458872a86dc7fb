package configs

import (
	"fmt"
	"time"

	"github.com/hilthontt/chatrelay/internal/infrastructure/env"
	"github.com/hilthontt/chatrelay/internal/infrastructure/validate"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	HTTP        HTTPConfig        `koanf:"http"`
	Relay       RelayConfig       `koanf:"relay"`
	RateLimiter RateLimiterConfig `koanf:"rateLimiter"`
	Upload      UploadConfig      `koanf:"upload"`
	Storage     StorageConfig     `koanf:"storage"`
	Audit       AuditConfig       `koanf:"audit"`
}

type HTTPConfig struct {
	Host           string        `koanf:"host"`
	Port           uint16        `koanf:"port"`
	AllowedOrigins []string      `koanf:"allowed_origins"`
	AllowedHeaders []string      `koanf:"allowed_headers"`
	ReadTimeout    time.Duration `koanf:"read_timeout"`
	WriteTimeout   time.Duration `koanf:"write_timeout"`
}

type RelayConfig struct {
	SendBuffer        int           `koanf:"send_buffer"`
	PruneOnDisconnect bool          `koanf:"prune_on_disconnect"`
	PingInterval      time.Duration `koanf:"ping_interval"`
	PongWait          time.Duration `koanf:"pong_wait"`
	WriteWait         time.Duration `koanf:"write_wait"`
}

type RateLimiterConfig struct {
	MaxRatePerSecond int           `koanf:"maxRatePerSecond"`
	MaxBurst         int           `koanf:"maxBurst"`
	CacheTTL         time.Duration `koanf:"cacheTTL"`
	SourceHeaderKey  string        `koanf:"sourceHeaderKey"`
}

type UploadConfig struct {
	MaxBytes int64 `koanf:"max_bytes"`
}

type StorageConfig struct {
	// Driver selects the blob store backend: "gridfs" or "memory".
	Driver string `koanf:"driver"`
	Bucket string `koanf:"bucket"`
}

type AuditConfig struct {
	Enabled bool `koanf:"enabled"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Load from YAML file if it exists
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			// Only return error if file was explicitly provided but failed to load
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Apply defaults and environment variable overrides
	applyDefaults(k)
	applyEnvOverrides(k)

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	driverCheck := validate.Compose(validate.Required(), validate.OneOf("gridfs", "memory"))
	if err := driverCheck(c.Storage.Driver); err != nil {
		return fmt.Errorf("storage.driver: %w", err)
	}

	originCheck := validate.Matches(`^https?://`, "origin must include a scheme")
	for _, origin := range c.HTTP.AllowedOrigins {
		if err := originCheck(origin); err != nil {
			return fmt.Errorf("http.allowed_origins %q: %w", origin, err)
		}
	}

	return nil
}

func applyDefaults(k *koanf.Koanf) {
	// HTTP defaults; port 5013 matches the client's default endpoint
	setDefault(k, "http.host", "0.0.0.0")
	setDefault(k, "http.port", 5013)
	setDefault(k, "http.read_timeout", 10*time.Second)
	setDefault(k, "http.write_timeout", 30*time.Second)
	setDefault(k, "http.allowed_origins", []string{"http://localhost:5173", "http://localhost:5500"})
	setDefault(k, "http.allowed_headers", []string{"Content-Type", "Authorization"})

	// Relay defaults
	setDefault(k, "relay.send_buffer", 64)
	setDefault(k, "relay.prune_on_disconnect", true)
	setDefault(k, "relay.ping_interval", 54*time.Second)
	setDefault(k, "relay.pong_wait", 60*time.Second)
	setDefault(k, "relay.write_wait", 10*time.Second)

	// Rate limiter defaults
	setDefault(k, "rateLimiter.maxRatePerSecond", 10)
	setDefault(k, "rateLimiter.maxBurst", 20)
	setDefault(k, "rateLimiter.cacheTTL", 5*time.Minute)
	setDefault(k, "rateLimiter.sourceHeaderKey", "X-Forwarded-For")

	// Upload and storage defaults
	setDefault(k, "upload.max_bytes", int64(32<<20))
	setDefault(k, "storage.driver", "gridfs")
	setDefault(k, "storage.bucket", "file")

	setDefault(k, "audit.enabled", false)
}

func applyEnvOverrides(k *koanf.Koanf) {
	// HTTP config from env
	if host := env.GetString("HTTP_HOST", ""); host != "" {
		k.Set("http.host", host)
	}
	if port := env.GetInt("HTTP_PORT", 0); port > 0 {
		k.Set("http.port", port)
	}
	if readTimeout := env.GetInt("HTTP_READ_TIMEOUT_SECONDS", 0); readTimeout > 0 {
		k.Set("http.read_timeout", time.Duration(readTimeout)*time.Second)
	}
	if writeTimeout := env.GetInt("HTTP_WRITE_TIMEOUT_SECONDS", 0); writeTimeout > 0 {
		k.Set("http.write_timeout", time.Duration(writeTimeout)*time.Second)
	}

	// Relay config from env
	if buffer := env.GetInt("RELAY_SEND_BUFFER", 0); buffer > 0 {
		k.Set("relay.send_buffer", buffer)
	}
	if val, ok := lookupBool("RELAY_PRUNE_ON_DISCONNECT"); ok {
		k.Set("relay.prune_on_disconnect", val)
	}

	// Rate limiter config from env
	if maxRate := env.GetInt("RATE_LIMIT_MAX_RATE_PER_SECOND", 0); maxRate > 0 {
		k.Set("rateLimiter.maxRatePerSecond", maxRate)
	}
	if maxBurst := env.GetInt("RATE_LIMIT_MAX_BURST", 0); maxBurst > 0 {
		k.Set("rateLimiter.maxBurst", maxBurst)
	}
	if cacheTTL := env.GetInt("RATE_LIMIT_CACHE_TTL_MINUTES", 0); cacheTTL > 0 {
		k.Set("rateLimiter.cacheTTL", time.Duration(cacheTTL)*time.Minute)
	}
	if sourceKey := env.GetString("RATE_LIMIT_SOURCE_HEADER_KEY", ""); sourceKey != "" {
		k.Set("rateLimiter.sourceHeaderKey", sourceKey)
	}

	// Upload and storage config from env
	if maxBytes := env.GetInt("UPLOAD_MAX_BYTES", 0); maxBytes > 0 {
		k.Set("upload.max_bytes", int64(maxBytes))
	}
	if driver := env.GetString("STORAGE_DRIVER", ""); driver != "" {
		k.Set("storage.driver", driver)
	}
	if bucket := env.GetString("STORAGE_BUCKET", ""); bucket != "" {
		k.Set("storage.bucket", bucket)
	}

	if val, ok := lookupBool("AUDIT_ENABLED"); ok {
		k.Set("audit.enabled", val)
	}
}

func lookupBool(key string) (bool, bool) {
	raw := env.GetString(key, "")
	switch raw {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	}
	return false, false
}

// setDefault only sets the value if the key doesn't already exist
func setDefault(k *koanf.Koanf, key string, value interface{}) {
	if !k.Exists(key) {
		k.Set(key, value)
	}
}
