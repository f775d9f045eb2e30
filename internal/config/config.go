package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env      string `yaml:"env"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	} `yaml:"server"`

	Storage struct {
		// postgres | memory
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		// redis | memory
		Kind  string `yaml:"kind"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	// Interaction configura cómo se referencia el estado de la interacción
	// de autorización en curso (cookie firmada + cache).
	Interaction struct {
		CookieName string `yaml:"cookie_name"`
		// SigningKey firma el JWT de la cookie de interacción (HS256).
		SigningKey string `yaml:"signing_key"`
		TTL        string `yaml:"ttl"`
	} `yaml:"interaction"`

	Features struct {
		// ScopeResolution habilita el filtrado de missing scopes contra los
		// permisos reales del usuario (directos y por organización). Si está
		// apagado, los nombres crudos del prompt pasan sin filtrar.
		ScopeResolution bool `yaml:"scope_resolution"`
	} `yaml:"features"`

	Rate struct {
		Enabled bool   `yaml:"enabled"`
		Window  string `yaml:"window"`
		Max     int    `yaml:"max_requests"`
	} `yaml:"rate"`

	Admin struct {
		// APIKey protege la superficie /admin. Vacío = superficie apagada.
		APIKey string `yaml:"api_key"`
	} `yaml:"admin"`
}

// Load lee el YAML, aplica defaults y pisa con variables de entorno.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	// sane defaults
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.Interaction.CookieName == "" {
		c.Interaction.CookieName = "_interaction"
	}
	if c.Interaction.TTL == "" {
		c.Interaction.TTL = "10m"
	}
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}
	if c.Rate.Max == 0 {
		c.Rate.Max = 60
	}

	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.App.LogLevel = v
	}

	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}

	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}

	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("CACHE_REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("CACHE_REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("CACHE_REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}

	if v, ok := getEnvStr("INTERACTION_SIGNING_KEY"); ok {
		c.Interaction.SigningKey = v
	}
	if v, ok := getEnvStr("INTERACTION_COOKIE_NAME"); ok {
		c.Interaction.CookieName = v
	}

	if v, ok := getEnvBool("FEATURES_SCOPE_RESOLUTION"); ok {
		c.Features.ScopeResolution = v
	}

	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvInt("RATE_MAX_REQUESTS"); ok {
		c.Rate.Max = v
	}
	if v, ok := getEnvStr("RATE_WINDOW"); ok {
		c.Rate.Window = v
	}

	if v, ok := getEnvStr("ADMIN_API_KEY"); ok {
		c.Admin.APIKey = v
	}
}

// Validate chequea combinaciones inválidas antes de arrancar.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "postgres":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("config: storage.driver=postgres requiere storage.dsn")
		}
	case "memory":
		// ok, solo dev/test
	default:
		return fmt.Errorf("config: storage.driver desconocido: %q", c.Storage.Driver)
	}

	switch c.Cache.Kind {
	case "redis":
		if strings.TrimSpace(c.Cache.Redis.Addr) == "" {
			return fmt.Errorf("config: cache.kind=redis requiere cache.redis.addr")
		}
	case "memory":
		// ok
	default:
		return fmt.Errorf("config: cache.kind desconocido: %q", c.Cache.Kind)
	}

	if c.App.Env == "prod" && strings.TrimSpace(c.Interaction.SigningKey) == "" {
		return fmt.Errorf("config: interaction.signing_key es obligatorio en prod")
	}

	if _, err := time.ParseDuration(c.Interaction.TTL); err != nil {
		return fmt.Errorf("config: interaction.ttl inválido: %w", err)
	}
	if _, err := time.ParseDuration(c.Rate.Window); err != nil {
		return fmt.Errorf("config: rate.window inválido: %w", err)
	}
	return nil
}

// InteractionTTL retorna el TTL de interacción ya parseado.
func (c *Config) InteractionTTL() time.Duration {
	d, err := time.ParseDuration(c.Interaction.TTL)
	if err != nil {
		return 10 * time.Minute
	}
	return d
}

// RateWindow retorna la ventana de rate limit ya parseada.
func (c *Config) RateWindow() time.Duration {
	d, err := time.ParseDuration(c.Rate.Window)
	if err != nil {
		return time.Minute
	}
	return d
}

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		if strings.TrimSpace(s) == "" {
			return []string{}, true
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}
