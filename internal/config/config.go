// Package config carga la configuración desde YAML con overrides por env.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Storage struct {
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	JWT struct {
		Issuer    string `yaml:"issuer"`
		Secret    string `yaml:"secret"` // HS256; override con PERSONAVAULT_JWT_SECRET
		AccessTTL string `yaml:"access_ttl"`
	} `yaml:"jwt"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		Login   struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"login"`
		ConsentRequest struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"consent_request"`
	} `yaml:"rate"`

	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
	} `yaml:"smtp"`
}

// Load lee el YAML, aplica defaults y overrides por variables de entorno.
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

	// Overrides por env (secretos primero, nunca en YAML commiteado).
	if v := os.Getenv("PERSONAVAULT_DSN"); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv("PERSONAVAULT_JWT_SECRET"); v != "" {
		c.JWT.Secret = v
	}
	if v := os.Getenv("PERSONAVAULT_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("PERSONAVAULT_REDIS_ADDR"); v != "" {
		c.Cache.Kind = "redis"
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("PERSONAVAULT_SMTP_PASSWORD"); v != "" {
		c.SMTP.Password = v
	}

	// sane defaults
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "personavault"
	}
	if c.JWT.AccessTTL == "" {
		c.JWT.AccessTTL = "12h"
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Login.Window == "" {
		c.Rate.Login.Window = "1m"
	}
	if c.Rate.ConsentRequest.Limit == 0 {
		c.Rate.ConsentRequest.Limit = 20
	}
	if c.Rate.ConsentRequest.Window == "" {
		c.Rate.ConsentRequest.Window = "10m"
	}

	// validar durations expresadas como string
	for _, d := range []string{
		c.Storage.Postgres.ConnMaxLifetime,
		c.JWT.AccessTTL,
		c.Cache.Memory.DefaultTTL,
		c.Rate.Login.Window,
		c.Rate.ConsentRequest.Window,
	} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

// AccessTTL retorna el TTL de access token ya parseado.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWT.AccessTTL)
	if err != nil || d <= 0 {
		return 12 * time.Hour
	}
	return d
}
