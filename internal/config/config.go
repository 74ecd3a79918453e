package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config application configuration loaded from yaml with env overrides
type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"database"`

	Redis struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size"`
	} `yaml:"redis"`

	JWT struct {
		Secret         string `yaml:"secret"`
		AccessMinutes  int    `yaml:"access_minutes"`
		RefreshMinutes int    `yaml:"refresh_minutes"`
	} `yaml:"jwt"`

	Revision struct {
		MaxPerEntity int `yaml:"max_per_entity"`
	} `yaml:"revision"`
}

// Load reads config from a yaml file and applies env var overrides.
// Secrets (DB_PASSWORD, JWT_SECRET, REDIS_PASSWORD) always come from env
// when set.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Database.Port = 3306
	cfg.Redis.Port = 6379
	cfg.Redis.PoolSize = 10
	cfg.JWT.AccessMinutes = 15
	cfg.JWT.RefreshMinutes = 1440
	cfg.Revision.MaxPerEntity = 20

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required (config jwt.secret or JWT_SECRET)")
	}

	return cfg, nil
}

// DSN builds the MySQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Name)
}
