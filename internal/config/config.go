// Package config loads the crawler's nested YAML configuration file
// and applies the one environment override (the database URI)
// operators need without touching the checked-in file.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DB holds the document-store connection settings of §6.
type DB struct {
	URI             string `yaml:"uri"`
	Database        string `yaml:"database"`
	PagesCollection string `yaml:"pages_collection"`
	QueueCollection string `yaml:"queue_collection"`
}

// Logic holds the crawl-behavior tunables of §6.
type Logic struct {
	DelaySeconds             float64 `yaml:"delay_seconds"`
	Workers                  int     `yaml:"workers"`
	PerSourceLimit           int     `yaml:"per_source_limit"`
	RequestTimeout           int     `yaml:"request_timeout"`
	MaxRetries               int     `yaml:"max_retries"`
	RecrawlAfterSeconds      int     `yaml:"recrawl_after_seconds"`
	NonArticleRefetchSeconds int     `yaml:"non_article_refetch_seconds"`
	LinksPerPage             int     `yaml:"links_per_page"`
}

// Config is the full shape of the config file positional-argument to
// cmd/crawler.
type Config struct {
	DB     DB       `yaml:"db"`
	Logic  Logic    `yaml:"logic"`
	Seeds  []string `yaml:"seeds"`
	HealthPort int  `yaml:"health_port"`
	LogLevel   string `yaml:"log_level"`
}

// envOverrides lists the fields operators may override via the
// environment instead of editing the config file.
type envOverrides struct {
	DBURI string `env:"CRAWL_DB_URI"`
}

func (c *Config) applyDefaults() {
	if c.DB.PagesCollection == "" {
		c.DB.PagesCollection = "pages"
	}

	if c.DB.QueueCollection == "" {
		c.DB.QueueCollection = "queue"
	}

	if c.Logic.DelaySeconds == 0 {
		c.Logic.DelaySeconds = 0.7
	}

	if c.Logic.Workers == 0 {
		c.Logic.Workers = 4
	}

	if c.Logic.RequestTimeout == 0 {
		c.Logic.RequestTimeout = 20
	}

	if c.Logic.MaxRetries == 0 {
		c.Logic.MaxRetries = 3
	}

	if c.Logic.RecrawlAfterSeconds == 0 {
		c.Logic.RecrawlAfterSeconds = 7 * 86400
	}

	if c.Logic.NonArticleRefetchSeconds == 0 {
		c.Logic.NonArticleRefetchSeconds = 120
	}

	if c.Logic.LinksPerPage == 0 {
		c.Logic.LinksPerPage = 500
	}

	if c.HealthPort == 0 {
		c.HealthPort = 8080
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Load reads and decodes the YAML config at path, rejecting unknown
// fields, applies §6's defaults, then layers environment overrides on
// top.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()

	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return nil, fmt.Errorf("parse env overrides: %w", err)
	}

	if overrides.DBURI != "" {
		cfg.DB.URI = overrides.DBURI
	}

	return &cfg, nil
}

// RequestTimeoutDuration returns Logic.RequestTimeout as a time.Duration.
func (l Logic) RequestTimeoutDuration() time.Duration {
	return time.Duration(l.RequestTimeout) * time.Second
}

// DelayDuration returns Logic.DelaySeconds as a time.Duration.
func (l Logic) DelayDuration() time.Duration {
	return time.Duration(l.DelaySeconds * float64(time.Second))
}

// RecrawlAfter returns Logic.RecrawlAfterSeconds as a time.Duration.
func (l Logic) RecrawlAfter() time.Duration {
	return time.Duration(l.RecrawlAfterSeconds) * time.Second
}

// NonArticleRefetch returns Logic.NonArticleRefetchSeconds as a
// time.Duration.
func (l Logic) NonArticleRefetch() time.Duration {
	return time.Duration(l.NonArticleRefetchSeconds) * time.Second
}
