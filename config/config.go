package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Domenick1991/civicbook/internal/domain"
	"github.com/Domenick1991/civicbook/internal/pricing"
	"github.com/Domenick1991/civicbook/internal/refcode"
	"github.com/Domenick1991/civicbook/internal/workflow"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"
	StorePostgres = "postgres"

	LockLocal = "local"
	LockRedis = "redis"
)

type Config struct {
	Service    string                    `yaml:"service"`
	Log        LogConfig                 `yaml:"log"`
	Store      StoreConfig               `yaml:"store"`
	Database   DatabaseConfig            `yaml:"database"`
	Redis      RedisConfig               `yaml:"redis"`
	Kafka      KafkaConfig               `yaml:"kafka"`
	Booking    BookingConfig             `yaml:"booking"`
	Reference  ReferenceConfig           `yaml:"reference"`
	Categories map[string]CategoryConfig `yaml:"categories" validate:"required,min=1,dive"`
	Resources  []ResourceConfig          `yaml:"resources" validate:"dive"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=json text"`
}

type StoreConfig struct {
	Driver       string `yaml:"driver" validate:"oneof=memory sqlite redis postgres"`
	Path         string `yaml:"path" validate:"required_if=Driver sqlite"`
	KeyPrefix    string `yaml:"key_prefix" validate:"max=64"`
	HistoryLimit int    `yaml:"history_limit" validate:"gte=0"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
}

type KafkaConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Brokers     []string `yaml:"brokers" validate:"required_if=Enabled true,dive,hostname_port"`
	EventsTopic string   `yaml:"events_topic" validate:"required_if=Enabled true"`
	GroupID     string   `yaml:"group_id"`
}

type BookingConfig struct {
	Lock             string `yaml:"lock" validate:"oneof=local redis"`
	LockTTLMillis    int    `yaml:"lock_ttl_ms" validate:"gt=0"`
	LockRetries      int    `yaml:"lock_retries" validate:"gte=1"`
	LockRetryDelayMs int    `yaml:"lock_retry_delay_ms" validate:"gte=0"`
}

func (b BookingConfig) LockTTL() time.Duration {
	return time.Duration(b.LockTTLMillis) * time.Millisecond
}

func (b BookingConfig) LockRetryDelay() time.Duration {
	return time.Duration(b.LockRetryDelayMs) * time.Millisecond
}

type ReferenceConfig struct {
	SuffixLength int `yaml:"suffix_length" validate:"min=5,max=8"`
}

type CategoryConfig struct {
	Prefix   string              `yaml:"prefix" validate:"required"`
	Workflow []string            `yaml:"workflow" validate:"required,min=1"`
	Cancel   string              `yaml:"cancel"`
	Tariff   *pricing.TariffSpec `yaml:"tariff"`
}

type ResourceConfig struct {
	ID              string   `yaml:"id" validate:"required"`
	Name            string   `yaml:"name"`
	Kind            string   `yaml:"kind"`
	Category        string   `yaml:"category" validate:"required"`
	Capacity        int      `yaml:"capacity" validate:"gte=0"`
	WeekendCapacity int      `yaml:"weekend_capacity" validate:"gte=0"`
	Exclusive       bool     `yaml:"exclusive"`
	Opens           string   `yaml:"opens"`
	Closes          string   `yaml:"closes"`
	Slots           []string `yaml:"slots"`
	BaseRate        float64  `yaml:"base_rate" validate:"gte=0"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Service == "" {
		c.Service = "civicbook"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = StoreMemory
	}
	if c.Store.KeyPrefix == "" {
		c.Store.KeyPrefix = c.Service
	}
	if c.Booking.Lock == "" {
		c.Booking.Lock = LockLocal
	}
	if c.Booking.LockTTLMillis == 0 {
		c.Booking.LockTTLMillis = 5000
	}
	if c.Booking.LockRetries == 0 {
		c.Booking.LockRetries = 3
	}
	if c.Booking.LockRetryDelayMs == 0 {
		c.Booking.LockRetryDelayMs = 50
	}
	if c.Reference.SuffixLength == 0 {
		c.Reference.SuffixLength = refcode.DefaultSuffix
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = c.Service + "-notifier"
	}
}

// Validate runs tag validation and the cross-section checks. Every failure
// is reported, not just the first.
func (c *Config) Validate() error {
	var problems []string

	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s: failed %s", fe.Namespace(), fe.Tag()))
		}
	}

	prefixes := map[string]string{}
	for name, cat := range c.Categories {
		category, err := domain.ParseCategory(name)
		if err != nil {
			problems = append(problems, fmt.Sprintf("categories.%s: unknown category", name))
			continue
		}
		prefix := strings.ToUpper(cat.Prefix)
		if !refcode.ValidPrefix(prefix) {
			problems = append(problems, fmt.Sprintf("categories.%s: prefix %q must be 1-6 letters or digits", name, cat.Prefix))
		} else if other, dup := prefixes[prefix]; dup {
			problems = append(problems, fmt.Sprintf("categories.%s: prefix %q already used by %s", name, prefix, other))
		} else {
			prefixes[prefix] = name
		}
		if category.IsBillable() && cat.Tariff == nil {
			problems = append(problems, fmt.Sprintf("categories.%s: fee-bearing category needs a tariff", name))
		}
		if cat.Tariff != nil {
			if _, err := pricing.Build(*cat.Tariff); err != nil {
				problems = append(problems, fmt.Sprintf("categories.%s.tariff: %v", name, err))
			}
		}
	}
	if _, err := workflow.NewTable(c.Workflows()); err != nil {
		problems = append(problems, fmt.Sprintf("categories: %v", err))
	}

	for _, r := range c.Resources {
		category, err := domain.ParseCategory(r.Category)
		if err != nil {
			problems = append(problems, fmt.Sprintf("resources.%s: unknown category %q", r.ID, r.Category))
			continue
		}
		if _, ok := c.Categories[r.Category]; !ok {
			problems = append(problems, fmt.Sprintf("resources.%s: category %s is not configured", r.ID, category))
		}
	}

	if c.Store.Driver == StoreRedis || c.Booking.Lock == LockRedis {
		if c.Redis.Addr == "" {
			problems = append(problems, "redis.addr: required by store or lock")
		}
	}
	if c.Store.Driver == StorePostgres && c.Database.Host == "" {
		problems = append(problems, "database.host: required by postgres store")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// ValidationError lists every configuration problem found.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %d problem(s): %v", len(e.Problems), e.Problems)
}

// Workflows converts the category section into workflow definitions.
// Unknown category names are skipped; Validate reports them.
func (c *Config) Workflows() map[domain.Category]workflow.Definition {
	defs := make(map[domain.Category]workflow.Definition, len(c.Categories))
	for name, cat := range c.Categories {
		category, err := domain.ParseCategory(name)
		if err != nil {
			continue
		}
		states := make([]domain.Status, 0, len(cat.Workflow))
		for _, s := range cat.Workflow {
			states = append(states, domain.Status(s))
		}
		defs[category] = workflow.Definition{States: states, Cancel: domain.Status(cat.Cancel)}
	}
	return defs
}

func (c *Config) Tariffs() (map[domain.Category]pricing.Tariff, error) {
	tariffs := make(map[domain.Category]pricing.Tariff)
	for name, cat := range c.Categories {
		if cat.Tariff == nil {
			continue
		}
		category, err := domain.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		t, err := pricing.Build(*cat.Tariff)
		if err != nil {
			return nil, fmt.Errorf("tariff %s: %w", name, err)
		}
		tariffs[category] = t
	}
	return tariffs, nil
}

func (c *Config) Prefixes() map[domain.Category]string {
	prefixes := make(map[domain.Category]string, len(c.Categories))
	for name, cat := range c.Categories {
		if category, err := domain.ParseCategory(name); err == nil {
			prefixes[category] = strings.ToUpper(cat.Prefix)
		}
	}
	return prefixes
}

func (c *Config) DomainResources() []domain.Resource {
	out := make([]domain.Resource, 0, len(c.Resources))
	for _, r := range c.Resources {
		out = append(out, domain.Resource{
			ID:              r.ID,
			Name:            r.Name,
			Kind:            r.Kind,
			Category:        domain.Category(r.Category),
			Capacity:        r.Capacity,
			WeekendCapacity: r.WeekendCapacity,
			Exclusive:       r.Exclusive,
			Opens:           r.Opens,
			Closes:          r.Closes,
			Slots:           r.Slots,
			BaseRate:        r.BaseRate,
		})
	}
	return out
}
