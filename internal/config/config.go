package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // imagens sem /usr/share/zoneinfo

	"github.com/gookit/validate"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort    string `mapstructure:"CRM_HTTP_PORT" validate:"required|isNumber"`
	DatabaseURL string `mapstructure:"DATABASE_URL" validate:"required"`
	JWTSecret   string `mapstructure:"CRM_JWT_SECRET" validate:"required|minLen:16"`
	Timezone    string `mapstructure:"CRM_TIMEZONE" validate:"required"`
	CORSOrigins string `mapstructure:"CRM_CORS_ORIGINS"`

	LogLevel  string `mapstructure:"CRM_LOG_LEVEL" validate:"required|in:trace,debug,info,warn,error"`
	LogPretty bool   `mapstructure:"CRM_LOG_PRETTY"`

	RabbitMQURL string `mapstructure:"RABBITMQ_URL"`

	MailHost string `mapstructure:"MAIL_HOST"`
	MailPort int    `mapstructure:"MAIL_PORT" validate:"uint"`
	MailUser string `mapstructure:"MAIL_USER"`
	MailPass string `mapstructure:"MAIL_PASS"`
	MailFrom string `mapstructure:"MAIL_FROM"`

	ReminderMaxDelay      time.Duration `mapstructure:"CRM_REMINDER_MAX_DELAY"`
	ReminderSweepInterval time.Duration `mapstructure:"CRM_REMINDER_SWEEP_INTERVAL"`
	ReminderNoteTimeout   time.Duration `mapstructure:"CRM_REMINDER_NOTE_TIMEOUT"`
	ReminderBuffer        int           `mapstructure:"CRM_REMINDER_BUFFER" validate:"uint"`

	CacheSizeMB int           `mapstructure:"CRM_CACHE_SIZE_MB" validate:"uint"`
	TeamSizeTTL time.Duration `mapstructure:"CRM_TEAM_SIZE_TTL"`
	MetricsOn   bool          `mapstructure:"CRM_METRICS_ENABLED"`

	location *time.Location
}

var defaults = map[string]any{
	"CRM_HTTP_PORT":               "8080",
	"CRM_TIMEZONE":                "UTC",
	"CRM_CORS_ORIGINS":            "*",
	"CRM_LOG_LEVEL":               "info",
	"CRM_LOG_PRETTY":              false,
	"MAIL_PORT":                   587,
	"CRM_REMINDER_MAX_DELAY":      "24h",
	"CRM_REMINDER_SWEEP_INTERVAL": "1m",
	"CRM_REMINDER_NOTE_TIMEOUT":   "5s",
	"CRM_REMINDER_BUFFER":         16,
	"CRM_CACHE_SIZE_MB":           8,
	"CRM_TEAM_SIZE_TTL":           "1m",
	"CRM_METRICS_ENABLED":         true,
}

// Load lê o .env (se existir), as variáveis de ambiente e valida o resultado.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	// .env é opcional: em produção as variáveis vêm do ambiente
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	for _, key := range []string{"DATABASE_URL", "CRM_JWT_SECRET", "RABBITMQ_URL",
		"MAIL_HOST", "MAIL_USER", "MAIL_PASS", "MAIL_FROM"} {
		_ = v.BindEnv(key)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	v := validate.Struct(c)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %w", v.Errors)
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid CRM_TIMEZONE %q: %w", c.Timezone, err)
	}
	c.location = loc

	if c.ReminderMaxDelay <= 0 {
		return fmt.Errorf("CRM_REMINDER_MAX_DELAY must be positive")
	}
	if c.ReminderSweepInterval <= 0 {
		return fmt.Errorf("CRM_REMINDER_SWEEP_INTERVAL must be positive")
	}
	return nil
}

// Location é o fuso usado para os limites de mês do dashboard.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func (c *Config) MailEnabled() bool {
	return c.MailHost != "" && c.MailFrom != ""
}
