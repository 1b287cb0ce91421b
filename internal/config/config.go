package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "Europe/Warsaw"

	configPathEnv     = "CZUJKA_CONFIG"
	librusUsernameEnv = "LIBRUS_USERNAME"
	librusPasswordEnv = "LIBRUS_PASSWORD"
	librusBaseURLEnv  = "LIBRUS_BASE_URL"
	databaseDSNEnv    = "DATABASE_DSN"
	openAIAPIKeyEnv   = "OPENAI_API_KEY"
	openAIModelEnv    = "OPENAI_MODEL"
	sendEmailEnv      = "SEND_EMAIL"
	emailHostEnv      = "EMAIL_HOST"
	emailPortEnv      = "EMAIL_PORT"
	emailUserEnv      = "EMAIL_USER"
	emailPasswordEnv  = "EMAIL_PASSWORD"
	emailFromEnv      = "EMAIL_FROM"
	emailToEnv        = "EMAIL_TO"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	logLevelEnv       = "LOG_LEVEL"
	cronExpressionEnv = "SYNC_CRON_EXPRESSION"
)

// Config holds high-level settings required across the application.
type Config struct {
	Librus    LibrusConfig    `yaml:"librus"`
	Database  DatabaseConfig  `yaml:"database"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Email     EmailConfig     `yaml:"email"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LibrusConfig carries the portal credentials and endpoint.
type LibrusConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	BaseURL  string `yaml:"baseUrl"`
}

// DatabaseConfig describes Postgres connection details.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// OpenAIConfig defines how to contact the classification API.
type OpenAIConfig struct {
	APIKey  string `yaml:"apiKey"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"baseUrl"`
}

// EmailConfig wires SMTP delivery of the digest.
type EmailConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	User     string   `yaml:"user"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
}

// TelegramConfig enables the optional short-digest channel when set.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   int64  `yaml:"chatId"`
}

// SchedulerConfig defines when sync runs execute. An empty cron expression
// means a single run per process invocation.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

// Validate rejects configurations that cannot support a run. Missing
// mandatory credentials abort the process before any pipeline executes.
func (c Config) Validate() error {
	if c.Librus.Username == "" || c.Librus.Password == "" {
		return errors.New("LIBRUS_USERNAME and LIBRUS_PASSWORD must be set")
	}
	if c.OpenAI.APIKey == "" {
		return errors.New("OPENAI_API_KEY must be set")
	}
	if c.Database.DSN == "" {
		return errors.New("DATABASE_DSN must be set")
	}
	if c.Email.Enabled {
		if c.Email.Host == "" || c.Email.From == "" {
			return errors.New("email enabled but EMAIL_HOST or EMAIL_FROM missing")
		}
		if len(c.Email.To) == 0 {
			return errors.New("email enabled but EMAIL_TO is empty")
		}
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(librusUsernameEnv); v != "" {
		c.Librus.Username = v
	}
	if v := os.Getenv(librusPasswordEnv); v != "" {
		c.Librus.Password = v
	}
	if v := os.Getenv(librusBaseURLEnv); v != "" {
		c.Librus.BaseURL = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv(openAIModelEnv); v != "" {
		c.OpenAI.Model = v
	}

	if v := os.Getenv(sendEmailEnv); v != "" {
		c.Email.Enabled = v == "true"
	}
	if v := os.Getenv(emailHostEnv); v != "" {
		c.Email.Host = v
	}
	if v := os.Getenv(emailPortEnv); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Email.Port = port
		}
	}
	if v := os.Getenv(emailUserEnv); v != "" {
		c.Email.User = v
	}
	if v := os.Getenv(emailPasswordEnv); v != "" {
		c.Email.Password = v
	}
	if v := os.Getenv(emailFromEnv); v != "" {
		c.Email.From = v
	}
	if v := os.Getenv(emailToEnv); v != "" {
		c.Email.To = splitRecipients(v)
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Telegram.ChatID = id
		}
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(cronExpressionEnv); v != "" {
		c.Scheduler.CronExpression = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func splitRecipients(raw string) []string {
	parts := strings.Split(raw, ",")
	recipients := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			recipients = append(recipients, trimmed)
		}
	}
	return recipients
}

func mergeConfig(base, override Config) Config {
	if override.Librus.Username != "" {
		base.Librus.Username = override.Librus.Username
	}
	if override.Librus.Password != "" {
		base.Librus.Password = override.Librus.Password
	}
	if override.Librus.BaseURL != "" {
		base.Librus.BaseURL = override.Librus.BaseURL
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}
	if override.OpenAI.Model != "" {
		base.OpenAI.Model = override.OpenAI.Model
	}
	if override.OpenAI.BaseURL != "" {
		base.OpenAI.BaseURL = override.OpenAI.BaseURL
	}

	if override.Email.Host != "" {
		base.Email = override.Email
	}

	if override.Telegram.BotToken != "" {
		base.Telegram = override.Telegram
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Librus: LibrusConfig{
			BaseURL: "https://synergia.librus.pl",
		},
		Database: DatabaseConfig{DSN: ""},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Email: EmailConfig{
			Port: 587,
		},
		Scheduler: SchedulerConfig{
			Timezone: defaultTimezone,
			location: tz,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
