package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/domain"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
)

type Environment string

const (
	EnvLocal      Environment = "local"
	EnvDev        Environment = "dev"
	EnvStage      Environment = "stage"
	EnvProduction Environment = "production"
)

type StoreDriver string

const (
	StoreDriverMemory   StoreDriver = "memory"
	StoreDriverHttp     StoreDriver = "http"
	StoreDriverPostgres StoreDriver = "postgres"
)

type ConfigBasicClient struct {
	Username string
	Password string
}

type Config struct {
	App struct {
		Version  string      `env:"APP_VERSION" envDefault:"local"`
		Env      Environment `env:"APP_ENV" envDefault:"local"`
		Timezone string      `env:"APP_TIMEZONE" envDefault:"America/Argentina/Buenos_Aires"`
		LogLevel string      `env:"APP_LOG_LEVEL" envDefault:"info"`
	}

	HTTP struct {
		Port string `env:"HTTP_SERVER_PORT" envDefault:"8080"`
		Host string `env:"HTTP_SERVER_HOST" envDefault:"localhost"`
	}

	Auth struct {
		BasicClientsString string `env:"AUTH_BASIC_CLIENTS" envDefault:"scheduler:scheduler"`
		BasicClients       []ConfigBasicClient
	}

	Store struct {
		Driver   StoreDriver   `env:"STORE_DRIVER" envDefault:"memory"`
		URL      string        `env:"STORE_URL"`
		Username string        `env:"STORE_USERNAME"`
		Password string        `env:"STORE_PASSWORD"`
		Timeout  time.Duration `env:"STORE_TIMEOUT" envDefault:"10s"`

		PostgresDSN      string `env:"STORE_POSTGRES_DSN"`
		PostgresMaxConns int32  `env:"STORE_POSTGRES_MAX_CONNS" envDefault:"10"`
	}

	RabbitMQ struct {
		Enabled bool   `env:"RABBITMQ_ENABLED"`
		URL     string `env:"RABBITMQ_URL"`
		// Входящие события об изменении записей во внешнем хранилище
		Queue    string `env:"RABBITMQ_QUEUE" envDefault:"practitioner-slot-scheduler"`
		Exchange string `env:"RABBITMQ_EXCHANGE" envDefault:"appointments"`
		BindKey  string `env:"RABBITMQ_BIND_KEY" envDefault:"*.slot-scheduler.#"`
		// Исходящие события о пересинхронизации расписания
		PublishExchange   string `env:"RABBITMQ_PUBLISH_EXCHANGE" envDefault:"schedule"`
		PublishRoutingKey string `env:"RABBITMQ_PUBLISH_ROUTING_KEY" envDefault:"schedule.resynced"`
	}

	Cache struct {
		Enabled      bool          `env:"CACHE_ENABLED" envDefault:"true"`
		ScheduleSize int           `env:"CACHE_SCHEDULE_SIZE" envDefault:"366"`
		TTL          time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	}

	Schedule struct {
		DayStart               string        `env:"SCHEDULE_DAY_START" envDefault:"08:00"`
		DayEnd                 string        `env:"SCHEDULE_DAY_END" envDefault:"22:00"`
		Tick                   time.Duration `env:"SCHEDULE_TICK" envDefault:"1h"`
		DefaultDurationMinutes int           `env:"SCHEDULE_DEFAULT_DURATION_MINUTES" envDefault:"50"`
		WeekendDays            string        `env:"SCHEDULE_WEEKEND_DAYS" envDefault:"sat,sun"`
		MidweekDay             string        `env:"SCHEDULE_MIDWEEK_DAY" envDefault:"wed"`
		MidweekBlocked         string        `env:"SCHEDULE_MIDWEEK_BLOCKED" envDefault:"15:00-18:00"`
		Holidays               []string      `env:"SCHEDULE_HOLIDAYS" envSeparator:","`
		HistoryMaxDays         int           `env:"SCHEDULE_HISTORY_MAX_DAYS" envDefault:"93"`
		ForbidPastCancel       bool          `env:"SCHEDULE_FORBID_PAST_CANCEL" envDefault:"true"`
	}
}

// NewConfig reads the environment. A .env file in the working directory is
// loaded first when present; real environment variables win over it.
func NewConfig() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("config.dotenv: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Приведение окружения к нижнему регистру для унификации
	cfg.App.Env = Environment(strings.ToLower(string(cfg.App.Env)))
	cfg.Store.Driver = StoreDriver(strings.ToLower(string(cfg.Store.Driver)))

	// Разделение basic-клиентов API
	cfg.Auth.BasicClients = parseBasicClients(cfg.Auth.BasicClientsString)

	switch cfg.Store.Driver {
	case StoreDriverMemory:
	case StoreDriverHttp:
		if cfg.Store.URL == "" {
			return nil, fmt.Errorf("config.store: STORE_URL is required for driver %q", cfg.Store.Driver)
		}
	case StoreDriverPostgres:
		if cfg.Store.PostgresDSN == "" {
			return nil, fmt.Errorf("config.store: STORE_POSTGRES_DSN is required for driver %q", cfg.Store.Driver)
		}
	default:
		return nil, fmt.Errorf("config.store: unknown driver %q", cfg.Store.Driver)
	}

	// Без RabbitMQ мы не узнаем о внешних изменениях хранилища, поэтому кэш выключаем.
	// Память меняется только через этот сервис
	if !cfg.RabbitMQ.Enabled && cfg.Store.Driver != StoreDriverMemory {
		cfg.Cache.Enabled = false
	}

	if _, err := cfg.ScheduleTemplate(); err != nil {
		return nil, err
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseBasicClients(str string) []ConfigBasicClient {
	clients := []ConfigBasicClient{}
	for _, pair := range strings.Split(str, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) == 2 && parts[0] != "" {
			clients = append(clients, ConfigBasicClient{
				Username: parts[0],
				Password: parts[1],
			})
		}
	}
	return clients
}

func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config.timezone: %w", err)
	}
	return loc, nil
}

// ScheduleTemplate builds the generator template. Rule order is holidays,
// weekend, then the mid-week block.
func (c *Config) ScheduleTemplate() (domain.ScheduleTemplate, error) {
	dayStart, err := json_types.ParseTimeOfDay(c.Schedule.DayStart)
	if err != nil {
		return domain.ScheduleTemplate{}, fmt.Errorf("config.schedule.day_start: %w", err)
	}
	dayEnd, err := json_types.ParseTimeOfDay(c.Schedule.DayEnd)
	if err != nil {
		return domain.ScheduleTemplate{}, fmt.Errorf("config.schedule.day_end: %w", err)
	}

	rules := make([]domain.AvailabilityRule, 0, 3)

	if len(c.Schedule.Holidays) > 0 {
		holidays := make([]json_types.Date, 0, len(c.Schedule.Holidays))
		for _, str := range c.Schedule.Holidays {
			if strings.TrimSpace(str) == "" {
				continue
			}
			holiday, err := json_types.ParseDate(str)
			if err != nil {
				return domain.ScheduleTemplate{}, fmt.Errorf("config.schedule.holidays: %w", err)
			}
			holidays = append(holidays, holiday)
		}
		rules = append(rules, domain.AvailabilityRule{Name: "holiday", Dates: holidays})
	}

	weekend, err := domain.ParseWeekdays(c.Schedule.WeekendDays)
	if err != nil {
		return domain.ScheduleTemplate{}, fmt.Errorf("config.schedule.weekend_days: %w", err)
	}
	if len(weekend) > 0 {
		rules = append(rules, domain.AvailabilityRule{Name: "weekend", Weekdays: weekend})
	}

	midweek, err := domain.ParseWeekdays(c.Schedule.MidweekDay)
	if err != nil {
		return domain.ScheduleTemplate{}, fmt.Errorf("config.schedule.midweek_day: %w", err)
	}
	if len(midweek) > 0 && c.Schedule.MidweekBlocked != "" {
		blocked, err := domain.ParseTimeRange(c.Schedule.MidweekBlocked)
		if err != nil {
			return domain.ScheduleTemplate{}, fmt.Errorf("config.schedule.midweek_blocked: %w", err)
		}
		rules = append(rules, domain.AvailabilityRule{Name: "midweek", Weekdays: midweek, Blocked: &blocked})
	}

	template := domain.ScheduleTemplate{
		DayStart:               dayStart,
		DayEnd:                 dayEnd,
		Tick:                   c.Schedule.Tick,
		DefaultDurationMinutes: c.Schedule.DefaultDurationMinutes,
		Rules:                  rules,
	}
	if err := template.Validate(); err != nil {
		return domain.ScheduleTemplate{}, fmt.Errorf("config.schedule: %w", err)
	}

	return template, nil
}

func (c *Config) IsLocal() bool {
	return c.App.Env == EnvLocal
}

func (c *Config) IsNotLocal() bool {
	return c.App.Env == EnvDev || c.App.Env == EnvStage || c.App.Env == EnvProduction
}
