package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	HttpServerPort uint16   `env:"HTTP_SERVER_PORT" envDefault:"5000" validate:"min=1000,max=65535"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS"  envSeparator:","`

	RoomCodeLength int           `env:"ROOM_CODE_LENGTH" envDefault:"6"      validate:"min=1,max=32"`
	BuzzMode       string        `env:"BUZZ_MODE"        envDefault:"ledger" validate:"oneof=ledger first"`
	RoomIdleTTL    time.Duration `env:"ROOM_IDLE_TTL"    envDefault:"0s"     validate:"min=0"`
	ReaperInterval time.Duration `env:"REAPER_INTERVAL"  envDefault:"1m"     validate:"gt=0"`

	RedisEnabled bool   `env:"REDIS_ENABLED" envDefault:"false"`
	RedisHost    string `env:"REDIS_HOST"    envDefault:"localhost"`
	RedisPort    uint16 `env:"REDIS_PORT"    envDefault:"6379" validate:"min=1000,max=65535"`

	PostgresEnabled  bool   `env:"POSTGRES_ENABLED"  envDefault:"false"`
	PostgresHost     string `env:"POSTGRES_HOST"     envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT"     envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER"     envDefault:"buzzer"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"buzzer"`
	PostgresDb       string `env:"POSTGRES_DB"       envDefault:"buzzer"`
}

func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().Debug(".env file not found", zap.Error(err))
	}

	cfg := &Config{}
	// Parse config from environment variables
	if err = env.Parse(cfg); err != nil {
		zap.L().Error("config_load_failed", zap.Error(err))
		return nil, err
	}

	// Validate the config
	validate := validator.New()
	err = validate.Struct(cfg)
	if err != nil {
		zap.L().Error("config_validation_failed", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}
