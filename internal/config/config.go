package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8001"`

	StartDelay             time.Duration `yaml:"start-delay" env:"START_DELAY" env-default:"0s"`
	AllowRestartInProgress bool          `yaml:"allow-restart-in-progress" env:"ALLOW_RESTART_IN_PROGRESS" env-default:"false"`

	Redis        Redis        `yaml:"redis"`
	MatchHistory MatchHistory `yaml:"match-history"`
}

// Redis holds the match archive connection. An empty Host keeps the archive in memory.
type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type MatchHistory struct {
	TTL   time.Duration `yaml:"ttl" env:"MATCH_HISTORY_TTL" env-default:"1h"`
	Limit int           `yaml:"limit" env:"MATCH_HISTORY_LIMIT" env-default:"50"`
}

// Load reads the config file at path. A missing file is not an error; the
// environment and defaults are used instead.
func Load(path string) (*Config, error) {
	config := &Config{}

	err := cleanenv.ReadConfig(path, config)
	if errors.Is(err, fs.ErrNotExist) {
		err = cleanenv.ReadEnv(config)
	}

	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	return config, nil
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func (that *Redis) Enabled() bool {
	return that.Host != ""
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
