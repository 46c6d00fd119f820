package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/khanghh/linkbot/params"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

var (
	ErrMissingDiscordToken = errors.New("discordToken is required")
	ErrInvalidTestGuildID  = errors.New("testGuildID must be a positive snowflake id")
	ErrInvalidMagicUserID  = errors.New("magicUserID must be a positive snowflake id")
)

type Config struct {
	Debug           bool   `mapstructure:"debug"`
	DiscordToken    string `mapstructure:"discordToken"`
	LogsDir         string `mapstructure:"logsDir"`
	HealthCheckAddr string `mapstructure:"healthCheckAddr"`

	// Snowflake ids are coerced explicitly in LoadConfig so a malformed value
	// fails at startup instead of unmarshalling to zero.
	TestGuildID int64 `mapstructure:"-"`
	MagicUserID int64 `mapstructure:"-"`
}

func (c *Config) Sanitize() error {
	if c.LogsDir == "" {
		c.LogsDir = params.DefaultLogsDir
	}
	if c.HealthCheckAddr == "" {
		c.HealthCheckAddr = params.DefaultHealthCheckAddr
	}
	return nil
}

// Validate fails fast on missing or malformed required values.
func (c *Config) Validate() error {
	if c.DiscordToken == "" {
		return ErrMissingDiscordToken
	}
	if c.TestGuildID <= 0 {
		return ErrInvalidTestGuildID
	}
	if c.MagicUserID <= 0 {
		return ErrInvalidMagicUserID
	}
	return nil
}

// LoadConfig reads the YAML config file and overlays environment variables.
// The config file is optional; a fully env-configured deployment is valid.
func LoadConfig(filename string) (*Config, error) {
	viper.SetConfigFile(filename)
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	viper.BindEnv("discordToken", "DISCORD_TOKEN")
	viper.BindEnv("testGuildID", "TEST_GUILD_ID")
	viper.BindEnv("magicUserID", "MAGIC_USER_ID")

	if err := viper.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if value := viper.Get("testGuildID"); value != nil {
		id, err := cast.ToInt64E(value)
		if err != nil {
			return nil, fmt.Errorf("invalid testGuildID: %w", err)
		}
		config.TestGuildID = id
	}
	if value := viper.Get("magicUserID"); value != nil {
		id, err := cast.ToInt64E(value)
		if err != nil {
			return nil, fmt.Errorf("invalid magicUserID: %w", err)
		}
		config.MagicUserID = id
	}

	if err := config.Sanitize(); err != nil {
		return nil, err
	}
	return &config, nil
}
