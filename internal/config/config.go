package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	Secret     string        `mapstructure:"secret"`
	LogLevel   string        `mapstructure:"log_level"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	PongWait   time.Duration `mapstructure:"pong_wait"`
	WriteWait  time.Duration `mapstructure:"write_wait"`
	SendBuffer int           `mapstructure:"send_buffer"`

	FrameRateLimit int `mapstructure:"frame_rate_limit"`

	CredentialCookie string        `mapstructure:"credential_cookie"`
	CredentialMaxAge time.Duration `mapstructure:"credential_max_age"`

	BotDelay          time.Duration `mapstructure:"bot_delay"`
	SweepInterval     time.Duration `mapstructure:"sweep_interval"`
	FinishedRetention time.Duration `mapstructure:"finished_retention"`
	PresenceCapacity  int           `mapstructure:"presence_capacity"`
	ChatDisplay       time.Duration `mapstructure:"chat_display"`
	MoveRateLimit     int           `mapstructure:"move_rate_limit"`
	MoveRateWindow    time.Duration `mapstructure:"move_rate_window"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("secret", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("write_wait", "5s")
	v.SetDefault("send_buffer", 32)
	v.SetDefault("frame_rate_limit", 50)
	v.SetDefault("credential_cookie", "user")
	v.SetDefault("credential_max_age", "168h")
	v.SetDefault("bot_delay", "500ms")
	v.SetDefault("sweep_interval", "30m")
	v.SetDefault("finished_retention", "1h")
	v.SetDefault("presence_capacity", 64)
	v.SetDefault("chat_display", "5s")
	v.SetDefault("move_rate_limit", 20)
	v.SetDefault("move_rate_window", "1s")
}

// Load reads config/config.<CONFIG_ENV>.yaml over the defaults. Environment
// variables prefixed with ARENA_ win over both; a .env file, if present, is
// loaded into the environment first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	v.SetConfigFile(fileName)

	setDefaults(v)
	v.SetEnvPrefix("ARENA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", fileName, err)
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("static", cfg.StaticPath).Msg("config ready")
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.PingPeriod >= c.PongWait {
		errs = append(errs, errors.New("ping_period must be shorter than pong_wait"))
	}
	if c.SendBuffer <= 0 {
		errs = append(errs, errors.New("send_buffer must be positive"))
	}
	if c.FrameRateLimit <= 0 || c.MoveRateLimit <= 0 {
		errs = append(errs, errors.New("rate limits must be positive"))
	}
	if c.SweepInterval <= 0 || c.FinishedRetention <= 0 {
		errs = append(errs, errors.New("sweep_interval and finished_retention must be positive"))
	}
	if c.CredentialCookie == "" {
		errs = append(errs, errors.New("credential_cookie is required"))
	}
	if c.Mode == "release" && c.Secret == "" {
		errs = append(errs, errors.New("secret is required in release mode"))
	}
	return errors.Join(errs...)
}
