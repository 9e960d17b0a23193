package config

import (
	"fmt"
	"io/fs"
	"reflect"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds the full bot configuration
type Config struct {
	Discord   DiscordConfig
	OpenAI    OpenAIConfig
	EA        EAConfig
	Mirror    MirrorConfig
	Report    ReportConfig
	Selection SelectionConfig
	Redis     RedisConfig
	Log       LogConfig
}

type DiscordConfig struct {
	Token   string `env:"DISCORD_TOKEN"`
	GuildID string `env:"GUILD_ID"`
}

type OpenAIConfig struct {
	APIKey       string  `env:"OPENAI_API_KEY" validate:"required"`
	Model        string  `env:"OPENAI_MODEL" env-default:"gpt-4o-mini" validate:"required"`
	BaseURL      string  `env:"OPENAI_BASE_URL" validate:"omitempty,url"`
	MaxTokens    int     `env:"MAX_TOKENS" env-default:"900" validate:"gt=0"`
	Temperature  float64 `env:"TEMPERATURE" env-default:"0.7" validate:"gte=0,lte=2"`
	SystemPrompt string  `env:"SYSTEM_PROMPT"`
}

type EAConfig struct {
	BaseURL   string        `env:"EA_BASE_URL" env-default:"https://proclubs.ea.com/api/fc" validate:"required,url"`
	Platforms []string      `env:"EA_PLATFORMS" env-default:"common-gen5,common-gen4,nx" validate:"min=1,dive,required"`
	Timeout   time.Duration `env:"EA_TIMEOUT" env-default:"10s" validate:"gt=0"`
	RateLimit float64       `env:"EA_RATE_LIMIT" env-default:"5" validate:"gt=0"`
}

type MirrorConfig struct {
	BaseURL   string        `env:"MIRROR_BASE_URL" validate:"omitempty,url"`
	Timeout   time.Duration `env:"MIRROR_TIMEOUT" env-default:"10s" validate:"gt=0"`
	RateLimit float64       `env:"MIRROR_RATE_LIMIT" env-default:"2" validate:"gt=0"`
	PageTTL   time.Duration `env:"MIRROR_PAGE_TTL" env-default:"1m" validate:"gt=0"`
}

// Enabled reports whether the HTML mirror source should be used
func (m MirrorConfig) Enabled() bool {
	return strings.TrimSpace(m.BaseURL) != ""
}

type ReportConfig struct {
	RankResults   bool     `env:"RANK_RESULTS" env-default:"true"`
	MatchTypes    []string `env:"MATCH_TYPES" env-default:"league,playoff,friendly" validate:"min=1,dive,oneof=league playoff friendly"`
	MatchCap      int      `env:"MATCH_CAP" env-default:"10" validate:"gt=0"`
	MemberCap     int      `env:"MEMBER_CAP" env-default:"25" validate:"gt=0"`
	InfoBudget    int      `env:"INFO_BUDGET" env-default:"2000" validate:"gt=0"`
	StatsBudget   int      `env:"STATS_BUDGET" env-default:"6000" validate:"gt=0"`
	MatchesBudget int      `env:"MATCHES_BUDGET" env-default:"8000" validate:"gt=0"`
}

type SelectionConfig struct {
	TTL time.Duration `env:"SELECTION_TTL" env-default:"15m" validate:"gt=0"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0" validate:"gte=0"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" env-default:"info"`
}

// Load reads an optional .env file and then the process environment.
// A missing .env file is not an error; variables already set in the environment win.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error loading %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("error reading environment: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings every command needs
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		return describe(err)
	}
	return nil
}

// ValidateBot checks the settings needed to run the Discord bot
func (c *Config) ValidateBot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Discord.Token) == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("env")
	})
	return v
}

// describe turns validator output into messages named after the env keys
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
			continue
		}
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", fe.Field(), rule))
	}
	return errors.New(strings.Join(msgs, "; "))
}
