package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultSearchEndpoint is the catalog's public simple-search page.
const DefaultSearchEndpoint = "https://www.gartner.com/search/site/premiumresearch/simple"

// Config holds the application configuration.
type Config struct {
	ServerPort string `mapstructure:"PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	SearchEndpoint string `mapstructure:"SEARCH_ENDPOINT"`
	SearchParam    string `mapstructure:"SEARCH_PARAM"`

	Fetcher      string        `mapstructure:"FETCHER"` // "http" or "browser"
	FetchTimeout time.Duration `mapstructure:"FETCH_TIMEOUT"`
	UserAgents   []string      `mapstructure:"-"` // USER_AGENTS, "|"-separated
	Proxies      []string      `mapstructure:"PROXIES"`

	BreakerMaxFailures uint32        `mapstructure:"BREAKER_MAX_FAILURES"`
	BreakerTimeout     time.Duration `mapstructure:"BREAKER_TIMEOUT"`

	RowSelector     string `mapstructure:"ROW_SELECTOR"`
	LinkSelector    string `mapstructure:"LINK_SELECTOR"`
	AnalystSelector string `mapstructure:"ANALYST_SELECTOR"`

	ChatDefaultCount   int    `mapstructure:"CHAT_DEFAULT_COUNT"`
	VoiceSearchLimit   int    `mapstructure:"VOICE_SEARCH_LIMIT"`
	VoiceSpokenResults int    `mapstructure:"VOICE_SPOKEN_RESULTS"`
	SourceID           string `mapstructure:"SOURCE_ID"`
}

// Load reads configuration from an optional .env file and environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// A missing .env is fine; production config comes from the environment.
	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	v.SetDefault("PORT", "5000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SEARCH_ENDPOINT", DefaultSearchEndpoint)
	v.SetDefault("SEARCH_PARAM", "keywords")
	v.SetDefault("FETCHER", "http")
	v.SetDefault("FETCH_TIMEOUT", "10s")
	v.SetDefault("USER_AGENTS", "")
	v.SetDefault("PROXIES", "")
	v.SetDefault("BREAKER_MAX_FAILURES", 5)
	v.SetDefault("BREAKER_TIMEOUT", "30s")
	v.SetDefault("ROW_SELECTOR", "div.searchResultRow")
	v.SetDefault("LINK_SELECTOR", ".search-result")
	v.SetDefault("ANALYST_SELECTOR", "p.results-analyst")
	v.SetDefault("CHAT_DEFAULT_COUNT", 3)
	v.SetDefault("VOICE_SEARCH_LIMIT", 10)
	v.SetDefault("VOICE_SPOKEN_RESULTS", 3)
	v.SetDefault("SOURCE_ID", "apiai-gartner-search-bot")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	// User agents contain commas, so they use their own separator.
	cfg.UserAgents = splitList(v.GetString("USER_AGENTS"), "|")
	return &cfg, nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
