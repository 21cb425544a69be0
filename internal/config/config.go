package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	PGDSN        string
	Store        string
	Bridge       string
	AgentURL     string
	AgentTimeout time.Duration

	TelegramToken string
	Twitter       TwitterConfig

	TokenSymbol string
	SendTimeout time.Duration
	QueueSize   int
	JournalPath string
	LogLevel    string

	Networks []Network
}

// TwitterConfig holds the OAuth1 keys for the broadcast account.
type TwitterConfig struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

// Configured reports whether all four keys are present.
func (t TwitterConfig) Configured() bool {
	return t.ConsumerKey != "" && t.ConsumerSecret != "" &&
		t.AccessToken != "" && t.AccessSecret != ""
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("STAKECAST")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("store", "postgres")
	v.SetDefault("bridge", "direct")
	v.SetDefault("agent-timeout", 30*time.Second)
	v.SetDefault("token-symbol", "TNST")
	v.SetDefault("send-timeout", 10*time.Second)
	v.SetDefault("queue-size", 256)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		PGDSN:         v.GetString("pg-dsn"),
		Store:         v.GetString("store"),
		Bridge:        v.GetString("bridge"),
		AgentURL:      v.GetString("agent-url"),
		AgentTimeout:  v.GetDuration("agent-timeout"),
		TelegramToken: v.GetString("telegram-token"),
		Twitter: TwitterConfig{
			ConsumerKey:    v.GetString("twitter-consumer-key"),
			ConsumerSecret: v.GetString("twitter-consumer-secret"),
			AccessToken:    v.GetString("twitter-access-token"),
			AccessSecret:   v.GetString("twitter-access-secret"),
		},
		TokenSymbol: v.GetString("token-symbol"),
		SendTimeout: v.GetDuration("send-timeout"),
		QueueSize:   v.GetInt("queue-size"),
		JournalPath: v.GetString("journal"),
		LogLevel:    v.GetString("log-level"),
		Networks:    loadNetworks(v),
	}

	return cfg, nil
}
