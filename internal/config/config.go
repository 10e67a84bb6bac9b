package config

import (
	"time"

	"github.com/lepinkainen/shamash/internal/source"
	"github.com/spf13/viper"
)

// Global configuration variables
var (
	// TelegramToken is the bot token from @BotFather
	TelegramToken string
	// NLIAPIKey is the National Library of Israel API key
	NLIAPIKey string
	// ChabadPublicKey and ChabadSecretKey sign Chabad.org requests
	ChabadPublicKey string
	ChabadSecretKey string
	// CommandTimeout bounds every chat command
	CommandTimeout time.Duration
	// DailyPostSpec is the cron spec of the daily study post, empty to disable
	DailyPostSpec string
	// DailyPostChatID is the chat receiving the daily study post
	DailyPostChatID int64
	// Timezone is used by the scheduler and for "today"
	Timezone string
	// UserAgent is sent to every upstream source
	UserAgent string
)

const (
	defaultCommandTimeout = 8 * time.Second
	defaultTimezone       = "UTC"
)

// SetDefaults registers the default values of every key.
func SetDefaults() {
	viper.SetDefault("CommandTimeout", defaultCommandTimeout)
	viper.SetDefault("Timezone", defaultTimezone)
	viper.SetDefault("UserAgent", source.DefaultUserAgent)
	viper.SetDefault("daily.spec", "")
	viper.SetDefault("daily.chatid", 0)
}

// InitConfig initializes the global configuration
func InitConfig() {
	SetDefaults()

	TelegramToken = viper.GetString("TelegramToken")
	NLIAPIKey = viper.GetString("NLIAPIKey")
	ChabadPublicKey = viper.GetString("ChabadPublicKey")
	ChabadSecretKey = viper.GetString("ChabadSecretKey")
	CommandTimeout = viper.GetDuration("CommandTimeout")
	if CommandTimeout <= 0 {
		CommandTimeout = defaultCommandTimeout
	}
	DailyPostSpec = viper.GetString("daily.spec")
	DailyPostChatID = viper.GetInt64("daily.chatid")
	Timezone = viper.GetString("Timezone")
	UserAgent = viper.GetString("UserAgent")
}

// SetCommandTimeout overrides the per-command timeout
func SetCommandTimeout(d time.Duration) {
	if d > 0 {
		CommandTimeout = d
	}
}

// Location resolves Timezone, falling back to UTC.
func Location() *time.Location {
	loc, err := time.LoadLocation(Timezone)
	if err != nil || Timezone == "" {
		return time.UTC
	}
	return loc
}

// Credentials returns the secrets of every source that has some.
func Credentials() map[string]source.Credentials {
	return map[string]source.Credentials{
		"nli":    {APIKey: NLIAPIKey},
		"chabad": {PublicKey: ChabadPublicKey, SecretKey: ChabadSecretKey},
	}
}

// ApplySourceOverrides returns configs with sources.<name>.base_url,
// sources.<name>.interval and the global user agent applied.
func ApplySourceOverrides(configs map[string]source.Config) map[string]source.Config {
	out := make(map[string]source.Config, len(configs))
	for name, cfg := range configs {
		prefix := "sources." + name + "."
		cfg = cfg.WithOverrides(viper.GetString(prefix+"base_url"), viper.GetDuration(prefix+"interval"))
		if cfg.UserAgent == "" && UserAgent != "" {
			cfg.UserAgent = UserAgent
		}
		out[name] = cfg
	}
	return out
}
