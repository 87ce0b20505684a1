package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// DisplayConfig controls dashboard presentation defaults. It lives in a
// YAML file so operators can tune it without a rebuild.
type DisplayConfig struct {
	PageSize int    `mapstructure:"pageSize"`
	Currency string `mapstructure:"currency"`
	Locale   string `mapstructure:"locale"`
}

func DefaultDisplayConfig() DisplayConfig {
	return DisplayConfig{
		PageSize: 6,
		Currency: "USD",
		Locale:   "en-US",
	}
}

// DisplayConfigHolder hands out the current DisplayConfig and swaps it
// atomically on file change.
type DisplayConfigHolder struct {
	current atomic.Value // holds DisplayConfig
}

func NewDisplayConfigHolder() (*DisplayConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("display")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/billfold/config")
	v.AddConfigPath("/etc/billfold")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BILLFOLD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultDisplayConfig()
		v.SetDefault("display.pageSize", defaults.PageSize)
		v.SetDefault("display.currency", defaults.Currency)
		v.SetDefault("display.locale", defaults.Locale)
	}

	var cfg DisplayConfig
	if err := v.UnmarshalKey("display", &cfg); err != nil {
		return nil, err
	}
	if err := validateDisplayConfig(cfg); err != nil {
		return nil, err
	}

	holder := &DisplayConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated DisplayConfig
		if err := v.UnmarshalKey("display", &updated); err != nil {
			log.Printf("[display-config] reload failed: %v", err)
			return
		}
		if err := validateDisplayConfig(updated); err != nil {
			log.Printf("[display-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[display-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// StaticDisplayConfigHolder pins the holder to a fixed config with no
// file watching. Intended for tests.
func StaticDisplayConfigHolder(cfg DisplayConfig) *DisplayConfigHolder {
	holder := &DisplayConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *DisplayConfigHolder) Get() DisplayConfig {
	return h.current.Load().(DisplayConfig)
}

func validateDisplayConfig(cfg DisplayConfig) error {
	if cfg.PageSize <= 0 {
		return errors.New("display.pageSize must be positive")
	}
	if strings.TrimSpace(cfg.Currency) == "" {
		return errors.New("display.currency cannot be empty")
	}
	return nil
}
