package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// LangServicesConfig points the pipeline at the external speech and
// translation backends. It can be swapped at runtime via a volume-mounted
// config file.
type LangServicesConfig struct {
	RecognizeAPIURL string        `mapstructure:"recognizeApiUrl"`
	TranslateAPIURL string        `mapstructure:"translateApiUrl"`
	RequestTimeout  time.Duration `mapstructure:"requestTimeout"`
	LangsCacheTTL   time.Duration `mapstructure:"langsCacheTtl"`
}

func DefaultLangServicesConfig() LangServicesConfig {
	return LangServicesConfig{
		RecognizeAPIURL: "http://localhost:9001",
		TranslateAPIURL: "http://localhost:9002",
		RequestTimeout:  30 * time.Second,
		LangsCacheTTL:   time.Hour,
	}
}

// LangServicesHolder exposes the latest valid LangServicesConfig.
type LangServicesHolder struct {
	current atomic.Value // holds LangServicesConfig
}

func NewLangServicesHolder() (*LangServicesHolder, error) {
	v := viper.New()

	v.SetConfigName("services")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/parley/config")
	v.AddConfigPath("/etc/parley")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PARLEY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultLangServicesConfig()
	v.SetDefault("services.recognizeApiUrl", defaults.RecognizeAPIURL)
	v.SetDefault("services.translateApiUrl", defaults.TranslateAPIURL)
	v.SetDefault("services.requestTimeout", defaults.RequestTimeout)
	v.SetDefault("services.langsCacheTtl", defaults.LangsCacheTTL)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg LangServicesConfig
	if err := v.UnmarshalKey("services", &cfg); err != nil {
		return nil, err
	}
	if err := validateLangServicesConfig(cfg); err != nil {
		return nil, err
	}

	holder := &LangServicesHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated LangServicesConfig
		if err := v.UnmarshalKey("services", &updated); err != nil {
			log.Printf("[services-config] reload failed: %v", err)
			return
		}
		if err := validateLangServicesConfig(updated); err != nil {
			log.Printf("[services-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[services-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *LangServicesHolder) Get() LangServicesConfig {
	return h.current.Load().(LangServicesConfig)
}

func validateLangServicesConfig(cfg LangServicesConfig) error {
	if strings.TrimSpace(cfg.RecognizeAPIURL) == "" {
		return errors.New("services.recognizeApiUrl cannot be empty")
	}
	if strings.TrimSpace(cfg.TranslateAPIURL) == "" {
		return errors.New("services.translateApiUrl cannot be empty")
	}
	if cfg.RequestTimeout <= 0 {
		return errors.New("services.requestTimeout must be positive")
	}
	if cfg.LangsCacheTTL <= 0 {
		return errors.New("services.langsCacheTtl must be positive")
	}
	return nil
}
