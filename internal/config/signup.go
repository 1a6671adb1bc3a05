package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// SignupConfig controls tenant-code generation during signup.
type SignupConfig struct {
	// CodeMaxAttempts bounds how many suffixed candidates are tried
	// before falling back to a high-entropy code.
	CodeMaxAttempts int `mapstructure:"codeMaxAttempts"`
	// CodeSuffixRange is the exclusive upper bound of the random
	// numeric suffix appended on retry.
	CodeSuffixRange int `mapstructure:"codeSuffixRange"`
	// CodeMaxLength caps the human-chosen code length.
	CodeMaxLength int `mapstructure:"codeMaxLength"`
}

func DefaultSignupConfig() SignupConfig {
	return SignupConfig{
		CodeMaxAttempts: 3,
		CodeSuffixRange: 100,
		CodeMaxLength:   30,
	}
}

// SignupConfigHolder exposes the current signup config and hot-reloads
// it when the backing file changes.
type SignupConfigHolder struct {
	current atomic.Value // holds SignupConfig
}

func NewSignupConfigHolder() (*SignupConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("signup")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/thrivekit/config")
	v.AddConfigPath("/etc/thrivekit")
	v.AddConfigPath(".")

	v.SetEnvPrefix("THRIVEKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultSignupConfig()
		v.SetDefault("signup.codeMaxAttempts", defaults.CodeMaxAttempts)
		v.SetDefault("signup.codeSuffixRange", defaults.CodeSuffixRange)
		v.SetDefault("signup.codeMaxLength", defaults.CodeMaxLength)
	}

	var cfg SignupConfig
	if err := v.UnmarshalKey("signup", &cfg); err != nil {
		return nil, err
	}
	if err := validateSignupConfig(cfg); err != nil {
		return nil, err
	}

	holder := &SignupConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated SignupConfig
		if err := v.UnmarshalKey("signup", &updated); err != nil {
			log.Printf("[signup-config] reload failed: %v", err)
			return
		}
		if err := validateSignupConfig(updated); err != nil {
			log.Printf("[signup-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
	})

	return holder, nil
}

// NewStaticSignupConfigHolder wraps a fixed config, for tests.
func NewStaticSignupConfigHolder(cfg SignupConfig) *SignupConfigHolder {
	holder := &SignupConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *SignupConfigHolder) Current() SignupConfig {
	return h.current.Load().(SignupConfig)
}

func validateSignupConfig(cfg SignupConfig) error {
	if cfg.CodeMaxAttempts < 1 {
		return errors.New("signup: codeMaxAttempts must be at least 1")
	}
	if cfg.CodeSuffixRange < 2 {
		return errors.New("signup: codeSuffixRange must be at least 2")
	}
	if cfg.CodeMaxLength < 1 {
		return errors.New("signup: codeMaxLength must be at least 1")
	}
	return nil
}
