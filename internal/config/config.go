// ABOUTME: Layered configuration for the tone player
// ABOUTME: Viper defaults, optional config file, WAVEOUT_ env vars, then explicit flags
package config

import (
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/Sendspin/waveout/pkg/audio/output"
	"github.com/Sendspin/waveout/pkg/waveout"
	"github.com/spf13/viper"
)

// Config holds the operator-adjustable settings. The audio format, buffer
// count and buffer size are fixed and not part of it.
type Config struct {
	Backend       string
	LogFile       string
	NoTUI         bool
	WAVFile       string
	SubmitRetries int
	RetryBackoff  time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", "oto")
	v.SetDefault("logfile", "waveout.log")
	v.SetDefault("notui", false)
	v.SetDefault("wavfile", "waveout.wav")
	v.SetDefault("retries", waveout.DefaultSubmitRetries)
	v.SetDefault("retrybackoff", waveout.DefaultRetryBackoff)
}

// Load resolves the configuration. configFile may be empty. overrides holds
// values from command-line flags the operator set explicitly and wins over
// everything else.
func Load(configFile string, overrides map[string]any) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("WAVEOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		log.Printf("Loaded config file: %s", v.ConfigFileUsed())
	}

	for key, value := range overrides {
		v.Set(key, value)
	}

	cfg := Config{
		Backend:       strings.ToLower(v.GetString("backend")),
		LogFile:       v.GetString("logfile"),
		NoTUI:         v.GetBool("notui"),
		WAVFile:       v.GetString("wavfile"),
		SubmitRetries: v.GetInt("retries"),
		RetryBackoff:  v.GetDuration("retrybackoff"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the resolved settings
func (c Config) Validate() error {
	if !slices.Contains(output.Backends(), c.Backend) {
		return fmt.Errorf("%w: %q (supported: %s)", output.ErrUnknownBackend, c.Backend,
			strings.Join(output.Backends(), ", "))
	}
	if c.Backend == "wav" && c.WAVFile == "" {
		return fmt.Errorf("wav backend requires wavfile")
	}
	if c.SubmitRetries < -1 {
		return fmt.Errorf("invalid retries: %d (0 disables retries)", c.SubmitRetries)
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("invalid retry backoff: %v", c.RetryBackoff)
	}
	return nil
}
