package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port     string
		LogLevel string
	}
	Transport struct {
		TokenSecret   string
		TokenExpMin   int
		TokenSkewSecs int
	}
	Analysis struct {
		BaseURL    string
		OrgID      string
		PrivateKey string
	}
	Debate struct {
		// Reconciliation thresholds. Empirically tuned against the reference
		// transport; revalidate when swapping transports.
		DebounceMs      int
		IdleTimeoutSecs int
		MinPartialChars int
	}
}

func Load() Config {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("transport.token_exp_min", 720)
	v.SetDefault("transport.token_skew_secs", 30)

	v.SetDefault("analysis.base_url", "https://api.vapi.ai")

	v.SetDefault("debate.debounce_ms", 100)
	v.SetDefault("debate.idle_timeout_secs", 45)
	v.SetDefault("debate.min_partial_chars", 3)

	// Map envs
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.log_level", "LOG_LEVEL")

	v.BindEnv("transport.token_secret", "TRANSPORT_TOKEN_SECRET")
	v.BindEnv("transport.token_exp_min", "TRANSPORT_TOKEN_EXP_MIN")
	v.BindEnv("transport.token_skew_secs", "TRANSPORT_TOKEN_SKEW_SECS")

	v.BindEnv("analysis.base_url", "ANALYSIS_BASE_URL")
	v.BindEnv("analysis.org_id", "ANALYSIS_ORG_ID")
	v.BindEnv("analysis.private_key", "ANALYSIS_PRIVATE_KEY")

	v.BindEnv("debate.debounce_ms", "DEBATE_DEBOUNCE_MS")
	v.BindEnv("debate.idle_timeout_secs", "DEBATE_IDLE_TIMEOUT_SECS")
	v.BindEnv("debate.min_partial_chars", "DEBATE_MIN_PARTIAL_CHARS")

	var c Config
	c.Server.Port = toString(v.Get("server.port"))
	c.Server.LogLevel = v.GetString("server.log_level")

	c.Transport.TokenSecret = v.GetString("transport.token_secret")
	c.Transport.TokenExpMin = v.GetInt("transport.token_exp_min")
	c.Transport.TokenSkewSecs = v.GetInt("transport.token_skew_secs")

	c.Analysis.BaseURL = v.GetString("analysis.base_url")
	c.Analysis.OrgID = v.GetString("analysis.org_id")
	c.Analysis.PrivateKey = v.GetString("analysis.private_key")

	c.Debate.DebounceMs = v.GetInt("debate.debounce_ms")
	c.Debate.IdleTimeoutSecs = v.GetInt("debate.idle_timeout_secs")
	c.Debate.MinPartialChars = v.GetInt("debate.min_partial_chars")

	log.Printf("config loaded: port=%s analysis_base=%s", c.Server.Port, c.Analysis.BaseURL)
	return c
}

func toString(v any) string { return fmt.Sprint(v) }
