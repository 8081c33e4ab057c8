package configs

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/wildlifemlxy/WWF-Telegram-Bot/configs/loader"
)

type GeminiConfig struct {
	APIKey string `validate:"required"`
	// Models is the ordered fallback chain, best first.
	Models []string `validate:"required"`
}

type TelegramConfig struct {
	Token             string        `validate:"required"`
	ConnectionTimeout time.Duration `validate:"required"`
	// WebhookBaseURL, when set, selects webhook delivery over polling.
	WebhookBaseURL string
}

type INaturalistConfig struct {
	Path string `validate:"required"`
}

type HTTPConfig struct {
	Port        string
	MetricsPort string
}

type Config struct {
	TG   TelegramConfig
	GM   GeminiConfig
	INat INaturalistConfig
	HTTP HTTPConfig
	Env  string
}

const defaultModels = "gemini-2.5-pro,gemini-2.5-flash,gemini-2.0-flash"

func MustLoad(loader loader.ConfigLoader) *Config {
	env := flag.String("env", "dev", "Environment type")
	flag.Parse()

	const op = "configs.MustLoad"
	envs, err := loader.Load()
	if err != nil {
		log.Fatalf("%s: config load failed: %+v", op, err)
	}
	cfg := &Config{
		TG: TelegramConfig{
			Token:             envs["TELEGRAM_TOKEN"],
			ConnectionTimeout: getEnvAsDuration(envs["TELEGRAM_CONNECTION_TIMEOUT"], 30*time.Second),
			WebhookBaseURL:    envs["TELEGRAM_WEBHOOK_BASE_URL"],
		},
		GM: GeminiConfig{
			APIKey: envs["GEMINI_API_KEY"],
			Models: getEnvAsList(envs["GEMINI_MODELS"], defaultModels),
		},
		INat: INaturalistConfig{
			Path: getEnvWithDefault(envs["INATURALIST_PATH"], "https://api.inaturalist.org/v1/"),
		},
		HTTP: HTTPConfig{
			Port:        getEnvWithDefault(envs["HTTP_PORT"], "3000"),
			MetricsPort: getEnvWithDefault(envs["METRICS_PORT"], "8080"),
		},
		Env: *env,
	}

	if err := validateConfig(cfg); err != nil {
		log.Fatalf("%s: config validation failed: %+v", op, err)
	}

	return cfg
}

func validateConfig(cfg *Config) error {
	if cfg.TG.Token == "" || cfg.GM.APIKey == "" {
		return fmt.Errorf("missing required configuration")
	}
	if len(cfg.GM.Models) == 0 {
		return fmt.Errorf("empty model chain")
	}
	return nil
}

func getEnvWithDefault(strValue string, defaultValue string) string {
	if strValue == "" {
		return defaultValue
	}
	return strValue
}

func getEnvAsList(strValue string, defaultValue string) []string {
	if strValue == "" {
		strValue = defaultValue
	}
	parts := strings.Split(strValue, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

func getEnvAsDuration(strValue string, defaultValue time.Duration) time.Duration {
	const op = "configs.getEnvAsDuration"
	if strValue == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(strValue)
	if err != nil {
		log.Printf("%s:Invalid value for %s, using default: %v", op, strValue, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsInt(strValue string, defaultValue int) int {
	const op = "configs.getEnvAsInt"
	if strValue == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("%s:Invalid value for %s, using default: %v", op, strValue, defaultValue)
		return defaultValue
	}
	return value
}
