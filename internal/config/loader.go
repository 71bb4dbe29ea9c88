package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "github.com/edgard/dailybot/internal/errors"
)

// EnvPrefix is the prefix of environment variables overriding config keys.
const EnvPrefix = "BOT"

// Load loads and validates configuration from:
// 1. Default values
// 2. the YAML file at path (optional, skipped when missing)
// 3. .env in the working directory (optional)
// 4. BOT_* environment variables
func Load(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadChat loads the same sources as Load but validates only the sections
// used by the terminal chat client, so no Telegram token is needed.
func LoadChat(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}

	validate := validator.New()
	if err := validate.Struct(cfg.Log); err != nil {
		return nil, apperrors.NewConfigError("invalid log configuration", err)
	}
	if err := validate.Struct(cfg.LLM); err != nil {
		return nil, apperrors.NewConfigError("invalid llm configuration", err)
	}
	if cfg.LLM.Backend == "gemini" && cfg.LLM.Gemini.APIKey == "" {
		return nil, apperrors.NewConfigError("llm.gemini.api_key is required for the gemini backend", nil)
	}
	return cfg, nil
}

func read(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, apperrors.NewConfigError("failed to read config file "+path, err)
			}
		} else if errors.Is(err, fs.ErrNotExist) {
			slog.Info("Configuration file not found, using defaults and environment", "path", path)
		} else {
			return nil, apperrors.NewConfigError("failed to stat config file "+path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to parse config", err)
	}
	return cfg, nil
}

// Validate checks struct tags and the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return apperrors.NewConfigError("invalid configuration", err)
	}

	if c.Content.Provider == "newsapi" && c.Content.NewsAPI.APIKey == "" {
		return apperrors.NewConfigError("content.newsapi.api_key is required for the newsapi provider", nil)
	}
	if c.LLM.Backend == "gemini" && c.LLM.Gemini.APIKey == "" {
		return apperrors.NewConfigError("llm.gemini.api_key is required for the gemini backend", nil)
	}

	return nil
}

// setDefaults registers every key with viper so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.json", DefaultLogJSON)

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_ids", []int64{})

	v.SetDefault("database.path", DefaultDBPath)

	v.SetDefault("content.provider", DefaultContentProvider)
	v.SetDefault("content.timeout", DefaultContentTimeout)
	v.SetDefault("content.max_items", DefaultContentMaxItems)
	v.SetDefault("content.user_agent", DefaultContentUserAgent)
	v.SetDefault("content.open_meteo.geocoding_url", DefaultGeocodingURL)
	v.SetDefault("content.open_meteo.forecast_url", DefaultForecastURL)
	v.SetDefault("content.wttr.base_url", DefaultWttrURL)
	v.SetDefault("content.newsapi.base_url", DefaultNewsAPIURL)
	v.SetDefault("content.newsapi.api_key", "")
	v.SetDefault("content.google_news.base_url", DefaultGoogleNewsURL)
	v.SetDefault("content.google_news.country", DefaultGoogleNewsRegion)

	v.SetDefault("notify.enabled", DefaultNotifyEnabled)
	v.SetDefault("notify.fetch_timeout", DefaultNotifyFetchTimeout)
	v.SetDefault("notify.concurrency", DefaultNotifyConcurrency)

	tasks := make(map[string]any, len(DefaultTasks))
	for name, task := range DefaultTasks {
		tasks[name] = map[string]any{"enabled": task.Enabled, "schedule": task.Schedule}
	}
	v.SetDefault("scheduler.tasks", tasks)

	v.SetDefault("llm.backend", "")
	v.SetDefault("llm.timeout", DefaultLLMTimeout)
	v.SetDefault("llm.ollama.base_url", DefaultOllamaURL)
	v.SetDefault("llm.ollama.model", DefaultOllamaModel)
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", DefaultGeminiModel)
	v.SetDefault("llm.gemini.temperature", DefaultGeminiTemperature)
	v.SetDefault("llm.gemini.system_instruction", "")
	v.SetDefault("llm.gemini.max_retries", DefaultGeminiMaxRetries)
	v.SetDefault("llm.gemini.retry_delay", DefaultGeminiRetryDelay)

	v.SetDefault("metrics.enabled", DefaultMetricsEnabled)
	v.SetDefault("metrics.addr", DefaultMetricsAddr)

	for key, text := range messageDefaults() {
		v.SetDefault("messages."+key, text)
	}
}

func messageDefaults() map[string]string {
	m := DefaultMessages
	return map[string]string{
		"help":                m.Help,
		"general_error":       m.GeneralError,
		"not_authorized":      m.NotAuthorized,
		"subscribe_usage":     m.SubscribeUsage,
		"subscribe_saved":     m.SubscribeSaved,
		"unsubscribed":        m.Unsubscribed,
		"no_subscription":     m.NoSubscription,
		"subscription_status": m.SubscriptionStatus,
		"lang_usage":          m.LangUsage,
		"lang_unsupported":    m.LangUnsupported,
		"lang_set":            m.LangSet,
		"now_usage":           m.NowUsage,
		"not_found":           m.NotFound,
		"provider_error":      m.ProviderError,
		"ask_usage":           m.AskUsage,
		"ask_unavailable":     m.AskUnavailable,
		"no_tasks":            m.NoTasks,
		"task_usage":          m.TaskUsage,
		"task_invalid_date":   m.TaskInvalidDate,
		"task_added":          m.TaskAdded,
		"task_delete_usage":   m.TaskDeleteUsage,
		"task_deleted":        m.TaskDeleted,
		"task_not_found":      m.TaskNotFound,
		"task_completed":      m.TaskCompleted,
		"task_done_button":    m.TaskDoneButton,
		"task_reminder":       m.TaskReminder,
	}
}

// String renders a short summary for startup logs without secrets.
func (c *Config) String() string {
	return fmt.Sprintf("log=%s db=%s provider=%s notify=%t llm=%q metrics=%t",
		c.Log.Level, c.Database.Path, c.Content.Provider, c.Notify.Enabled, c.LLM.Backend, c.Metrics.Enabled)
}
