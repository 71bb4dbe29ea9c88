// Package config manages application configuration from environment variables,
// config files, and default values.
package config

import (
	"time"

	"github.com/go-telegram/bot/models"
)

// Config defines the application configuration. Values can be set via environment
// variables prefixed with BOT_ (e.g., BOT_TELEGRAM_TOKEN) or through config.yaml.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Content   ContentConfig   `mapstructure:"content"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig contains Telegram bot settings.
type TelegramConfig struct {
	Token    string  `mapstructure:"token"     validate:"required"`
	AdminIDs []int64 `mapstructure:"admin_ids" validate:"dive,gt=0"`

	// BotInfo is filled at runtime from getMe.
	BotInfo *models.User `mapstructure:"-"`
}

// IsAdmin reports whether userID is listed in telegram.admin_ids.
func (t TelegramConfig) IsAdmin(userID int64) bool {
	for _, id := range t.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// DatabaseConfig contains SQLite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// ContentConfig selects and configures the content provider used for scheduled
// digests and the /now command.
type ContentConfig struct {
	Provider   string           `mapstructure:"provider"  validate:"required,oneof=open-meteo wttr newsapi google-news"`
	Timeout    time.Duration    `mapstructure:"timeout"   validate:"min=1s,max=2m"`
	MaxItems   int              `mapstructure:"max_items" validate:"min=1,max=20"`
	UserAgent  string           `mapstructure:"user_agent"`
	OpenMeteo  OpenMeteoConfig  `mapstructure:"open_meteo"`
	Wttr       WttrConfig       `mapstructure:"wttr"`
	NewsAPI    NewsAPIConfig    `mapstructure:"newsapi"`
	GoogleNews GoogleNewsConfig `mapstructure:"google_news"`
}

type OpenMeteoConfig struct {
	GeocodingURL string `mapstructure:"geocoding_url" validate:"required,url"`
	ForecastURL  string `mapstructure:"forecast_url"  validate:"required,url"`
}

type WttrConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
}

type NewsAPIConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	APIKey  string `mapstructure:"api_key"`
}

type GoogleNewsConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	Country string `mapstructure:"country"  validate:"required,len=2"`
}

// NotifyConfig configures the daily notification engine.
type NotifyConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout" validate:"min=1s,max=2m"`
	Concurrency  int           `mapstructure:"concurrency"   validate:"min=1,max=32"`
}

// SchedulerConfig lists cron jobs by task name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig holds the settings of a single cron job.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// LLMConfig configures the language model used by /ask and cmd/chat.
type LLMConfig struct {
	Backend string        `mapstructure:"backend" validate:"omitempty,oneof=ollama gemini"`
	Timeout time.Duration `mapstructure:"timeout" validate:"min=1s,max=10m"`
	Ollama  OllamaConfig  `mapstructure:"ollama"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
}

type OllamaConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	Model   string `mapstructure:"model"    validate:"required"`
}

type GeminiConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	Model             string        `mapstructure:"model"              validate:"required"`
	Temperature       float32       `mapstructure:"temperature"        validate:"min=0,max=2"`
	SystemInstruction string        `mapstructure:"system_instruction"`
	MaxRetries        int           `mapstructure:"max_retries"        validate:"min=0,max=10"`
	RetryDelay        time.Duration `mapstructure:"retry_delay"`
}

// MetricsConfig configures the metrics and health HTTP endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr" validate:"required_if=Enabled true"`
}

// MessagesConfig holds user-facing reply texts. Values containing %s or %d
// are format strings.
type MessagesConfig struct {
	Help               string `mapstructure:"help"                validate:"required"`
	GeneralError       string `mapstructure:"general_error"       validate:"required"`
	NotAuthorized      string `mapstructure:"not_authorized"      validate:"required"`
	SubscribeUsage     string `mapstructure:"subscribe_usage"     validate:"required"`
	SubscribeSaved     string `mapstructure:"subscribe_saved"     validate:"required"`
	Unsubscribed       string `mapstructure:"unsubscribed"        validate:"required"`
	NoSubscription     string `mapstructure:"no_subscription"     validate:"required"`
	SubscriptionStatus string `mapstructure:"subscription_status" validate:"required"`
	LangUsage          string `mapstructure:"lang_usage"          validate:"required"`
	LangUnsupported    string `mapstructure:"lang_unsupported"    validate:"required"`
	LangSet            string `mapstructure:"lang_set"            validate:"required"`
	NowUsage           string `mapstructure:"now_usage"           validate:"required"`
	NotFound           string `mapstructure:"not_found"           validate:"required"`
	ProviderError      string `mapstructure:"provider_error"      validate:"required"`
	AskUsage           string `mapstructure:"ask_usage"           validate:"required"`
	AskUnavailable     string `mapstructure:"ask_unavailable"     validate:"required"`
	NoTasks            string `mapstructure:"no_tasks"            validate:"required"`
	TaskUsage          string `mapstructure:"task_usage"          validate:"required"`
	TaskInvalidDate    string `mapstructure:"task_invalid_date"   validate:"required"`
	TaskAdded          string `mapstructure:"task_added"          validate:"required"`
	TaskDeleteUsage    string `mapstructure:"task_delete_usage"   validate:"required"`
	TaskDeleted        string `mapstructure:"task_deleted"        validate:"required"`
	TaskNotFound       string `mapstructure:"task_not_found"      validate:"required"`
	TaskCompleted      string `mapstructure:"task_completed"      validate:"required"`
	TaskDoneButton     string `mapstructure:"task_done_button"    validate:"required"`
	TaskReminder       string `mapstructure:"task_reminder"       validate:"required"`
}
