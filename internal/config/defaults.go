package config

import "time"

// Default values for configuration
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = true

	DefaultDBPath = "dailybot.db"

	DefaultContentProvider  = "open-meteo"
	DefaultContentTimeout   = 10 * time.Second
	DefaultContentMaxItems  = 5
	DefaultContentUserAgent = "Mozilla/5.0 (compatible; dailybot/1.0)"
	DefaultGeocodingURL     = "https://geocoding-api.open-meteo.com/v1/search"
	DefaultForecastURL      = "https://api.open-meteo.com/v1/forecast"
	DefaultWttrURL          = "https://wttr.in"
	DefaultNewsAPIURL       = "https://newsapi.org/v2/everything"
	DefaultGoogleNewsURL    = "https://news.google.com/rss"
	DefaultGoogleNewsRegion = "US"

	DefaultNotifyEnabled      = true
	DefaultNotifyFetchTimeout = 30 * time.Second
	DefaultNotifyConcurrency  = 1

	DefaultLLMTimeout        = 60 * time.Second
	DefaultOllamaURL         = "http://localhost:11434"
	DefaultOllamaModel       = "llama3:latest"
	DefaultGeminiModel       = "gemini-2.0-flash"
	DefaultGeminiTemperature = 1.0
	DefaultGeminiMaxRetries  = 2
	DefaultGeminiRetryDelay  = 2 * time.Second

	DefaultMetricsEnabled = true
	DefaultMetricsAddr    = ":8080"
)

// DefaultTasks are the cron jobs registered when the config file does not list any.
var DefaultTasks = map[string]TaskConfig{
	"sql_maintenance": {Enabled: true, Schedule: "0 3 * * 0"},
	"task_reminders":  {Enabled: true, Schedule: "0 9 * * *"},
}

// DefaultMessages are the reply texts used when none are configured.
var DefaultMessages = MessagesConfig{
	Help: "/subscribe <topic> <HH:MM> - daily digest at the given time\n" +
		"/stop - cancel the daily digest\n" +
		"/me - show your subscription\n" +
		"/now [topic] - fetch right now\n" +
		"/lang <code> - change language\n" +
		"/ask <question> - ask the assistant\n" +
		"/tasks - view all tasks\n" +
		"/addtask <description> <YYYY-MM-DD> - add a task (admins only)\n" +
		"/deltask <id> - delete a task (admins only)",
	GeneralError:       "❌ An error occurred. Please try again later.",
	NotAuthorized:      "⛔ Only admins can do that.",
	SubscribeUsage:     "Usage:\n/subscribe London 08:00\nTime format: HH:MM (24h)",
	SubscribeSaved:     "📍 %s\n⏰ Daily at: %s",
	Unsubscribed:       "🔕 Daily digest cancelled.",
	NoSubscription:     "You have no daily digest yet. Use /subscribe <topic> <HH:MM>",
	SubscriptionStatus: "📍 %s\n⏰ Daily at: %s\n🌐 Language: %s",
	LangUsage:          "Usage: /lang en",
	LangUnsupported:    "Available: %s",
	LangSet:            "Language set to %s",
	NowUsage:           "Example: /now Paris",
	NotFound:           "⚠️ Nothing found for that topic.",
	ProviderError:      "⚠️ Service error, please try again later.",
	AskUsage:           "❗ Please write text after /ask",
	AskUnavailable:     "The assistant is not configured.",
	NoTasks:            "📭 No tasks yet.",
	TaskUsage:          "Usage:\n/addtask <task description> <YYYY-MM-DD>\nExample:\n/addtask Prepare report 2026-02-02",
	TaskInvalidDate:    "❌ Invalid date. Use YYYY-MM-DD",
	TaskAdded:          "✅ Task added:\n%s\nDue: %s",
	TaskDeleteUsage:    "Usage: /deltask <task_id>",
	TaskDeleted:        "🗑 Task %d deleted.",
	TaskNotFound:       "Task %d not found.",
	TaskCompleted:      "✅ Task completed",
	TaskDoneButton:     "Mark as done",
	TaskReminder:       "⏰ Reminder: '%s' is due tomorrow!",
}
