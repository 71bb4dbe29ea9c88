package tasks

import (
	"context"

	"github.com/jonboulle/clockwork"
)

// ScheduledTaskFunc defines the standard signature for all scheduled tasks.
// The context provided by the scheduler should be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// Task names as used under scheduler.tasks in the configuration.
const (
	NameSQLMaintenance = "sql_maintenance"
	NameTaskReminders  = "task_reminders"
)

// RegisterAllTasks initializes and returns a map of all registered scheduled tasks,
// keyed by configuration name.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}

	tasks := map[string]ScheduledTaskFunc{
		NameSQLMaintenance: newSQLMaintenanceTask(deps),
		NameTaskReminders:  newTaskRemindersTask(deps),
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
