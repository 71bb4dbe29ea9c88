package tasks

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/edgard/dailybot/internal/errors"
)

const dateLayout = "2006-01-02"

// newTaskRemindersTask reminds every admin about pending tasks due tomorrow.
// A failed delivery to one admin does not stop the others; any error that is
// not a DeliveryError aborts the run.
func newTaskRemindersTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", NameTaskReminders)

	return func(ctx context.Context) error {
		tomorrow := deps.Clock.Now().AddDate(0, 0, 1).Format(dateLayout)

		due, err := deps.Store.ListPendingTasksDueOn(ctx, tomorrow)
		if err != nil {
			return fmt.Errorf("failed to list tasks due %s: %w", tomorrow, err)
		}
		if len(due) == 0 {
			log.DebugContext(ctx, "No tasks due tomorrow", "day", tomorrow)
			return nil
		}

		admins, err := deps.Store.ListAdmins(ctx)
		if err != nil {
			return fmt.Errorf("failed to list admins: %w", err)
		}

		var errs []error
		sent := 0
		for _, task := range due {
			text := fmt.Sprintf(deps.Config.Messages.TaskReminder, task.Description)
			for _, adminID := range admins {
				if err := deps.Notifier.Deliver(ctx, adminID, text); err != nil {
					if !apperrors.IsDelivery(err) {
						return fmt.Errorf("reminder for task %d aborted: %w", task.TaskID, err)
					}
					log.WarnContext(ctx, "Failed to send reminder", "error", err, "task_id", task.TaskID, "user_id", adminID)
					errs = append(errs, err)
					continue
				}
				sent++
			}
		}

		log.InfoContext(ctx, "Task reminders sent", "day", tomorrow, "tasks", len(due), "sent", sent, "failed", len(errs))
		if len(errs) > 0 {
			return fmt.Errorf("%d reminders failed: %w", len(errs), errors.Join(errs...))
		}
		return nil
	}
}
