package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/dailybot/internal/database"
)

const doneCallbackPrefix = "done_"

// FormatTask renders one task line block as shown by /tasks.
func FormatTask(task database.Task) string {
	status := "🕒"
	if task.Completed {
		status = "✅"
	}
	return fmt.Sprintf("%s #%d %s\n📅 %s", status, task.TaskID, task.Description, task.DueDate)
}

// NewTasksHandler returns a handler for /tasks. Admins get a done button on
// every pending task.
func NewTasksHandler(deps HandlerDeps) bot.HandlerFunc {
	return tasksHandler{deps}.Handle
}

type tasksHandler struct {
	deps HandlerDeps
}

func (h tasksHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "tasks")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Tasks handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	msgs := h.deps.Config.Messages

	tasks, err := h.deps.Store.ListTasks(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to list tasks", "error", err)
		reply(ctx, b, log, chatID, msgs.GeneralError)
		return
	}
	if len(tasks) == 0 {
		reply(ctx, b, log, chatID, msgs.NoTasks)
		return
	}

	isAdmin, err := h.deps.Store.IsAdmin(ctx, update.Message.From.ID)
	if err != nil {
		log.WarnContext(ctx, "Failed to check admin role", "error", err)
	}

	for _, task := range tasks {
		params := &bot.SendMessageParams{ChatID: chatID, Text: FormatTask(task)}
		if isAdmin && !task.Completed {
			params.ReplyMarkup = &models.InlineKeyboardMarkup{
				InlineKeyboard: [][]models.InlineKeyboardButton{{
					{Text: msgs.TaskDoneButton, CallbackData: doneCallbackPrefix + strconv.FormatInt(task.TaskID, 10)},
				}},
			}
		}
		if _, err := b.SendMessage(ctx, params); err != nil {
			log.ErrorContext(ctx, "Failed to send task", "error", err, "task_id", task.TaskID)
			return
		}
	}
}

// NewAddTaskHandler returns a handler for /addtask <description...> <YYYY-MM-DD>.
func NewAddTaskHandler(deps HandlerDeps) bot.HandlerFunc {
	return addTaskHandler{deps}.Handle
}

type addTaskHandler struct {
	deps HandlerDeps
}

func (h addTaskHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "addtask")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Addtask handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	msgs := h.deps.Config.Messages

	description, due, err := parseAddTaskArgs(commandArgs(update.Message.Text))
	switch {
	case errors.Is(err, errInvalidDate):
		reply(ctx, b, log, chatID, msgs.TaskInvalidDate)
		return
	case err != nil:
		reply(ctx, b, log, chatID, msgs.TaskUsage)
		return
	}

	task, err := h.deps.Store.AddTask(ctx, description, due, update.Message.From.ID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to add task", "error", err)
		reply(ctx, b, log, chatID, msgs.GeneralError)
		return
	}

	log.InfoContext(ctx, "Task added", "task_id", task.TaskID, "due_date", task.DueDate)
	reply(ctx, b, log, chatID, fmt.Sprintf(msgs.TaskAdded, task.Description, task.DueDate))
}

// NewDeleteTaskHandler returns a handler for /deltask <id>.
func NewDeleteTaskHandler(deps HandlerDeps) bot.HandlerFunc {
	return deleteTaskHandler{deps}.Handle
}

type deleteTaskHandler struct {
	deps HandlerDeps
}

func (h deleteTaskHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "deltask")

	if update.Message == nil {
		log.WarnContext(ctx, "Deltask handler received update with nil message", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	msgs := h.deps.Config.Messages

	id, err := parseTaskID(commandArgs(update.Message.Text))
	if err != nil {
		reply(ctx, b, log, chatID, msgs.TaskDeleteUsage)
		return
	}

	err = h.deps.Store.DeleteTask(ctx, id)
	switch {
	case errors.Is(err, database.ErrTaskNotFound):
		reply(ctx, b, log, chatID, fmt.Sprintf(msgs.TaskNotFound, id))
	case err != nil:
		log.ErrorContext(ctx, "Failed to delete task", "error", err, "task_id", id)
		reply(ctx, b, log, chatID, msgs.GeneralError)
	default:
		log.InfoContext(ctx, "Task deleted", "task_id", id)
		reply(ctx, b, log, chatID, fmt.Sprintf(msgs.TaskDeleted, id))
	}
}

// NewDoneCallbackHandler returns the handler of the done_<id> inline button.
func NewDoneCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	return doneCallbackHandler{deps}.Handle
}

type doneCallbackHandler struct {
	deps HandlerDeps
}

func (h doneCallbackHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "done_callback")

	query := update.CallbackQuery
	if query == nil {
		log.WarnContext(ctx, "Done handler received update without callback query", "update_id", update.ID)
		return
	}
	msgs := h.deps.Config.Messages

	id, err := strconv.ParseInt(strings.TrimPrefix(query.Data, doneCallbackPrefix), 10, 64)
	if err != nil {
		log.WarnContext(ctx, "Malformed callback data", "data", query.Data)
		answerCallback(ctx, b, log, query.ID, msgs.GeneralError)
		return
	}

	err = h.deps.Store.CompleteTask(ctx, id)
	switch {
	case errors.Is(err, database.ErrTaskNotFound):
		answerCallback(ctx, b, log, query.ID, fmt.Sprintf(msgs.TaskNotFound, id))
		return
	case err != nil:
		log.ErrorContext(ctx, "Failed to complete task", "error", err, "task_id", id)
		answerCallback(ctx, b, log, query.ID, msgs.GeneralError)
		return
	}

	log.InfoContext(ctx, "Task completed", "task_id", id, "user_id", query.From.ID)
	answerCallback(ctx, b, log, query.ID, msgs.TaskCompleted)

	msg := query.Message.Message
	if msg == nil {
		return
	}
	_, err = b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Text:      msg.Text + "\n" + msgs.TaskCompleted,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to edit task message", "error", err, "task_id", id)
	}
}
