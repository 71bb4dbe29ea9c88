package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jmoiron/sqlx"

	apperrors "github.com/edgard/dailybot/internal/errors"
)

var (
	// ErrUserNotFound is returned when an operation targets a user without a record.
	ErrUserNotFound = errors.New("user not found")
	// ErrTaskNotFound is returned when a task id does not exist.
	ErrTaskNotFound = errors.New("task not found")
)

// Store defines the interface for database operations.
// Every write is committed before the method returns.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// UpsertUser inserts a default record if absent; no-op otherwise.
	UpsertUser(ctx context.Context, userID int64, role string) error
	// GetUser returns the full record or ErrUserNotFound.
	GetUser(ctx context.Context, userID int64) (*User, error)
	// SetSubscription overwrites topic and delivery time of an existing user.
	SetSubscription(ctx context.Context, userID int64, topic, deliveryTime string) error
	// ClearSubscription sets topic and delivery time back to NULL.
	ClearSubscription(ctx context.Context, userID int64) error
	// SetLocale overwrites the locale of an existing user.
	SetLocale(ctx context.Context, userID int64, locale string) error
	// GetLocale returns the stored locale, or DefaultLocale when unset or unknown.
	GetLocale(ctx context.Context, userID int64) (string, error)
	// ListActiveSubscriptions returns every user with both topic and delivery time set.
	ListActiveSubscriptions(ctx context.Context) ([]Subscription, error)

	// SetRole overwrites the role of an existing user.
	SetRole(ctx context.Context, userID int64, role string) error
	IsAdmin(ctx context.Context, userID int64) (bool, error)
	ListAdmins(ctx context.Context) ([]int64, error)

	AddTask(ctx context.Context, description, dueDate string, createdBy int64) (*Task, error)
	DeleteTask(ctx context.Context, taskID int64) error
	CompleteTask(ctx context.Context, taskID int64) error
	// ListTasks returns all tasks ordered by due date.
	ListTasks(ctx context.Context) ([]Task, error)
	// ListPendingTasksDueOn returns incomplete tasks due on day (YYYY-MM-DD).
	ListPendingTasksDueOn(ctx context.Context, day string) ([]Task, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
//
//nolint:ireturn // callers depend on the interface
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// withTx runs fn inside a transaction and commits it. The deferred rollback
// is a no-op once the commit succeeded.
func (s *sqlxStore) withTx(ctx context.Context, op string, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction", "op", op, "error", err)
		return apperrors.NewDatabaseError(op+": failed to begin transaction", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			s.logger.WarnContext(ctx, "Error rolling back transaction", "op", op, "error", rollbackErr)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction", "op", op, "error", err)
		return apperrors.NewDatabaseError(op+": failed to commit transaction", err)
	}
	return nil
}

// UpsertUser inserts the user with the given role if absent. The role of an
// existing user is left untouched.
func (s *sqlxStore) UpsertUser(ctx context.Context, userID int64, role string) error {
	if userID == 0 {
		return apperrors.NewValidationError("user_id cannot be zero", nil)
	}
	if role == "" {
		role = RoleUser
	}

	return s.withTx(ctx, "upsert user", func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO users (user_id, role, locale) VALUES (?, ?, ?);`,
			userID, role, DefaultLocale)
		if err != nil {
			s.logger.ErrorContext(ctx, "Error upserting user", "user_id", userID, "error", err)
			return apperrors.NewDatabaseError(fmt.Sprintf("failed to upsert user %d", userID), err)
		}
		return nil
	})
}

// GetUser retrieves a user by id.
func (s *sqlxStore) GetUser(ctx context.Context, userID int64) (*User, error) {
	var user User
	err := s.db.GetContext(ctx, &user, `
        SELECT user_id, role, topic, delivery_time, locale, created_at, updated_at
        FROM users WHERE user_id = ?;`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		s.logger.ErrorContext(ctx, "Error getting user", "user_id", userID, "error", err)
		return nil, apperrors.NewDatabaseError(fmt.Sprintf("failed to get user %d", userID), err)
	}
	return &user, nil
}

// updateUser runs an UPDATE against one user row and maps zero affected rows
// to ErrUserNotFound.
func (s *sqlxStore) updateUser(ctx context.Context, op string, userID int64, query string, args ...any) error {
	return s.withTx(ctx, op, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			s.logger.ErrorContext(ctx, "Error updating user", "op", op, "user_id", userID, "error", err)
			return apperrors.NewDatabaseError(fmt.Sprintf("%s: user %d", op, userID), err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return apperrors.NewDatabaseError(op+": failed to read affected rows", err)
		}
		if affected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

// SetSubscription overwrites topic and delivery time. It never creates a row.
func (s *sqlxStore) SetSubscription(ctx context.Context, userID int64, topic, deliveryTime string) error {
	if topic == "" || deliveryTime == "" {
		return apperrors.NewValidationError("topic and delivery time are required", nil)
	}
	err := s.updateUser(ctx, "set subscription", userID, `
        UPDATE users SET topic = ?, delivery_time = ?, updated_at = CURRENT_TIMESTAMP
        WHERE user_id = ?;`, topic, deliveryTime, userID)
	if err == nil {
		s.logger.DebugContext(ctx, "Subscription saved", "user_id", userID, "topic", topic, "delivery_time", deliveryTime)
	}
	return err
}

// ClearSubscription removes topic and delivery time but keeps the record.
func (s *sqlxStore) ClearSubscription(ctx context.Context, userID int64) error {
	return s.updateUser(ctx, "clear subscription", userID, `
        UPDATE users SET topic = NULL, delivery_time = NULL, updated_at = CURRENT_TIMESTAMP
        WHERE user_id = ?;`, userID)
}

// SetLocale overwrites the locale of a user.
func (s *sqlxStore) SetLocale(ctx context.Context, userID int64, locale string) error {
	if locale == "" {
		return apperrors.NewValidationError("locale cannot be empty", nil)
	}
	return s.updateUser(ctx, "set locale", userID, `
        UPDATE users SET locale = ?, updated_at = CURRENT_TIMESTAMP
        WHERE user_id = ?;`, locale, userID)
}

// GetLocale returns the stored locale or DefaultLocale.
func (s *sqlxStore) GetLocale(ctx context.Context, userID int64) (string, error) {
	var locale sql.NullString
	err := s.db.GetContext(ctx, &locale, `SELECT locale FROM users WHERE user_id = ?;`, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return DefaultLocale, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting locale", "user_id", userID, "error", err)
		return DefaultLocale, apperrors.NewDatabaseError(fmt.Sprintf("failed to get locale of user %d", userID), err)
	case !locale.Valid || locale.String == "":
		return DefaultLocale, nil
	default:
		return locale.String, nil
	}
}

// ListActiveSubscriptions returns users with non-empty topic and delivery time.
func (s *sqlxStore) ListActiveSubscriptions(ctx context.Context) ([]Subscription, error) {
	var subs []Subscription
	err := s.db.SelectContext(ctx, &subs, `
        SELECT user_id, topic, delivery_time, COALESCE(NULLIF(locale, ''), 'en') AS locale
        FROM users
        WHERE topic IS NOT NULL AND topic <> ''
          AND delivery_time IS NOT NULL AND delivery_time <> '';`)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error listing active subscriptions", "error", err)
		return nil, apperrors.NewDatabaseError("failed to list active subscriptions", err)
	}
	return subs, nil
}

// SetRole changes the role of a user.
func (s *sqlxStore) SetRole(ctx context.Context, userID int64, role string) error {
	if role != RoleAdmin && role != RoleUser {
		return apperrors.NewValidationError(fmt.Sprintf("unknown role %q", role), nil)
	}
	return s.updateUser(ctx, "set role", userID, `
        UPDATE users SET role = ?, updated_at = CURRENT_TIMESTAMP
        WHERE user_id = ?;`, role, userID)
}

// IsAdmin reports whether the user has the admin role. Unknown users are not admins.
func (s *sqlxStore) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	var role string
	err := s.db.GetContext(ctx, &role, `SELECT role FROM users WHERE user_id = ?;`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, apperrors.NewDatabaseError(fmt.Sprintf("failed to get role of user %d", userID), err)
	}
	return role == RoleAdmin, nil
}

// ListAdmins returns the ids of all admins.
func (s *sqlxStore) ListAdmins(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := s.db.SelectContext(ctx, &ids, `SELECT user_id FROM users WHERE role = ? ORDER BY user_id;`, RoleAdmin); err != nil {
		return nil, apperrors.NewDatabaseError("failed to list admins", err)
	}
	return ids, nil
}

// AddTask inserts a pending task and returns it with its id.
func (s *sqlxStore) AddTask(ctx context.Context, description, dueDate string, createdBy int64) (*Task, error) {
	if description == "" || dueDate == "" {
		return nil, apperrors.NewValidationError("task description and due date are required", nil)
	}

	task := &Task{Description: description, DueDate: dueDate, CreatedBy: createdBy}
	err := s.withTx(ctx, "add task", func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO tasks (description, due_date, created_by) VALUES (?, ?, ?);`,
			description, dueDate, createdBy)
		if err != nil {
			s.logger.ErrorContext(ctx, "Error adding task", "created_by", createdBy, "error", err)
			return apperrors.NewDatabaseError("failed to add task", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return apperrors.NewDatabaseError("failed to read task id", err)
		}
		task.TaskID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Task added", "task_id", task.TaskID, "due_date", dueDate, "created_by", createdBy)
	return task, nil
}

func (s *sqlxStore) execTask(ctx context.Context, op string, taskID int64, query string) error {
	return s.withTx(ctx, op, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query, taskID)
		if err != nil {
			s.logger.ErrorContext(ctx, "Error updating task", "op", op, "task_id", taskID, "error", err)
			return apperrors.NewDatabaseError(fmt.Sprintf("%s: task %d", op, taskID), err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return apperrors.NewDatabaseError(op+": failed to read affected rows", err)
		}
		if affected == 0 {
			return ErrTaskNotFound
		}
		return nil
	})
}

// DeleteTask removes a task.
func (s *sqlxStore) DeleteTask(ctx context.Context, taskID int64) error {
	return s.execTask(ctx, "delete task", taskID, `DELETE FROM tasks WHERE task_id = ?;`)
}

// CompleteTask marks a task as done. Completing a done task is not an error.
func (s *sqlxStore) CompleteTask(ctx context.Context, taskID int64) error {
	return s.execTask(ctx, "complete task", taskID, `UPDATE tasks SET completed = 1 WHERE task_id = ?;`)
}

// ListTasks returns all tasks ordered by due date.
func (s *sqlxStore) ListTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	err := s.db.SelectContext(ctx, &tasks, `
        SELECT task_id, description, due_date, completed, created_by, created_at
        FROM tasks ORDER BY due_date ASC, task_id ASC;`)
	if err != nil {
		return nil, apperrors.NewDatabaseError("failed to list tasks", err)
	}
	return tasks, nil
}

// ListPendingTasksDueOn returns incomplete tasks due on day.
func (s *sqlxStore) ListPendingTasksDueOn(ctx context.Context, day string) ([]Task, error) {
	var tasks []Task
	err := s.db.SelectContext(ctx, &tasks, `
        SELECT task_id, description, due_date, completed, created_by, created_at
        FROM tasks WHERE due_date = ? AND completed = 0 ORDER BY task_id ASC;`, day)
	if err != nil {
		return nil, apperrors.NewDatabaseError("failed to list tasks due on "+day, err)
	}
	return tasks, nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
// VACUUM cannot run inside a transaction.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return apperrors.NewDatabaseError("failed to execute VACUUM", err)
	default:
		s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	}

	return nil
}
