package database

import (
	"database/sql"
	"time"
)

// Roles stored in users.role.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// DefaultLocale is returned for users without a stored locale.
const DefaultLocale = "en"

// User is a row of the users table. Topic and DeliveryTime are NULL until
// the user subscribes and again after /stop.
type User struct {
	UserID       int64          `db:"user_id"`
	Role         string         `db:"role"`
	Topic        sql.NullString `db:"topic"`
	DeliveryTime sql.NullString `db:"delivery_time"`
	Locale       string         `db:"locale"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// Active reports whether both topic and delivery time are set.
func (u *User) Active() bool {
	return u.Topic.Valid && u.Topic.String != "" && u.DeliveryTime.Valid && u.DeliveryTime.String != ""
}

// Subscription is the projection the notification engine works on.
type Subscription struct {
	UserID       int64  `db:"user_id"`
	Topic        string `db:"topic"`
	DeliveryTime string `db:"delivery_time"`
	Locale       string `db:"locale"`
}

// Task is an entry of the shared task list.
type Task struct {
	TaskID      int64     `db:"task_id"`
	Description string    `db:"description"`
	DueDate     string    `db:"due_date"` // YYYY-MM-DD
	Completed   bool      `db:"completed"`
	CreatedBy   int64     `db:"created_by"`
	CreatedAt   time.Time `db:"created_at"`
}
