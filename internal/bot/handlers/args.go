package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/edgard/dailybot/internal/notify"
)

// DateLayout is the due date format of tasks.
const DateLayout = "2006-01-02"

var (
	errUsage       = errors.New("missing arguments")
	errInvalidDate = errors.New("invalid date")
)

// commandArgs splits a command message and drops the command itself
// ("/subscribe@bot New York 08:00" -> ["New", "York", "08:00"]).
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	return fields[1:]
}

// parseSubscribeArgs treats the last argument as the delivery time and the
// rest as the topic. The returned time is canonical HH:MM.
func parseSubscribeArgs(args []string) (topic, deliveryTime string, err error) {
	if len(args) < 2 {
		return "", "", errUsage
	}
	deliveryTime, err = notify.ParseDeliveryTime(args[len(args)-1])
	if err != nil {
		return "", "", err
	}
	return strings.Join(args[:len(args)-1], " "), deliveryTime, nil
}

// parseAddTaskArgs treats the last argument as the YYYY-MM-DD due date and
// the rest as the description.
func parseAddTaskArgs(args []string) (description, dueDate string, err error) {
	if len(args) < 2 {
		return "", "", errUsage
	}
	due, err := time.Parse(DateLayout, args[len(args)-1])
	if err != nil {
		return "", "", errInvalidDate
	}
	return strings.Join(args[:len(args)-1], " "), due.Format(DateLayout), nil
}

func parseTaskID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, errUsage
	}
	return id, nil
}
