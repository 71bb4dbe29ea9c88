package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler represents a command handler with its description and middleware.
// Handlers with an empty Description are not listed in the command menu.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
	Description string
}

func command(pattern, description string, handler tgbot.HandlerFunc, mw ...tgbot.Middleware) RegisteredHandler {
	return RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     pattern,
		Handler:     handler,
		Middleware:  mw,
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Description: description,
	}
}

// RegisterAllCommands initializes and returns a map of all available bot commands.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	subscribe := NewSubscribeHandler(deps)
	now := NewNowHandler(deps)

	handlers["/start"] = command("start", "Register and show the welcome message", NewStartHandler(deps))
	handlers["/help"] = command("help", "List commands", NewHelpHandler(deps))
	handlers["/lang"] = command("lang", "Change language", NewLangHandler(deps))
	handlers["/subscribe"] = command("subscribe", "Daily digest: /subscribe <topic> <HH:MM>", subscribe)
	handlers["/time"] = command("time", "", subscribe)
	handlers["/stop"] = command("stop", "Cancel the daily digest", NewStopHandler(deps))
	handlers["/me"] = command("me", "Show your subscription", NewMeHandler(deps))
	handlers["/now"] = command("now", "Fetch content right now", now)
	handlers["/weather"] = command("weather", "", now)
	handlers["/news"] = command("news", "", now)
	handlers["/ask"] = command("ask", "Ask the assistant", NewAskHandler(deps))
	handlers["/tasks"] = command("tasks", "View all tasks", NewTasksHandler(deps))

	adminMiddleware := []tgbot.Middleware{AdminOnly(deps)}

	handlers["/addtask"] = command("addtask", "Add a task (admins)", NewAddTaskHandler(deps), adminMiddleware...)
	handlers["/deltask"] = command("deltask", "Delete a task (admins)", NewDeleteTaskHandler(deps), adminMiddleware...)
	handlers["done"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     doneCallbackPrefix,
		Handler:     NewDoneCallbackHandler(deps),
		Middleware:  adminMiddleware,
		MatchType:   tgbot.MatchTypePrefix,
	}

	return handlers
}
