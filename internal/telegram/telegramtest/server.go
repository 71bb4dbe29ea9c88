// Package telegramtest provides a fake Telegram Bot API for tests.
package telegramtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/stretchr/testify/require"
)

// Token is the bot token used by Bot.
const Token = "123456:test-token"

// Call is one recorded Bot API request.
type Call struct {
	Method string
	Params map[string]string
}

type failure struct {
	code        int
	description string
}

// Server records Bot API calls and answers them with canned results.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	calls    []Call
	failures map[string]failure
	nextID   int
}

// NewServer starts a fake API that is closed when the test ends.
func NewServer(t *testing.T) *Server {
	t.Helper()

	s := &Server{failures: make(map[string]failure)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Bot returns a client talking to the fake API.
func (s *Server) Bot(t *testing.T) *bot.Bot {
	t.Helper()

	b, err := bot.New(Token, bot.WithServerURL(s.URL), bot.WithSkipGetMe())
	require.NoError(t, err)
	return b
}

// Fail makes every later call of method return the given Telegram error.
func (s *Server) Fail(method string, code int, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = failure{code: code, description: description}
}

// Calls returns the recorded calls of method, or all calls when method is empty.
func (s *Server) Calls(method string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Call
	for _, c := range s.calls {
		if method == "" || c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Texts returns the text parameter of every sendMessage call.
func (s *Server) Texts() []string {
	var texts []string
	for _, c := range s.Calls("sendMessage") {
		texts = append(texts, c.Params["text"])
	}
	return texts
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

	params := make(map[string]string)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		_ = r.ParseForm()
	}
	for key, values := range r.Form {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	s.mu.Lock()
	s.calls = append(s.calls, Call{Method: method, Params: params})
	fail, failing := s.failures[method]
	s.nextID++
	id := s.nextID
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if failing {
		w.WriteHeader(fail.code)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":          false,
			"error_code":  fail.code,
			"description": fail.description,
		})
		return
	}

	var result any = true
	switch method {
	case "sendMessage", "editMessageText":
		chatID, _ := strconv.ParseInt(params["chat_id"], 10, 64)
		result = map[string]any{
			"message_id": id,
			"date":       0,
			"chat":       map[string]any{"id": chatID, "type": "private"},
			"text":       params["text"],
		}
	case "getMe":
		result = map[string]any{"id": 1, "is_bot": true, "first_name": "dailybot", "username": "daily_test_bot"}
	}

	_, _ = fmt.Fprint(w, mustJSON(map[string]any{"ok": true, "result": result}))
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
