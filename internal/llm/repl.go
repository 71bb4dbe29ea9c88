package llm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Conversation keeps the message history of a multi-turn chat.
type Conversation struct {
	client  Client
	history []Message
}

// NewConversation starts an empty conversation.
func NewConversation(client Client) *Conversation {
	return &Conversation{client: client}
}

// Send appends text as a user turn and returns the reply. On failure the user
// turn is dropped so the history stays well-formed.
func (c *Conversation) Send(ctx context.Context, text string) (string, error) {
	c.history = append(c.history, Message{Role: RoleUser, Content: text})

	answer, err := c.client.Chat(ctx, c.history)
	if err != nil {
		c.history = c.history[:len(c.history)-1]
		return "", err
	}

	c.history = append(c.history, Message{Role: RoleAssistant, Content: answer})
	return answer, nil
}

// History returns a copy of the turns so far.
func (c *Conversation) History() []Message {
	return append([]Message(nil), c.history...)
}

// RunREPL reads lines from in until EOF, "exit" or "quit" and prints the
// replies to out. Failed requests are reported and the loop continues.
func RunREPL(ctx context.Context, client Client, in io.Reader, out io.Writer) error {
	conv := NewConversation(client)
	scanner := bufio.NewScanner(in)

	_, _ = fmt.Fprint(out, "🦙 Chat (type 'exit' to quit)\n\n")
	for {
		_, _ = fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			_, _ = fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		answer, err := conv.Send(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			_, _ = fmt.Fprintf(out, "\nError: %v\n\n", err)
			continue
		}
		_, _ = fmt.Fprintf(out, "\nAssistant: %s\n\n", answer)
	}
}
