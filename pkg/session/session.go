// Package session runs the interactive prompt/response loop.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/minhyannv/magnusliber-go/pkg/chat"
	loggerpkg "github.com/minhyannv/magnusliber-go/pkg/logger"
	"github.com/minhyannv/magnusliber-go/pkg/prompt"
	"github.com/minhyannv/magnusliber-go/pkg/render"
)

// Action is what the loop does with one line of input.
type Action int

const (
	ActionQuery Action = iota
	ActionEmpty
	ActionExit
	ActionClear
	ActionHelp
)

// ExitKeywords end the session. Matching is exact and case-sensitive.
var ExitKeywords = []string{"exit", "quit"}

// Classify decides how a trimmed line of input is handled.
func Classify(input string) Action {
	switch input {
	case "":
		return ActionEmpty
	case "/clear":
		return ActionClear
	case "/help":
		return ActionHelp
	}
	for _, kw := range ExitKeywords {
		if input == kw {
			return ActionExit
		}
	}
	return ActionQuery
}

// Options configures a Session.
type Options struct {
	SystemMessage string
	UI            prompt.UIStrings
	Renderer      render.Renderer
	Logger        loggerpkg.Logger
	Verbose       bool
}

// Session owns one conversation with the model.
type Session struct {
	id        string
	completer chat.Completer
	history   *chat.History
	system    chat.Message
	ui        prompt.UIStrings
	renderer  render.Renderer

	logger  loggerpkg.Logger
	verbose bool
}

// New builds a session around a completer and a caller-owned history.
func New(completer chat.Completer, history *chat.History, opts Options) (*Session, error) {
	if completer == nil {
		return nil, errors.New("completer is required")
	}
	if history == nil {
		return nil, errors.New("history is required")
	}
	if strings.TrimSpace(opts.SystemMessage) == "" {
		return nil, errors.New("system message is empty")
	}
	if opts.Renderer == nil {
		opts.Renderer = render.Plain{}
	}
	if opts.Logger == nil {
		opts.Logger = loggerpkg.NopLogger{}
	}

	id := uuid.NewString()
	return &Session{
		id:        id,
		completer: completer,
		history:   history,
		system:    chat.SystemMessage(opts.SystemMessage),
		ui:        opts.UI,
		renderer:  opts.Renderer,
		logger:    loggerpkg.WithFields(opts.Logger, map[string]any{"session_id": id}),
		verbose:   opts.Verbose,
	}, nil
}

// ID returns the session identifier used in log entries.
func (s *Session) ID() string {
	return s.id
}

// Run reads lines from in until an exit keyword or end of input.
// Any failed turn stops the loop and its error is returned; the history
// is left as it was before that turn.
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	if in == nil {
		return errors.New("input reader is required")
	}
	if out == nil {
		out = io.Discard
	}
	if ctx == nil {
		ctx = context.Background()
	}

	loggerpkg.Debug(s.verbose, s.logger, "session start", map[string]any{
		"history_limit": s.history.Limit(),
	})

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	_, _ = fmt.Fprintln(out, s.ui.Greeting)

	for {
		_, _ = fmt.Fprintln(out, s.ui.Prompt)
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		switch Classify(input) {
		case ActionEmpty:
			_, _ = fmt.Fprintln(out, s.ui.EmptyInput)
		case ActionExit:
			_, _ = fmt.Fprintln(out, s.ui.Exit)
			loggerpkg.Debug(s.verbose, s.logger, "session stopped", map[string]any{"reason": "exit keyword"})
			return nil
		case ActionClear:
			s.history.Clear()
			_, _ = fmt.Fprintln(out, "Conversation history cleared.")
			_, _ = fmt.Fprintln(out)
		case ActionHelp:
			printHelp(out)
		default:
			if err := s.Turn(ctx, input, out); err != nil {
				return err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	_, _ = fmt.Fprintln(out, s.ui.Exit)
	loggerpkg.Debug(s.verbose, s.logger, "session stopped", map[string]any{"reason": "end of input"})
	return nil
}

// Turn sends one query, prints the reply and records the exchange.
func (s *Session) Turn(ctx context.Context, input string, out io.Writer) error {
	user := chat.UserMessage(input)
	conversation := chat.BuildConversation(s.system, s.history, user)

	loggerpkg.Debug(s.verbose, s.logger, "turn start", map[string]any{
		"input_bytes": len(input),
		"history":     s.history.Len(),
		"messages":    len(conversation),
	})
	reply, err := s.completer.Complete(ctx, conversation)
	if err != nil {
		loggerpkg.Debug(s.verbose, s.logger, "turn failed", map[string]any{"error": err.Error()})
		return err
	}

	text, err := s.renderer.Render(reply.Content)
	if err != nil {
		loggerpkg.Debug(s.verbose, s.logger, "render failed, printing raw reply", map[string]any{"error": err.Error()})
		text = reply.Content
	}
	_, _ = fmt.Fprintf(out, "%s\n\n", text)

	s.history.AppendTurn(user, chat.AssistantMessage(reply.Content))
	loggerpkg.Debug(s.verbose, s.logger, "turn complete", map[string]any{
		"reply_bytes": len(reply.Content),
		"history":     s.history.Len(),
	})
	return nil
}

func printHelp(out io.Writer) {
	_, _ = fmt.Fprintln(out, "Commands:")
	_, _ = fmt.Fprintln(out, "  /help  - Show this help message")
	_, _ = fmt.Fprintln(out, "  /clear - Clear conversation history")
	_, _ = fmt.Fprintln(out, "  quit   - Exit the program")
	_, _ = fmt.Fprintln(out, "  exit   - Exit the program")
	_, _ = fmt.Fprintln(out)
}
