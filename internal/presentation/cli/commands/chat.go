package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/playground/internal/application/chat"
	domainProvider "github.com/jbctechsolutions/playground/internal/domain/provider"
	"github.com/jbctechsolutions/playground/internal/domain/session"
	"github.com/jbctechsolutions/playground/internal/presentation/cli/output"
)

// chatFlags holds the flags for the chat command.
type chatFlags struct {
	Model        string
	SessionID    string
	AgentID      string
	SystemPrompt string
	WebSearch    bool
}

var chatOpts chatFlags

// NewChatCmd creates the chat command for interactive REPL mode.
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat REPL",
		Long: `Start an interactive chat over a saved session.

Every message is stored with its token usage and estimated cost, and the
whole session history is sent with each new message.

Special commands:
  /exit, /quit          - Exit the chat session
  /help                 - Show help message
  /session              - Show current session info
  /stats                - Show session token totals
  /model <name>         - Switch to a different model
  /system <prompt>      - Replace the system prompt
  /temperature <value>  - Set the sampling temperature
  /search on|off        - Toggle web search
  /attach <path>        - Attach a file preview to the session
  /new                  - Start a new session with the same settings

Examples:
  # Start a new session with the default model
  playground chat

  # Resume a saved session
  playground chat --session 3f2c...

  # Continue an agent's current session
  playground chat --agent 9b1e...`,
		Args: cobra.NoArgs,
		RunE: runChat,
	}

	cmd.Flags().StringVarP(&chatOpts.Model, "model", "m", "", "model for a new session")
	cmd.Flags().StringVarP(&chatOpts.SessionID, "session", "s", "", "resume the session with this ID")
	cmd.Flags().StringVarP(&chatOpts.AgentID, "agent", "a", "", "continue the current session of this agent")
	cmd.Flags().StringVar(&chatOpts.SystemPrompt, "system", "", "system prompt for a new session")
	cmd.Flags().BoolVarP(&chatOpts.WebSearch, "web-search", "w", false, "enable web search for a new session")

	return cmd
}

// chatState is the mutable state of a REPL run.
type chatState struct {
	service   *chat.Service
	catalog   domainProvider.Catalog
	formatter *output.Formatter
	session   *session.Session
}

// runChat executes the interactive chat REPL.
func runChat(cmd *cobra.Command, args []string) error {
	container, err := requireContainer()
	if err != nil {
		return err
	}

	ctx := appContext()
	state := &chatState{
		service:   container.ChatService(),
		catalog:   container.Catalog(),
		formatter: GetFormatter(),
	}

	state.session, err = openChatSession(ctx, container.AgentService(), state.service)
	if err != nil {
		return err
	}

	formatter := state.formatter
	formatter.Header(fmt.Sprintf("Chat Session: %s", state.session.DisplayTitle()))
	formatter.Item("ID", state.session.ID)
	formatter.Item("Model", state.session.Params.Model)
	formatter.Println("")
	formatter.Info("Type your message and press Enter. Type /help for commands.")
	formatter.Println("")

	rl, err := readline.New("> ")
	if err != nil {
		return fmt.Errorf("could not create readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			break
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			shouldExit, err := state.handleCommand(ctx, line)
			if err != nil {
				formatter.Error("Command error: %s", err.Error())
				continue
			}
			if shouldExit {
				break
			}
			continue
		}

		res, err := state.service.SendMessage(ctx, state.session.ID, line)
		if err != nil {
			formatter.Error("Error: %s", err.Error())
			continue
		}
		state.session.Totals = res.Totals

		formatter.Println("")
		output.NewUsageRenderer(formatter).RenderReply(res.Result)
		formatter.Println("")
	}

	formatter.Info("Chat session ended. Goodbye!")
	return nil
}

// agentSessions is the part of the agent service the REPL needs.
type agentSessions interface {
	CurrentSession(ctx context.Context, agentID string) (*session.Session, error)
}

// openChatSession resumes the requested session or starts a new one.
func openChatSession(ctx context.Context, agents agentSessions, service *chat.Service) (*session.Session, error) {
	switch {
	case chatOpts.SessionID != "":
		return service.GetSession(ctx, chatOpts.SessionID)
	case chatOpts.AgentID != "":
		return agents.CurrentSession(ctx, chatOpts.AgentID)
	}

	settings := chat.Settings{}
	if chatOpts.SystemPrompt != "" {
		settings.SystemPrompt = &chatOpts.SystemPrompt
	}
	if chatOpts.WebSearch {
		settings.WebSearch = &chatOpts.WebSearch
	}
	return service.CreateSession(ctx, chatOpts.Model, settings)
}

// handleCommand handles special chat commands.
// Returns (shouldExit, error).
func (s *chatState) handleCommand(ctx context.Context, line string) (bool, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false, nil
	}

	f := s.formatter
	command := strings.ToLower(parts[0])
	rest := strings.TrimSpace(strings.TrimPrefix(line, parts[0]))

	switch command {
	case "/exit", "/quit":
		return true, nil

	case "/help":
		f.Header("Chat Commands")
		f.Item("/exit, /quit", "Exit the chat session")
		f.Item("/help", "Show this help message")
		f.Item("/session", "Show current session info")
		f.Item("/stats", "Show session token totals")
		f.Item("/model <name>", "Switch to a different model")
		f.Item("/system <prompt>", "Replace the system prompt")
		f.Item("/temperature <value>", "Set the sampling temperature")
		f.Item("/search on|off", "Toggle web search")
		f.Item("/attach <path>", "Attach a file preview to the session")
		f.Item("/new", "Start a new session with the same settings")
		f.Println("")
		return false, nil

	case "/session":
		f.Header("Session Info")
		f.Item("ID", s.session.ID)
		f.Item("Title", s.session.DisplayTitle())
		f.Item("Model", s.session.Params.Model)
		f.Item("Temperature", strconv.FormatFloat(s.session.Params.Temperature, 'f', -1, 64))
		f.Item("Web Search", strconv.FormatBool(s.session.Params.WebSearch))
		if s.session.SystemPrompt != "" {
			f.Item("System Prompt", s.session.SystemPrompt)
		}
		f.Println("")
		return false, nil

	case "/stats":
		totals, err := s.service.SessionStats(ctx, s.session.ID)
		if err != nil {
			return false, err
		}
		output.NewUsageRenderer(f).RenderTotals(totals)
		return false, nil

	case "/model":
		if rest == "" {
			return false, fmt.Errorf("usage: /model <model-name>")
		}
		if err := s.update(ctx, chat.Settings{Model: &rest}); err != nil {
			return false, err
		}
		f.Success("Switched to model: %s", s.session.Params.Model)
		if _, ok := s.catalog.Lookup(rest); !ok {
			f.Warning("%s is not in the model catalog; it will be routed by name", rest)
		}
		return false, nil

	case "/system":
		if err := s.update(ctx, chat.Settings{SystemPrompt: &rest}); err != nil {
			return false, err
		}
		f.Success("System prompt updated")
		return false, nil

	case "/temperature":
		value, err := strconv.ParseFloat(rest, 64)
		if err != nil {
			return false, fmt.Errorf("usage: /temperature <number>")
		}
		if err := s.update(ctx, chat.Settings{Temperature: &value}); err != nil {
			return false, err
		}
		f.Success("Temperature set to %v", value)
		return false, nil

	case "/search":
		var enabled bool
		switch strings.ToLower(rest) {
		case "on":
			enabled = true
		case "off":
		default:
			return false, fmt.Errorf("usage: /search on|off")
		}
		if err := s.update(ctx, chat.Settings{WebSearch: &enabled}); err != nil {
			return false, err
		}
		f.Success("Web search %s", strings.ToLower(rest))
		return false, nil

	case "/attach":
		if rest == "" {
			return false, fmt.Errorf("usage: /attach <path>")
		}
		preview, size, err := readFilePreview(rest)
		if err != nil {
			return false, err
		}
		file, err := s.service.AttachFile(ctx, s.session.ID, preview, size)
		if err != nil {
			return false, err
		}
		f.Success("Attached %s (%s, %d bytes)", file.Preview.Filename, file.Preview.Type, file.Size)
		return false, nil

	case "/new":
		prompt := s.session.SystemPrompt
		search := s.session.Params.WebSearch
		sess, err := s.service.CreateSession(ctx, s.session.Params.Model, chat.Settings{
			SystemPrompt: &prompt,
			WebSearch:    &search,
		})
		if err != nil {
			return false, err
		}
		s.session = sess
		f.Success("Started new session %s", sess.ID)
		return false, nil

	default:
		return false, fmt.Errorf("unknown command: %s (type /help)", command)
	}
}

func (s *chatState) update(ctx context.Context, settings chat.Settings) error {
	sess, err := s.service.UpdateSettings(ctx, s.session.ID, settings)
	if err != nil {
		return err
	}
	s.session = sess
	return nil
}
