// Package cli holds the boundary adapters around the coordinator: the
// interactive shell, the line reader contract, console rendering, and the
// operator debug log.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/magproject/mag/internal/conversation"
	"github.com/magproject/mag/internal/coordinator"
	"github.com/magproject/mag/internal/policy"
	"go.uber.org/zap"
)

const version = "1.0.0"

// Shell is the interactive command loop. It owns the conversation manager
// and relays everything else to the coordinator. Todo batches run on a
// helper goroutine so control commands stay deliverable; the coordinator
// observes them at its checkpoints.
type Shell struct {
	coord   *coordinator.Coordinator
	conv    *conversation.Manager
	console *Console
	reader  LineReader
	log     *zap.Logger
	root    string

	running      bool
	batchRunning atomic.Bool
	batchWG      sync.WaitGroup
}

// NewShell wires a Shell.
func NewShell(coord *coordinator.Coordinator, conv *conversation.Manager, console *Console, reader LineReader, log *zap.Logger, workspaceRoot string) *Shell {
	return &Shell{
		coord:   coord,
		conv:    conv,
		console: console,
		reader:  reader,
		log:     log,
		root:    workspaceRoot,
	}
}

// Run drives the shell until /exit or EOF.
func (s *Shell) Run() error {
	s.showWelcome()
	s.running = true

	for s.running {
		line, err := s.reader.ReadLine(s.console.Prompt())
		if err != nil {
			if err == io.EOF {
				s.console.Print("\nGoodbye!")
				break
			}
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		s.reader.AddHistory(line)
		s.handleLine(line)
	}

	s.batchWG.Wait()
	if err := s.conv.Save(); err != nil {
		s.console.Warn("Warning: failed to save conversation: " + err.Error())
	}
	return s.reader.Close()
}

// HandleLine processes one input line; exported for tests.
func (s *Shell) HandleLine(line string) { s.handleLine(line) }

// WaitForBatch blocks until any running todo batch finishes.
func (s *Shell) WaitForBatch() { s.batchWG.Wait() }

func (s *Shell) handleLine(line string) {
	if strings.HasPrefix(line, "/") {
		s.handleSlash(strings.TrimPrefix(line, "/"))
		return
	}

	if s.batchRunning.Load() {
		s.console.Warn("Todo execution in progress. Use /pause, /resume, /stop, or /cancel.")
		return
	}

	s.console.Info("Processing: " + line)
	s.log.Info("user turn", zap.Int("history", s.conv.MessageCount()))

	s.conv.AddUserMessage(line)
	reply, err := s.coord.Run(line, s.conv.History())
	if err != nil {
		s.console.Error("Error: " + err.Error())
		return
	}
	if reply != "" {
		s.conv.AddAssistantMessage(reply, s.coord.Provider())
	}
}

func (s *Shell) handleSlash(command string) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return
	}
	name, args := fields[0], fields[1:]
	s.log.Debug("slash command", zap.String("command", command))

	switch name {
	case "help", "h":
		s.showHelp()
	case "status":
		s.showStatus()
	case "debug":
		s.showDebug()
	case "todo":
		s.showTodoList()
	case "do":
		s.handleDo(args)
	case "pause":
		s.coord.Pause()
	case "resume":
		s.coord.Resume()
	case "stop":
		s.coord.Stop()
	case "cancel":
		s.coord.Cancel()
	case "history":
		s.showHistory()
	case "session":
		s.handleSession(args)
	case "gemini", "claude", "chatgpt", "mistral":
		s.switchProvider(name)
	case "exit", "quit", "q":
		s.running = false
	default:
		s.console.Warn("Unknown command: /" + name)
		s.console.Print("Type '/help' for available commands.")
	}
}

// handleDo parses /do [all|next|until <id>|<start>-<end>|<id>] and runs the
// selected batch on a helper goroutine so the loop keeps accepting control
// commands.
func (s *Shell) handleDo(args []string) {
	if s.batchRunning.Load() {
		s.console.Warn("Todo execution already in progress.")
		return
	}

	var run func()
	switch {
	case len(args) == 0 || args[0] == "all":
		run = s.coord.ExecuteAll
	case args[0] == "next":
		run = s.coord.ExecuteNext
	case args[0] == "until":
		if len(args) < 2 {
			s.console.Warn("Usage: /do until <id>")
			return
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			s.console.Warn("Usage: /do until <id>")
			return
		}
		run = func() { s.coord.ExecuteUntil(id) }
	case strings.Contains(args[0], "-"):
		parts := strings.SplitN(args[0], "-", 2)
		start, err1 := strconv.Atoi(parts[0])
		end, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			s.console.Warn("Usage: /do [all|next|until <id>|<start>-<end>|<id>]")
			return
		}
		run = func() { s.coord.ExecuteRange(start, end) }
	default:
		id, err := strconv.Atoi(args[0])
		if err != nil {
			s.console.Warn("Usage: /do [all|next|until <id>|<start>-<end>|<id>]")
			return
		}
		run = func() { s.coord.ExecuteByID(id) }
	}

	s.batchRunning.Store(true)
	s.batchWG.Add(1)
	go func() {
		defer s.batchWG.Done()
		defer s.batchRunning.Store(false)
		run()
	}()
}

func (s *Shell) switchProvider(friendly string) {
	if err := s.conv.Save(); err != nil {
		s.console.Warn("Warning: failed to save conversation: " + err.Error())
	}
	if err := s.coord.SetProvider(friendly); err != nil {
		s.console.Error("Error switching provider: " + err.Error())
		return
	}
	if !s.conv.IsEmpty() {
		s.console.Printf("(maintaining conversation context with %d messages)", s.conv.MessageCount())
	}
}

func (s *Shell) handleSession(args []string) {
	switch {
	case len(args) == 0 || args[0] == "list":
		sessions := s.conv.Sessions()
		s.console.Info("=== Available Conversation Sessions ===")
		if len(sessions) == 0 {
			s.console.Warn("No saved sessions found.")
			return
		}
		for i, id := range sessions {
			if i >= 10 {
				s.console.Printf("  ... and %d more", len(sessions)-10)
				break
			}
			marker := ""
			if id == s.conv.SessionID() {
				marker = " (current)"
			}
			s.console.Printf("  %d. %s%s", i+1, id, marker)
		}
	case args[0] == "new":
		if err := s.conv.StartNewSession(); err != nil {
			s.console.Error("Session error: " + err.Error())
			return
		}
		s.console.Success("Started new conversation session: " + s.conv.SessionID())
	case args[0] == "load":
		if len(args) < 2 {
			s.console.Warn("Usage: /session load <session_id>")
			return
		}
		if err := s.conv.LoadSession(args[1]); err != nil {
			s.console.Error("Failed to load session: " + err.Error())
			return
		}
		s.console.Success(fmt.Sprintf("Loaded session: %s (%d messages)", args[1], s.conv.MessageCount()))
	default:
		s.console.Warn("Usage: /session [list|new|load <id>]")
	}
}

func (s *Shell) showWelcome() {
	s.console.Info("mag v" + version + " - AI-mediated command execution assistant")
	s.console.Success("Chat mode enabled with todo tool integration")
	s.console.Print("Type '/help' for commands, '/exit' to quit.")
	s.console.Print("")
}

func (s *Shell) showHelp() {
	s.console.Print(`
Available commands:
  /gemini, /claude, /chatgpt, /mistral  - Switch model provider
  /status                               - Show system status
  /debug                                - Show debug information
  /todo                                 - Show todo list
  /do [all|next|until <id>|<start>-<end>|<id>]  - Execute todos
  /pause                                - Pause execution
  /resume                               - Resume paused execution
  /stop                                 - Stop execution
  /cancel                               - Cancel execution
  /history                              - Show conversation history
  /session [list|new|load <id>]         - Manage conversation sessions
  /help, /h                             - Show this help
  /exit, /quit, /q                      - Exit

Or just type your request naturally:
  "create a hello world Python script"
  "add unit tests for the calculator"`)
}

func (s *Shell) showStatus() {
	mode := "plan"
	if s.coord.ChatMode() {
		mode = "chat with todo tool integration"
	}
	s.console.Info("=== System Status ===")
	s.console.Print("Mode: " + mode)
	s.console.Print("Provider: " + s.coord.Provider())
	s.console.Print("Execution state: " + string(s.coord.State()))
	s.console.Print("Session: " + s.conv.SessionID())
	s.console.Print("Policy: " + policy.FilePath(s.root))
	s.console.Print("Debug log: " + filepath.Join(s.root, ".mag", "debug.log"))
	s.console.Print("History: " + filepath.Join(s.root, ".mag", "history"))
}

func (s *Shell) showDebug() {
	s.console.Info("=== Debug Information ===")
	logPath := filepath.Join(s.root, ".mag", "debug.log")
	s.console.Print("Debug log: " + logPath)
	s.console.Print("Policy file: " + policy.FilePath(s.root))

	data, err := os.ReadFile(logPath)
	if err != nil {
		s.console.Warn("No debug log found.")
		return
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	s.console.Print("Recent debug log entries:")
	for _, line := range lines {
		s.console.Print("  " + line)
	}
}

func (s *Shell) showTodoList() {
	items := s.coord.Todos().List(true)
	s.console.Info("=== Todo List ===")
	if len(items) == 0 {
		s.console.Print("No todos yet.")
		return
	}
	for _, item := range items {
		var icon string
		switch item.Status {
		case "in_progress":
			icon = "🔄"
		case "completed":
			icon = "✅"
		default:
			icon = "⏳"
		}
		s.console.Printf("%s %d: %s", icon, item.ID, item.Title)
		if item.Description != "" {
			s.console.Print("   " + item.Description)
		}
	}
}

func (s *Shell) showHistory() {
	history := s.conv.History()
	if len(history) == 0 {
		s.console.Warn("No conversation history available.")
		return
	}

	s.console.Info("=== Conversation History === (Session: " + s.conv.SessionID() + ")")
	for _, msg := range history {
		label := string(msg.Role)
		if msg.Role == conversation.RoleAssistant && msg.Provider != "" {
			label += " (" + msg.Provider + ")"
		}
		s.console.Printf("%s: %s", label, msg.Content)
		s.console.Print("  " + msg.Timestamp.Format("2006-01-02T15:04:05Z07:00"))
	}
	s.console.Printf("Total messages: %d", len(history))
}
