package coordinator

import (
	"time"

	"github.com/magproject/mag/internal/conversation"
	"github.com/magproject/mag/internal/executor"
	"github.com/magproject/mag/internal/provider"
)

// ModelClient is the slice of the llm client the coordinator depends on.
type ModelClient interface {
	Plan(userText string) (*provider.PlanCommand, error)
	Chat(userText string) (string, error)
	ChatWithHistory(history []conversation.Message) (string, error)
	SetProvider(name, model string) error
	Provider() string
}

// FileWriter previews and applies write-file operations.
type FileWriter interface {
	DryRun(path, content string) (string, error)
	Apply(path, content string) executor.ApplyResult
}

// CommandRunner executes shell commands with a persistent working
// directory.
type CommandRunner interface {
	Execute(command, workingDir string, timeout time.Duration) (*executor.CommandResult, error)
	Cwd() string
}

// UserInterface is the display and confirmation surface the coordinator
// talks to. The confirmation prompt blocks indefinitely.
type UserInterface interface {
	WriteMessage(text string)
	ReadConfirmation(prompt string) (string, error)
}
