package cli

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/magproject/mag/internal/conversation"
	"github.com/magproject/mag/internal/coordinator"
	"github.com/magproject/mag/internal/executor"
	"github.com/magproject/mag/internal/policy"
	"github.com/magproject/mag/internal/provider"
	"github.com/magproject/mag/internal/todo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedReader replays canned lines.
type scriptedReader struct {
	mu    sync.Mutex
	lines []string
}

func (r *scriptedReader) ReadLine(string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	next := r.lines[0]
	r.lines = r.lines[1:]
	return next, nil
}

func (r *scriptedReader) AddHistory(string) {}
func (r *scriptedReader) Close() error      { return nil }

// scriptedModel is a minimal coordinator.ModelClient.
type scriptedModel struct {
	reply        string
	providerName string
}

func (m *scriptedModel) Plan(string) (*provider.PlanCommand, error) {
	return nil, errors.New("no plan scripted")
}
func (m *scriptedModel) Chat(string) (string, error) { return m.reply, nil }
func (m *scriptedModel) ChatWithHistory([]conversation.Message) (string, error) {
	return m.reply, nil
}
func (m *scriptedModel) SetProvider(name, model string) error {
	m.providerName = name
	return nil
}
func (m *scriptedModel) Provider() string { return m.providerName }

type shellFixture struct {
	shell  *Shell
	model  *scriptedModel
	conv   *conversation.Manager
	out    *bytes.Buffer
	reader *scriptedReader
	todos  *todo.Manager
}

func newShellFixture(t *testing.T) *shellFixture {
	t.Helper()
	root := t.TempDir()
	t.Chdir(root)

	doc := policy.DefaultDocument()
	require.NoError(t, doc.Validate())
	engine := policy.NewEngine(doc, root)

	out := &bytes.Buffer{}
	console := NewConsoleWithWriter(out, false)
	reader := &scriptedReader{}
	model := &scriptedModel{providerName: provider.NameAnthropic}
	todos := todo.NewManager()
	conv := conversation.NewManager(root)

	coord := coordinator.New(
		model, engine, todos, executor.NewFileWriter(), executor.NewRunner(),
		NewUserInterface(console, reader), zap.NewNop(), coordinator.Options{},
	)
	shell := NewShell(coord, conv, console, reader, zap.NewNop(), root)
	return &shellFixture{shell: shell, model: model, conv: conv, out: out, reader: reader, todos: todos}
}

func TestProviderSwitchPreservesHistory(t *testing.T) {
	fx := newShellFixture(t)
	fx.model.reply = "first reply"

	fx.shell.HandleLine("tell me something")
	fx.model.reply = "second reply"
	fx.shell.HandleLine("and more")

	require.Equal(t, 4, fx.conv.MessageCount())

	fx.shell.HandleLine("/chatgpt")
	assert.Equal(t, provider.NameOpenAI, fx.model.providerName)
	// History survives the switch.
	assert.Equal(t, 4, fx.conv.MessageCount())

	fx.model.reply = "via openai"
	fx.shell.HandleLine("one more")

	history := fx.conv.History()
	require.Equal(t, 6, len(history))
	last := history[len(history)-1]
	assert.Equal(t, conversation.RoleAssistant, last.Role)
	assert.Equal(t, provider.NameOpenAI, last.Provider)
}

func TestChatTurnStoresReply(t *testing.T) {
	fx := newShellFixture(t)
	fx.model.reply = `ok! add_todo("Task", "desc")`

	fx.shell.HandleLine("queue a task")

	item, ok := fx.todos.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Task", item.Title)

	history := fx.conv.History()
	require.Equal(t, 2, len(history))
	assert.Contains(t, history[1].Content, "**Added:** Task")
}

func TestUnknownSlashCommand(t *testing.T) {
	fx := newShellFixture(t)
	fx.shell.HandleLine("/bogus")
	assert.Contains(t, fx.out.String(), "Unknown command: /bogus")
}

func TestTodoListDisplay(t *testing.T) {
	fx := newShellFixture(t)
	fx.todos.Add("visible task", "with details")
	fx.todos.Add("done task", "")
	fx.todos.MarkCompleted(2)

	fx.shell.HandleLine("/todo")

	out := fx.out.String()
	assert.Contains(t, out, "1: visible task")
	assert.Contains(t, out, "with details")
	assert.Contains(t, out, "2: done task")
}

func TestDoAllRunsBatch(t *testing.T) {
	fx := newShellFixture(t)
	fx.todos.Add("run echo batched", "")

	fx.shell.HandleLine("/do all")
	fx.shell.WaitForBatch()

	item, _ := fx.todos.Get(1)
	assert.Equal(t, todo.StatusCompleted, item.Status)
	assert.Contains(t, fx.out.String(), "Completed: run echo batched")
}

func TestDoUsageErrors(t *testing.T) {
	fx := newShellFixture(t)

	fx.shell.HandleLine("/do until")
	assert.Contains(t, fx.out.String(), "Usage: /do until <id>")

	fx.shell.HandleLine("/do wat")
	assert.Contains(t, fx.out.String(), "Usage: /do [all|next|until <id>|<start>-<end>|<id>]")
}

func TestSessionCommands(t *testing.T) {
	fx := newShellFixture(t)
	fx.model.reply = "hello there"
	fx.shell.HandleLine("say hi")

	old := fx.conv.SessionID()
	fx.shell.HandleLine("/session new")
	assert.NotEqual(t, old, fx.conv.SessionID())
	assert.Contains(t, fx.out.String(), "Started new conversation session")

	fx.shell.HandleLine("/session list")
	assert.Contains(t, fx.out.String(), old)

	fx.shell.HandleLine("/session load " + old)
	assert.Equal(t, old, fx.conv.SessionID())
	assert.Equal(t, 2, fx.conv.MessageCount())
}

func TestStatusShowsStateAndPaths(t *testing.T) {
	fx := newShellFixture(t)
	fx.shell.HandleLine("/status")

	out := fx.out.String()
	assert.Contains(t, out, "Provider: anthropic")
	assert.Contains(t, out, "Execution state: STOPPED")
	assert.Contains(t, out, "policy.json")
	assert.Contains(t, out, "debug.log")
}

func TestControlCommandsOutsideBatch(t *testing.T) {
	fx := newShellFixture(t)

	fx.shell.HandleLine("/pause")
	assert.Contains(t, fx.out.String(), "No execution in progress to pause.")
	fx.shell.HandleLine("/resume")
	assert.Contains(t, fx.out.String(), "No paused execution to resume.")
}

func TestRunLoopExitsOnEOF(t *testing.T) {
	fx := newShellFixture(t)
	fx.reader.lines = []string{"/help"}

	done := make(chan error, 1)
	go func() { done <- fx.shell.Run() }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("shell did not exit on EOF")
	}
	assert.Contains(t, fx.out.String(), "Available commands:")
	assert.Contains(t, fx.out.String(), "Goodbye!")
}

func TestRunLoopExit(t *testing.T) {
	fx := newShellFixture(t)
	fx.reader.lines = []string{"/exit"}

	require.NoError(t, fx.shell.Run())
	assert.False(t, strings.Contains(fx.out.String(), "Unknown command"))
}
