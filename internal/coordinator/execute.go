package coordinator

import (
	"fmt"
	"strings"

	"github.com/magproject/mag/internal/policy"
	"github.com/magproject/mag/internal/todo"
	"go.uber.org/zap"
)

// ExecuteAll drains the whole pending queue.
func (c *Coordinator) ExecuteAll() {
	c.executeBatch(c.todos.ExecutionQueue(), "Use /pause, /stop, or /cancel to control execution.")
}

// ExecuteNext executes only the next pending todo.
func (c *Coordinator) ExecuteNext() {
	item, ok := c.todos.NextPending()
	if !ok {
		c.ui.WriteMessage("No pending todos to execute.")
		return
	}
	c.executeBatch([]todo.Item{item}, "")
}

// ExecuteUntil executes the queue slice preceding stopID (exclusive).
func (c *Coordinator) ExecuteUntil(stopID int) {
	items := c.todos.Until(stopID)
	if len(items) == 0 {
		c.ui.WriteMessage(fmt.Sprintf("No todos to execute until ID %d.", stopID))
		return
	}
	c.executeBatch(items, "")
}

// ExecuteRange executes pending todos from startID through endID inclusive.
func (c *Coordinator) ExecuteRange(startID, endID int) {
	items := c.todos.Range(startID, endID)
	if len(items) == 0 {
		c.ui.WriteMessage(fmt.Sprintf("No todos found in range [%d, %d].", startID, endID))
		return
	}
	c.executeBatch(items, "")
}

// ExecuteByID executes one specific pending todo.
func (c *Coordinator) ExecuteByID(id int) {
	item, ok := c.todos.Get(id)
	if !ok || item.Status != todo.StatusPending {
		c.ui.WriteMessage(fmt.Sprintf("Todo ID %d not found or not pending.", id))
		return
	}
	c.executeBatch([]todo.Item{item}, "")
}

// executeBatch iterates a queue slice under the execution state machine.
// Between items it honors stop requests and waits out pauses. An item is
// completed only when its executor succeeded; a failed item stays
// in-progress so it is visible, and the batch stops, preserving the pending
// status of the remaining items.
func (c *Coordinator) executeBatch(items []todo.Item, controlHint string) {
	if len(items) == 0 {
		c.ui.WriteMessage("No pending todos to execute.")
		return
	}

	c.controls.begin()
	defer c.controls.finish()

	c.ui.WriteMessage(fmt.Sprintf("Executing %d todo(s)...", len(items)))
	if controlHint != "" {
		c.ui.WriteMessage("💡 " + controlHint)
	}

	for _, item := range items {
		if c.controls.shouldStop.Load() {
			c.ui.WriteMessage("Execution interrupted.")
			return
		}
		if !c.controls.waitWhilePaused() {
			c.ui.WriteMessage("Execution interrupted.")
			return
		}

		c.ui.WriteMessage(fmt.Sprintf("--- Executing: %s ---", item.Title))
		c.todos.MarkInProgress(item.ID)

		if err := c.executeItem(item); err != nil {
			c.ui.WriteMessage(fmt.Sprintf("❌ Failed: %s - %v", item.Title, err))
			c.log.Warn("todo failed", zap.Int("id", item.ID), zap.Error(err))
			return
		}

		c.todos.MarkCompleted(item.ID)
		c.ui.WriteMessage("✅ Completed: " + item.Title)
	}

	c.ui.WriteMessage("Todo execution complete!")
}

// executeItem routes one todo to the right executor based on its text.
func (c *Coordinator) executeItem(item todo.Item) error {
	prompt := item.Title
	if item.Description != "" {
		prompt += " - " + item.Description
	}

	if looksLikeCommand(prompt) {
		return c.executeItemAsCommand(prompt)
	}
	return c.executeItemAsFileOperation(prompt)
}

func (c *Coordinator) executeItemAsCommand(prompt string) error {
	command := extractCommand(prompt)
	if command == "" {
		return fmt.Errorf("could not determine command from: %s", prompt)
	}
	c.ui.WriteMessage("Command: " + command)

	if ok, reason := c.policy.CommandAllowed(command); !ok {
		return fmt.Errorf("policy violation: %s (command: %s)", reason, command)
	}

	result, err := c.runner.Execute(command, "", 0)
	if err != nil {
		return err
	}
	c.displayCommandResult(result.Stdout, result.Stderr, result.ExitCode, result.PwdAfter, result.Success)

	if !result.Success {
		if result.ErrorMessage != "" {
			return fmt.Errorf("%s", result.ErrorMessage)
		}
		return fmt.Errorf("command failed with exit code %d", result.ExitCode)
	}
	return nil
}

// executeItemAsFileOperation turns the todo text into a write-file plan.
// Chat mode is cleared for the model call and always restored.
func (c *Coordinator) executeItemAsFileOperation(prompt string) (err error) {
	originalChatMode := c.chatMode
	c.chatMode = false
	defer func() { c.chatMode = originalChatMode }()

	plan, planErr := c.model.Plan(prompt)
	if planErr != nil {
		return planErr
	}
	if plan.Path == "" {
		return fmt.Errorf("model did not provide a valid file path")
	}
	if !c.policy.Allowed(policy.ToolFile, policy.OpCreate, plan.Path) {
		return fmt.Errorf("policy violation: %s", plan.Path)
	}

	preview, dryErr := c.writer.DryRun(plan.Path, plan.Content)
	if dryErr != nil {
		return fmt.Errorf("dry run failed: %w", dryErr)
	}
	c.ui.WriteMessage("[DRY-RUN] " + preview)

	result := c.writer.Apply(plan.Path, plan.Content)
	if !result.Success {
		return fmt.Errorf("%s", result.ErrorMessage)
	}
	c.ui.WriteMessage(result.Description)
	return nil
}

// Pause, Resume, Stop, and Cancel are the asynchronous control surface.
// Each reports its effect with a single line; controls outside a valid
// source state are no-ops with a diagnostic.

func (c *Coordinator) Pause() {
	if c.controls.Pause() {
		c.ui.WriteMessage("⏸️  Execution paused. Use /resume to continue or /stop to stop completely.")
		return
	}
	c.ui.WriteMessage("No execution in progress to pause.")
}

func (c *Coordinator) Resume() {
	if c.controls.Resume() {
		c.ui.WriteMessage("▶️  Execution resumed.")
		return
	}
	c.ui.WriteMessage("No paused execution to resume.")
}

func (c *Coordinator) Stop() {
	if c.controls.Stop() {
		c.ui.WriteMessage("🛑 Execution stopped. Remaining todos are still pending.")
		return
	}
	c.ui.WriteMessage("No execution in progress to stop.")
}

func (c *Coordinator) Cancel() {
	if c.controls.Cancel() {
		c.ui.WriteMessage("❌ Execution cancelled. Remaining todos are still pending.")
		return
	}
	c.ui.WriteMessage("No execution in progress to cancel.")
}

// The interpreter.Runner hooks below let chat-mode execution calls reuse
// the same per-item flow, without the batch state machine.

// RunNextTodo implements interpreter.Runner.
func (c *Coordinator) RunNextTodo() (string, bool) {
	item, ok := c.todos.NextPending()
	if !ok {
		return "", false
	}
	return item.Title, c.runSingle(item)
}

// RunAllTodos implements interpreter.Runner.
func (c *Coordinator) RunAllTodos() int {
	count := 0
	for {
		item, ok := c.todos.NextPending()
		if !ok {
			return count
		}
		if !c.runSingle(item) {
			return count
		}
		count++
	}
}

// RunTodoByID implements interpreter.Runner.
func (c *Coordinator) RunTodoByID(id int) (string, bool) {
	item, ok := c.todos.Get(id)
	if !ok || item.Status != todo.StatusPending {
		return "", false
	}
	return item.Title, c.runSingle(item)
}

func (c *Coordinator) runSingle(item todo.Item) bool {
	c.todos.MarkInProgress(item.ID)
	if err := c.executeItem(item); err != nil {
		c.ui.WriteMessage(fmt.Sprintf("❌ Failed: %s - %v", item.Title, err))
		return false
	}
	c.todos.MarkCompleted(item.ID)
	return true
}

// looksLikeCommand classifies a todo as a shell command when its text
// contains any of a fixed set of imperative tokens.
var commandKeywords = []string{
	"run", "execute", "build", "compile", "make", "cmake", "npm", "yarn",
	"pip", "install", "test", "cd ", "ls", "pwd", "mkdir", "chmod", "grep",
	"find", "git ", "docker", "curl", "wget", "tar", "unzip", "export",
}

func looksLikeCommand(prompt string) bool {
	lower := strings.ToLower(prompt)
	for _, keyword := range commandKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
