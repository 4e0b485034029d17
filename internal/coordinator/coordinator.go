// Package coordinator binds the model client, policy engine, todo store,
// and executors together: it owns the execution state machine, routes
// operations to the right executor, and implements confirmation and
// pause/resume/stop/cancel control.
package coordinator

import (
	"fmt"

	"github.com/magproject/mag/internal/conversation"
	"github.com/magproject/mag/internal/interpreter"
	"github.com/magproject/mag/internal/policy"
	"github.com/magproject/mag/internal/provider"
	"github.com/magproject/mag/internal/todo"
	"go.uber.org/zap"
)

// Coordinator exclusively owns the todo store, the policy engine handle,
// and the model client handle. Executors are stateless singletons it routes
// work through.
type Coordinator struct {
	model  ModelClient
	policy *policy.Engine
	todos  *todo.Manager
	writer FileWriter
	runner CommandRunner
	ui     UserInterface
	interp *interpreter.Interpreter
	log    *zap.Logger

	chatMode      bool
	alwaysApprove bool
	controls      *controls
}

// Options toggles optional coordinator behavior.
type Options struct {
	// Autonomous lets interpreter execution calls (execute_next() and
	// friends) drive real execution.
	Autonomous bool
}

// New wires a Coordinator. Chat mode starts enabled.
func New(model ModelClient, engine *policy.Engine, todos *todo.Manager, writer FileWriter, runner CommandRunner, ui UserInterface, log *zap.Logger, opts Options) *Coordinator {
	c := &Coordinator{
		model:    model,
		policy:   engine,
		todos:    todos,
		writer:   writer,
		runner:   runner,
		ui:       ui,
		log:      log,
		chatMode: true,
		controls: newControls(),
	}
	var runnerHook interpreter.Runner
	if opts.Autonomous {
		runnerHook = c
	}
	c.interp = interpreter.New(todos, runnerHook)
	return c
}

// Todos exposes the todo store for display surfaces.
func (c *Coordinator) Todos() *todo.Manager { return c.todos }

// State returns the execution state.
func (c *Coordinator) State() ExecutionState { return c.controls.State() }

// Provider returns the current adapter's internal name.
func (c *Coordinator) Provider() string { return c.model.Provider() }

// ChatMode reports whether chat mode is on.
func (c *Coordinator) ChatMode() bool { return c.chatMode }

// SetChatMode toggles between chat and plan mode.
func (c *Coordinator) SetChatMode(enabled bool) { c.chatMode = enabled }

// friendlyNames maps user-facing provider names to internal adapter names.
var friendlyNames = map[string]string{
	"claude":  provider.NameAnthropic,
	"chatgpt": provider.NameOpenAI,
	"gemini":  provider.NameGemini,
	"mistral": provider.NameMistral,
}

// InternalProviderName resolves a friendly provider name; unknown names
// pass through unchanged.
func InternalProviderName(friendly string) string {
	if internal, ok := friendlyNames[friendly]; ok {
		return internal
	}
	return friendly
}

// SetProvider switches the model client to the named provider. Switching is
// permitted mid-session; conversation history is preserved by the caller.
func (c *Coordinator) SetProvider(friendlyName string) error {
	if err := c.model.SetProvider(InternalProviderName(friendlyName), ""); err != nil {
		return err
	}
	c.ui.WriteMessage("Switched to provider: " + friendlyName)
	return nil
}

// Run processes one user turn. In chat mode the reply is interpreted and
// returned for storage by the caller; in plan mode the plan is validated,
// previewed, confirmed, and applied, and the returned string is empty.
func (c *Coordinator) Run(userText string, history []conversation.Message) (string, error) {
	if c.chatMode {
		return c.runChat(userText, history)
	}
	c.runPlan(userText)
	return "", nil
}

func (c *Coordinator) runChat(userText string, history []conversation.Message) (string, error) {
	var reply string
	var err error
	if len(history) > 0 {
		reply, err = c.model.ChatWithHistory(history)
	} else {
		reply, err = c.model.Chat(userText)
	}
	if err != nil {
		return "", err
	}

	res := c.interp.Process(reply)
	c.ui.WriteMessage(res.Text)
	if res.ApprovalRequested {
		c.log.Info("model requested user approval")
	}

	if res.Ops > 0 {
		if pending := c.todos.CountPending(); pending > 0 {
			c.ui.WriteMessage(fmt.Sprintf(
				"💡 Suggestion: You have %d pending todo(s). Use '/do next' to execute the next one, or '/do all' to execute all pending todos.",
				pending))
		}
	}

	return res.Text, nil
}

// runPlan drives the plan-mode flow: plan, validate, policy, dry-run,
// confirm, apply. Every failure path produces exactly one status line.
func (c *Coordinator) runPlan(userText string) {
	plan, err := c.model.Plan(userText)
	if err != nil {
		if _, ok := err.(*provider.ParseError); ok {
			c.ui.WriteMessage("Error: model returned an unparseable plan: " + err.Error())
			return
		}
		c.ui.WriteMessage("Error: " + err.Error())
		return
	}

	c.log.Info("model proposed plan",
		zap.String("command", plan.Command),
		zap.String("path", plan.Path),
		zap.String("bash_command", plan.BashCommand))

	switch {
	case plan.IsWriteFile():
		c.applyWritePlan(plan)
	case plan.IsBashCommand():
		c.applyCommandPlan(plan)
	default:
		c.ui.WriteMessage("Error: model returned unsupported command: " + plan.Command)
	}
}

func (c *Coordinator) applyWritePlan(plan *provider.PlanCommand) {
	if plan.Path == "" {
		c.ui.WriteMessage("Error: model returned empty file path. Please try rephrasing your request.")
		return
	}
	if !c.policy.Allowed(policy.ToolFile, policy.OpCreate, plan.Path) {
		c.ui.WriteMessage(fmt.Sprintf("Policy Denied: file path '%s' is not allowed.", plan.Path))
		return
	}

	preview, err := c.writer.DryRun(plan.Path, plan.Content)
	if err != nil {
		c.ui.WriteMessage("Dry run failed: " + err.Error())
		return
	}
	c.ui.WriteMessage(preview)

	if !c.alwaysApprove && !c.confirm() {
		c.ui.WriteMessage("Operation cancelled by user.")
		return
	}

	result := c.writer.Apply(plan.Path, plan.Content)
	if !result.Success {
		c.ui.WriteMessage("Error: " + result.ErrorMessage)
		return
	}
	c.ui.WriteMessage(result.Description)
	if result.Context.WorkingDirAfter != "" {
		c.ui.WriteMessage("📍 Working directory: " + result.Context.WorkingDirAfter)
	}
}

func (c *Coordinator) applyCommandPlan(plan *provider.PlanCommand) {
	if plan.BashCommand == "" {
		c.ui.WriteMessage("Error: model returned an empty command.")
		return
	}
	if ok, reason := c.policy.CommandAllowed(plan.BashCommand); !ok {
		c.ui.WriteMessage(fmt.Sprintf("Policy Denied: %s (command: %s)", reason, plan.BashCommand))
		return
	}

	if !c.alwaysApprove {
		c.ui.WriteMessage(fmt.Sprintf("will run command '%s' (%s)", plan.BashCommand, plan.Summary()))
		if !c.confirm() {
			c.ui.WriteMessage("Operation cancelled by user.")
			return
		}
	}

	result, err := c.runner.Execute(plan.BashCommand, "", 0)
	if err != nil {
		c.ui.WriteMessage("Error: " + err.Error())
		return
	}
	c.displayCommandResult(result.Stdout, result.Stderr, result.ExitCode, result.PwdAfter, result.Success)
}

// confirm asks the three-way question. 'a' enables always-approve and
// confirms; 'y' confirms once; anything else cancels.
func (c *Coordinator) confirm() bool {
	input, err := c.ui.ReadConfirmation("Apply this change? [y)es/n)o/a)lways]: ")
	if err != nil || input == "" {
		return false
	}
	switch input[0] {
	case 'a', 'A':
		c.alwaysApprove = true
		c.ui.WriteMessage("Always approve mode enabled. Future changes will be applied automatically.")
		return true
	case 'y', 'Y':
		return true
	default:
		return false
	}
}

func (c *Coordinator) displayCommandResult(stdout, stderr string, exitCode int, pwdAfter string, success bool) {
	if success {
		c.ui.WriteMessage(fmt.Sprintf("✅ Command succeeded (exit code: %d)", exitCode))
		if stdout != "" {
			c.ui.WriteMessage("📝 Output:\n" + stdout)
		}
	} else {
		c.ui.WriteMessage(fmt.Sprintf("❌ Command failed (exit code: %d)", exitCode))
		if stderr != "" {
			c.ui.WriteMessage("📝 Error output:\n" + stderr)
		}
		if stdout != "" {
			c.ui.WriteMessage("📝 Standard output:\n" + stdout)
		}
	}
	if pwdAfter != "" {
		c.ui.WriteMessage("📍 Working directory: " + pwdAfter)
	}
}
