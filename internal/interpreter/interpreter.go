// Package interpreter scans assistant text for the small set of
// tool-invocation expressions the system recognizes, applies their side
// effects to the todo list (and, in autonomous mode, the coordinator), and
// rewrites the text into human-readable acknowledgements.
package interpreter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/magproject/mag/internal/todo"
)

// Runner is the slice of the coordinator the interpreter drives for
// autonomous execution calls. A nil Runner disables them.
type Runner interface {
	// RunNextTodo executes the next pending todo. An empty title means
	// nothing was pending.
	RunNextTodo() (title string, ok bool)
	// RunAllTodos executes pending todos in order, stopping at the first
	// failure, and returns how many completed.
	RunAllTodos() int
	// RunTodoByID executes one pending todo by id.
	RunTodoByID(id int) (title string, ok bool)
}

// Named-expression patterns. Both quote styles are accepted; matching is
// textual and anchored only by the surrounding punctuation.
var (
	addTodoPattern         = regexp.MustCompile(`add_todo\s*\(\s*['"](.*?)['"]\s*,\s*['"](.*?)['"]\s*\)`)
	listTodosPattern       = regexp.MustCompile(`list_todos\s*\(\s*\)`)
	markCompletePattern    = regexp.MustCompile(`mark_complete\s*\(\s*(\d+)\s*\)`)
	deleteTodoPattern      = regexp.MustCompile(`delete_todo\s*\(\s*(\d+)\s*\)`)
	executeNextPattern     = regexp.MustCompile(`execute_next\s*\(\s*\)`)
	executeAllPattern      = regexp.MustCompile(`execute_all\s*\(\s*\)`)
	executeTodoPattern     = regexp.MustCompile(`execute_todo\s*\(\s*(\d+)\s*\)`)
	requestApprovalPattern = regexp.MustCompile(`request_user_approval\s*\(\s*['"](.*?)['"]\s*\)`)
)

// Result is the outcome of one interpretation pass.
type Result struct {
	// Text is the input with every recognized expression rewritten.
	Text string
	// Ops counts the operations performed.
	Ops int
	// ApprovalRequested is set when the model asked for user approval.
	ApprovalRequested bool
}

// Interpreter rewrites assistant text. It is owned by the coordinator.
type Interpreter struct {
	todos  *todo.Manager
	runner Runner
}

// New creates an Interpreter over the given todo manager. runner may be nil
// to ignore autonomous execution calls.
func New(todos *todo.Manager, runner Runner) *Interpreter {
	return &Interpreter{todos: todos, runner: runner}
}

// Process applies every recognized expression in order. After each rewrite
// the scan restarts from the beginning of the modified text so overlapping
// rewrites compose.
func (in *Interpreter) Process(text string) Result {
	res := Result{Text: text}

	in.rewriteAll(&res, addTodoPattern, func(groups []string) string {
		if _, err := in.todos.Add(groups[1], groups[2]); err != nil {
			return fmt.Sprintf("**Error:** %v", err)
		}
		res.Ops++
		return "**Added:** " + groups[1]
	})

	in.rewriteSeparatorBlocks(&res)

	in.rewriteAll(&res, listTodosPattern, func([]string) string {
		res.Ops++
		return in.renderTodoList()
	})

	in.rewriteAll(&res, markCompletePattern, func(groups []string) string {
		id, _ := strconv.Atoi(groups[1])
		if in.todos.MarkCompleted(id) {
			res.Ops++
			return fmt.Sprintf("**Completed:** Todo %d", id)
		}
		return fmt.Sprintf("**Error:** Todo %d not found", id)
	})

	in.rewriteAll(&res, deleteTodoPattern, func(groups []string) string {
		id, _ := strconv.Atoi(groups[1])
		if in.todos.Delete(id) {
			res.Ops++
			return fmt.Sprintf("**Deleted:** Todo %d", id)
		}
		return fmt.Sprintf("**Error:** Todo %d not found", id)
	})

	in.rewriteAll(&res, executeNextPattern, func([]string) string {
		if in.runner == nil {
			return "**Autonomous execution is disabled**"
		}
		title, ok := in.runner.RunNextTodo()
		if title == "" {
			return "**No pending todos to execute**"
		}
		res.Ops++
		if !ok {
			return "**Failed:** " + title
		}
		return "**Executed:** " + title
	})

	in.rewriteAll(&res, executeAllPattern, func([]string) string {
		if in.runner == nil {
			return "**Autonomous execution is disabled**"
		}
		count := in.runner.RunAllTodos()
		res.Ops += count
		return fmt.Sprintf("**Executed %d pending todos**", count)
	})

	in.rewriteAll(&res, executeTodoPattern, func(groups []string) string {
		if in.runner == nil {
			return "**Autonomous execution is disabled**"
		}
		id, _ := strconv.Atoi(groups[1])
		title, ok := in.runner.RunTodoByID(id)
		if title == "" {
			return fmt.Sprintf("**Error:** Todo %d not found or not pending", id)
		}
		res.Ops++
		if !ok {
			return "**Failed:** " + title
		}
		return "**Executed:** " + title
	})

	in.rewriteAll(&res, requestApprovalPattern, func(groups []string) string {
		res.ApprovalRequested = true
		return "**⏸️  Requesting User Approval:** " + groups[1] +
			"\n\nI've paused here to get your approval. Please review the pending todos and use /do commands when you're ready to proceed."
	})

	return res
}

// rewriteAll repeatedly replaces the first match of pattern until none
// remain, rescanning from the start after each rewrite.
func (in *Interpreter) rewriteAll(res *Result, pattern *regexp.Regexp, replace func(groups []string) string) {
	for {
		loc := pattern.FindStringSubmatchIndex(res.Text)
		if loc == nil {
			return
		}
		groups := make([]string, 0, len(loc)/2)
		for i := 0; i < len(loc); i += 2 {
			if loc[i] < 0 {
				groups = append(groups, "")
				continue
			}
			groups = append(groups, res.Text[loc[i]:loc[i+1]])
		}
		res.Text = res.Text[:loc[0]] + replace(groups) + res.Text[loc[1]:]
	}
}

// renderTodoList renders every todo, completed ones included, with a status
// icon, id, title, and optional description.
func (in *Interpreter) renderTodoList() string {
	items := in.todos.List(true)

	var b strings.Builder
	b.WriteString("\n**Current Todos:**\n")
	if len(items) == 0 {
		b.WriteString("- No todos yet\n")
		return b.String()
	}
	for _, item := range items {
		icon := "⏳"
		if item.Status == todo.StatusCompleted {
			icon = "✅"
		}
		fmt.Fprintf(&b, "- %s %d: %s\n", icon, item.ID, item.Title)
		if item.Description != "" {
			fmt.Fprintf(&b, "  %s\n", item.Description)
		}
	}
	return b.String()
}
