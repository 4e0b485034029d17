package interpreter

import (
	"strings"
	"testing"

	"github.com/magproject/mag/internal/todo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records autonomous execution calls.
type fakeRunner struct {
	todos    *todo.Manager
	failNext bool
}

func (f *fakeRunner) RunNextTodo() (string, bool) {
	item, ok := f.todos.NextPending()
	if !ok {
		return "", false
	}
	if f.failNext {
		f.todos.MarkInProgress(item.ID)
		return item.Title, false
	}
	f.todos.MarkCompleted(item.ID)
	return item.Title, true
}

func (f *fakeRunner) RunAllTodos() int {
	count := 0
	for {
		title, ok := f.RunNextTodo()
		if title == "" || !ok {
			return count
		}
		count++
	}
}

func (f *fakeRunner) RunTodoByID(id int) (string, bool) {
	item, ok := f.todos.Get(id)
	if !ok || item.Status != todo.StatusPending {
		return "", false
	}
	f.todos.MarkCompleted(id)
	return item.Title, true
}

func TestAddTodoComposition(t *testing.T) {
	todos := todo.NewManager()
	in := New(todos, nil)

	res := in.Process(`add_todo("A","x") add_todo("B","y") list_todos()`)

	a, ok := todos.Get(1)
	require.True(t, ok)
	assert.Equal(t, "A", a.Title)
	b, ok := todos.Get(2)
	require.True(t, ok)
	assert.Equal(t, "B", b.Title)

	assert.Contains(t, res.Text, "**Added:** A")
	assert.Contains(t, res.Text, "**Added:** B")
	assert.Contains(t, res.Text, "**Current Todos:**")
	// The list block enumerates both items in creation order.
	listIdx := strings.Index(res.Text, "**Current Todos:**")
	aIdx := strings.Index(res.Text[listIdx:], "1: A")
	bIdx := strings.Index(res.Text[listIdx:], "2: B")
	require.GreaterOrEqual(t, aIdx, 0)
	require.GreaterOrEqual(t, bIdx, 0)
	assert.Less(t, aIdx, bIdx)
	assert.Equal(t, 3, res.Ops)
}

func TestSingleQuotedForm(t *testing.T) {
	todos := todo.NewManager()
	in := New(todos, nil)

	in.Process(`add_todo('single', 'quoted')`)
	item, ok := todos.Get(1)
	require.True(t, ok)
	assert.Equal(t, "single", item.Title)
	assert.Equal(t, "quoted", item.Description)
}

func TestSeparatorBlock(t *testing.T) {
	todos := todo.NewManager()
	in := New(todos, nil)

	text := "I'll queue that up!\n" +
		"<TODO_SEPARATOR>\n" +
		"Title: Create interactive script\n" +
		"Description: Script that prints \"Hello World!\" and asks \"What's your name?\"\n" +
		"Multi-line descriptions work too.\n" +
		"<TODO_SEPARATOR>\n" +
		"All queued."

	res := in.Process(text)

	item, ok := todos.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Create interactive script", item.Title)
	assert.Contains(t, item.Description, `"Hello World!"`)
	assert.Contains(t, item.Description, "Multi-line descriptions work too.")

	assert.Contains(t, res.Text, "**Added:** Create interactive script")
	assert.NotContains(t, res.Text, "<TODO_SEPARATOR>")
	assert.Contains(t, res.Text, "All queued.")
}

func TestMalformedSeparatorBlockSkipped(t *testing.T) {
	todos := todo.NewManager()
	in := New(todos, nil)

	text := "<TODO_SEPARATOR>\nno fields here\n<TODO_SEPARATOR>"
	res := in.Process(text)

	assert.True(t, todos.IsEmpty())
	assert.Contains(t, res.Text, "<TODO_SEPARATOR>")
}

func TestMarkCompleteAndDelete(t *testing.T) {
	todos := todo.NewManager()
	in := New(todos, nil)
	todos.Add("task one", "")
	todos.Add("task two", "")

	res := in.Process("mark_complete(1) delete_todo(2) mark_complete(99)")

	one, _ := todos.Get(1)
	assert.Equal(t, todo.StatusCompleted, one.Status)
	_, exists := todos.Get(2)
	assert.False(t, exists)

	assert.Contains(t, res.Text, "**Completed:** Todo 1")
	assert.Contains(t, res.Text, "**Deleted:** Todo 2")
	assert.Contains(t, res.Text, "**Error:** Todo 99 not found")
}

func TestExecuteCalls(t *testing.T) {
	todos := todo.NewManager()
	runner := &fakeRunner{todos: todos}
	in := New(todos, runner)
	todos.Add("first job", "")
	todos.Add("second job", "")

	res := in.Process("execute_next()")
	assert.Contains(t, res.Text, "**Executed:** first job")

	res = in.Process("execute_all()")
	assert.Contains(t, res.Text, "**Executed 1 pending todos**")

	res = in.Process("execute_next()")
	assert.Contains(t, res.Text, "**No pending todos to execute**")
}

func TestExecuteTodoByID(t *testing.T) {
	todos := todo.NewManager()
	in := New(todos, &fakeRunner{todos: todos})
	todos.Add("specific", "")

	res := in.Process("execute_todo(1) execute_todo(9)")
	assert.Contains(t, res.Text, "**Executed:** specific")
	assert.Contains(t, res.Text, "**Error:** Todo 9 not found or not pending")
}

func TestAutonomousDisabled(t *testing.T) {
	todos := todo.NewManager()
	in := New(todos, nil)
	todos.Add("waiting", "")

	res := in.Process("execute_all()")
	assert.Contains(t, res.Text, "**Autonomous execution is disabled**")

	item, _ := todos.Get(1)
	assert.Equal(t, todo.StatusPending, item.Status)
}

func TestRequestUserApproval(t *testing.T) {
	in := New(todo.NewManager(), nil)

	res := in.Process(`request_user_approval("this deletes files")`)
	assert.True(t, res.ApprovalRequested)
	assert.Contains(t, res.Text, "Requesting User Approval")
	assert.Contains(t, res.Text, "this deletes files")
	assert.NotContains(t, res.Text, "request_user_approval(")
}

func TestPlainTextUntouched(t *testing.T) {
	in := New(todo.NewManager(), nil)
	text := "Just a normal reply about add_todo usage, with no calls."
	res := in.Process(text)
	assert.Equal(t, text, res.Text)
	assert.Zero(t, res.Ops)
}
