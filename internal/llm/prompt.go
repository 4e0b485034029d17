package llm

import (
	"strings"

	"github.com/magproject/mag/internal/policy"
)

// PlanSystemPrompt builds the plan-mode instruction. It tells the model the
// two response shapes it may produce and lists the current policy
// constraints so the model proposes operations that will actually pass.
func PlanSystemPrompt(engine *policy.Engine) string {
	var b strings.Builder

	b.WriteString("You are a helpful AI assistant that converts user requests into a single, specific JSON command. ")
	b.WriteString("You must only respond with a JSON object. Do not add any conversational text or markdown formatting around the JSON.\n\n")
	b.WriteString("You can use TWO types of commands:\n")
	b.WriteString("1. \"WriteFile\" - for creating/editing files\n")
	b.WriteString("2. \"BashCommand\" - for executing shell commands\n\n")
	b.WriteString("Choose WriteFile for: file creation, editing, content manipulation\n")
	b.WriteString("Choose BashCommand for: building, testing, running commands, system operations\n\n")

	writePolicyConstraints(&b, engine)

	b.WriteString("JSON FORMAT:\n\n")
	b.WriteString("For WriteFile commands:\n")
	b.WriteString("{\n  \"command\": \"WriteFile\",\n  \"path\": \"relative/path/to/file\",\n  \"content\": \"file content here\"\n}\n\n")
	b.WriteString("For BashCommand commands:\n")
	b.WriteString("{\n  \"command\": \"BashCommand\",\n  \"bash_command\": \"the shell command to execute\",\n  \"description\": \"brief description of what this does\"\n}\n\n")
	b.WriteString("Examples:\n")
	b.WriteString("User: \"create a python file in src/ called app.py that prints hello world\"\n")
	b.WriteString("Response: {\"command\": \"WriteFile\", \"path\": \"src/app.py\", \"content\": \"print('Hello, World!')\"}\n\n")
	b.WriteString("User: \"run make clean to clean the build\"\n")
	b.WriteString("Response: {\"command\": \"BashCommand\", \"bash_command\": \"make clean\", \"description\": \"Clean build artifacts\"}\n\n")
	b.WriteString("IMPORTANT: For BashCommand, 'bash_command' must be the EXACT command to execute, not a description!")

	return b.String()
}

// ChatSystemPrompt builds the chat-mode instruction: policy constraints plus
// the named operations the response interpreter recognizes.
func ChatSystemPrompt(engine *policy.Engine) string {
	var b strings.Builder

	b.WriteString("You are MAG (Multi-Agent Gateway), a helpful AI assistant with todo management capabilities. ")
	b.WriteString("You are currently in CHAT MODE where you can have natural conversations AND manage a todo list.\n\n")

	writePolicyConstraints(&b, engine)

	b.WriteString("AVAILABLE TOOLS:\n")
	b.WriteString("- add_todo(title, description): Add a new todo item (simple format)\n")
	b.WriteString("- <TODO_SEPARATOR> blocks: Add complex todos with quotes/special chars\n")
	b.WriteString("- list_todos(): Show current todos\n")
	b.WriteString("- mark_complete(id): Mark todo as done\n")
	b.WriteString("- delete_todo(id): Remove todo item\n\n")
	b.WriteString("When creating todos, you can suggest BOTH file operations AND shell commands:\n")
	b.WriteString("- File operations: 'Create config.json with settings', 'Update README.md'\n")
	b.WriteString("- Shell commands: Use EXACT command syntax like 'python3 src/script.py', 'make clean'\n")
	b.WriteString("- For command todos, be SPECIFIC with executable commands, not descriptions\n\n")
	b.WriteString("AUTONOMOUS EXECUTION TOOLS:\n")
	b.WriteString("- execute_next(): Execute the next pending todo autonomously\n")
	b.WriteString("- execute_all(): Execute all pending todos autonomously\n")
	b.WriteString("- execute_todo(id): Execute a specific todo by ID\n")
	b.WriteString("- request_user_approval(reason): Stop and ask the user for approval when uncertain\n\n")
	b.WriteString("TODO FORMATS:\n")
	b.WriteString("1. Simple: add_todo(\"title\", \"description\") - for basic todos\n")
	b.WriteString("2. Separator format for complex content with quotes/special chars:\n")
	b.WriteString("   <TODO_SEPARATOR>\n")
	b.WriteString("   Title: Create complex Python script\n")
	b.WriteString("   Description: Script with embedded \"quotes\" and newlines\n")
	b.WriteString("   <TODO_SEPARATOR>\n\n")
	b.WriteString("RESPONSE FORMAT:\n")
	b.WriteString("- Be conversational and helpful\n")
	b.WriteString("- When adding todos, use the actual function calls in your response for them to work\n")
	b.WriteString("- NEVER use /do commands in responses (those are for the user's CLI only)\n")

	return b.String()
}

// writePolicyConstraints appends the current policy document's file and
// command constraints to a prompt.
func writePolicyConstraints(b *strings.Builder, engine *policy.Engine) {
	allowedDirs := engine.AllowedDirectories(policy.ToolFile, policy.OpCreate)
	if len(allowedDirs) == 0 {
		return
	}

	b.WriteString("IMPORTANT POLICY CONSTRAINTS:\n\n")
	b.WriteString("FILE OPERATIONS:\n")
	b.WriteString("- You can ONLY create files in these directories: ")
	b.WriteString(strings.Join(allowedDirs, ", "))
	b.WriteString("\n- Files in other directories are NOT allowed\n")
	b.WriteString("- If the user requests a file outside allowed directories, suggest an alternative in one of the allowed directories\n\n")

	doc := engine.Document()
	if cmdTool, ok := doc.Tools[policy.ToolCommand]; ok {
		b.WriteString("SHELL COMMANDS:\n")
		if len(cmdTool.Create.AllowedCommands) > 0 {
			b.WriteString("- Allowed commands: ")
			b.WriteString(strings.Join(cmdTool.Create.AllowedCommands, ", "))
			b.WriteString("\n")
		}
		if len(cmdTool.Create.BlockedCommands) > 0 {
			b.WriteString("- Blocked commands: ")
			b.WriteString(strings.Join(cmdTool.Create.BlockedCommands, ", "))
			b.WriteString("\n")
		}
		b.WriteString("- Commands execute with working directory persistence\n\n")
	}
}
