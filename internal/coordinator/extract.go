package coordinator

import "strings"

// knownCommands are base commands recognized as already-executable text.
var knownCommands = map[string]bool{
	"make": true, "cmake": true, "npm": true, "yarn": true, "pip": true,
	"python": true, "python3": true, "go": true, "cargo": true, "git": true,
	"docker": true, "ls": true, "pwd": true, "cd": true, "mkdir": true,
	"grep": true, "find": true, "cat": true, "echo": true, "tar": true,
	"curl": true, "wget": true, "chmod": true, "sh": true, "bash": true,
}

// extractCommand pulls an executable command string out of a todo's free
// text using a small set of heuristics. It favors exact commands the model
// was instructed to embed ("python3 src/app.py") and falls back to passing
// the text through when it already looks like a command.
func extractCommand(prompt string) string {
	lower := strings.ToLower(prompt)

	// Exact python invocations pass through verbatim.
	for _, interp := range []string{"python3 ", "python "} {
		if idx := strings.Index(lower, interp); idx >= 0 {
			rest := prompt[idx:]
			fields := strings.Fields(rest)
			if len(fields) >= 2 {
				return fields[0] + " " + fields[1]
			}
		}
	}

	// A bare script mention becomes a python invocation.
	if strings.Contains(lower, ".py") {
		fields := strings.Fields(prompt)
		for _, f := range fields {
			if strings.HasSuffix(strings.ToLower(strings.TrimRight(f, ".,;:!?")), ".py") {
				return "python3 " + strings.TrimRight(f, ".,;:!?")
			}
		}
	}

	// Text following "run " or "execute " is the command.
	if idx := strings.Index(lower, "run "); idx >= 0 {
		return strings.TrimSpace(prompt[idx+len("run "):])
	}
	if idx := strings.Index(lower, "execute "); idx >= 0 {
		return strings.TrimSpace(prompt[idx+len("execute "):])
	}

	// Git commands pass through from the git token.
	if idx := strings.Index(lower, "git "); idx >= 0 {
		return strings.TrimSpace(prompt[idx:])
	}

	if strings.Contains(lower, "npm install") {
		return "npm install"
	}
	if strings.Contains(lower, "test") {
		return "make test"
	}
	if strings.Contains(lower, "build") || strings.Contains(lower, "make") {
		return "make"
	}

	// Already a command? Pass it through.
	if fields := strings.Fields(prompt); len(fields) > 0 && knownCommands[strings.ToLower(fields[0])] {
		return prompt
	}

	return prompt
}
