package executor

import (
	"regexp"
	"strings"
)

// blockedFragments are command substrings refused outright. This list is a
// last-resort safety net evaluated before, and independently of, policy.
var blockedFragments = []string{
	"rm -rf /",
	"sudo rm",
	"mkfs",
	"fdisk",
	"dd if=/dev/zero",
	":(){ :|:& };:",
	"chmod 000",
	"chown root",
	"sudo su",
	"reboot",
	"shutdown",
	"halt",
	"poweroff",
	"init 0",
	"init 6",
}

// dangerousPatterns catch destructive shapes a plain substring scan misses.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`>\s*/dev/`),         // redirecting to device files
	regexp.MustCompile(`/dev/sd[a-z]`),      // direct disk access
	regexp.MustCompile(`rm\s+.*-rf`),        // recursive force remove
	regexp.MustCompile(`rm\s+-fr`),          // reversed flag order
	regexp.MustCompile(`\|\s*(sudo\s+)?rm\b`), // piped into rm
	regexp.MustCompile(`;\s*rm\s`),          // chained with rm
	regexp.MustCompile(`&&\s*rm\s`),         // AND-chained with rm
	regexp.MustCompile(`\$\([^)]*\brm\b`),   // command substitution with rm
}

// isDangerous reports whether a command trips the safety net.
func isDangerous(command string) bool {
	lower := strings.ToLower(command)
	for _, fragment := range blockedFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(command) {
			return true
		}
	}
	return false
}
