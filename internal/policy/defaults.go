package policy

// DefaultDocument returns the policy written on first use when no
// policy.json exists yet.
func DefaultDocument() *Document {
	return &Document{
		Version: "1.0",
		Global: GlobalPolicy{
			BlockedExtensions: []string{".exe", ".dll", ".so", ".dylib", ".bin"},
			MaxFileSizeMB:     10,
			AutoBackup:        true,
		},
		Tools: map[string]ToolPolicy{
			ToolFile: {
				Create: OperationPolicy{AllowedDirectories: []string{"src/", "tests/", "docs/"}, ConfirmationRequired: true},
				Read:   OperationPolicy{AllowedDirectories: []string{"src/", "tests/", "docs/"}},
				Update: OperationPolicy{AllowedDirectories: []string{"src/", "tests/"}, ConfirmationRequired: true},
				// Empty allowed_directories disables deletes entirely.
				Delete: OperationPolicy{ConfirmationRequired: true},
			},
			ToolTodo: {
				Create: OperationPolicy{AllowedDirectories: []string{""}},
				Read:   OperationPolicy{AllowedDirectories: []string{""}},
				Update: OperationPolicy{AllowedDirectories: []string{""}},
				Delete: OperationPolicy{AllowedDirectories: []string{""}, ConfirmationRequired: true},
			},
			ToolCommand: {
				Create: OperationPolicy{
					AllowedDirectories:   []string{""},
					ConfirmationRequired: true,
					AllowedCommands: []string{
						"make", "cmake", "gcc", "g++", "go", "npm", "cargo",
						"python", "python3", "pip", "ls", "pwd", "find", "grep",
						"cat", "head", "tail", "wc", "sort", "uniq", "awk",
						"sed", "git", "echo", "true", "sh",
					},
					BlockedCommands: []string{
						"rm", "rmdir", "dd", "mkfs", "format", "fdisk", "mount",
						"umount", "chmod 777", "chown", "su", "sudo", "passwd",
						"systemctl", "shutdown", "reboot", "kill -9", "curl",
						"wget", "nc",
					},
				},
				Read:   OperationPolicy{AllowedDirectories: []string{""}},
				Update: OperationPolicy{AllowedDirectories: []string{""}, ConfirmationRequired: true},
				Delete: OperationPolicy{ConfirmationRequired: true},
			},
		},
	}
}
