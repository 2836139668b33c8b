// Package execshell provides structured helpers for invoking git.
//
// ShellExecutor wraps a CommandRunner with zap logging and lifecycle
// observers, OSCommandRunner executes commands through os/exec, and the
// ExecuteGit/ProbeGit pair distinguishes commands whose non-zero exit is a
// failure from commands whose exit code is an answer.
package execshell
