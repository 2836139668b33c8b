// Package ui provides helpers for human-readable console output.
//
// ConsoleCommandEventLogger echoes git invocations while structured telemetry
// continues to flow through zap, and Theme/Styler apply lipgloss styles to
// reports when the output stream is a terminal.
package ui
