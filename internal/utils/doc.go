// Package utils exposes reusable helpers consumed by the CLI.
//
// It houses ConfigurationLoader and LoggerFactory, which integrate Viper,
// environment variables, terminal detection, and zap logging, together with
// FlushingWriter for output shared by concurrent workers.
package utils
