// Package utils exposes the configuration, logging, and output plumbing shared by the CLI.
//
// ConfigurationLoader layers embedded defaults, configuration files, and
// environment variables through Viper. LoggerFactory builds zap loggers for the
// configured level and format. FlushingWriter keeps per-repository output blocks
// intact when repositories are processed in parallel.
package utils
