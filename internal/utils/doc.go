// Package utils hosts the configuration loader and logger factory shared by
// every flint command.
//
// ConfigurationLoader layers the embedded defaults, an optional configuration
// file, and FLINT_* environment variables through Viper. LoggerFactory builds
// zap loggers in structured or console form.
package utils
