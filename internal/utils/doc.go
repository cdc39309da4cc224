// Package utils holds the configuration and logging plumbing shared by the
// mergeforward commands: a Viper-backed ConfigurationLoader and a zap
// LoggerFactory.
package utils
