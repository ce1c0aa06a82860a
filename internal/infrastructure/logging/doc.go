// Package logging builds the service's structured logger on log/slog.
//
// Records carry service and version attributes. Components add their own
// with With, for example logger.With("component", "catalog").
//
// The logging section of the config file selects level (debug, info, warn,
// error), format (json or text) and output (stdout or stderr). Log account
// IDs and nicknames, never passwords or tokens.
package logging
