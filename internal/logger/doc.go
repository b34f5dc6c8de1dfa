// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a sane console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV/WithFields),
//   - level configuration and parsing utilities, including the zone verbosity option,
//   - convenience functions (Infof, ErrorKV, etc.).
//
// The controller and the CLI tools accept a context and extract the logger
// from it, enabling scoped, structured logging throughout the codebase.
package logger
