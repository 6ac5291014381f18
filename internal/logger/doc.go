// Package logger wraps zap to give the installer:
//   - a global sugared logger with a colored console encoder
//     (capitalized, color-coded level tags on stdout),
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and runtime level control for the CLI,
//   - convenience functions (Infof, ErrorKV, etc.).
//
// Every service entry point accepts a context and logs through it, so a
// named logger set once at the CLI boundary tags all lines of a run.
package logger
