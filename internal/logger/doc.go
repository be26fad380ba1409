// Package logger wraps zap to offer:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing,
//   - convenience functions (Infof, DebugKV, etc.).
//
// The packager passes a context everywhere and extracts the logger from it,
// so every message carries the name of the step that produced it.
package logger
