// Package middleware wraps ports.StateStore implementations with history
// trimming and instrumentation.
package middleware
