// Package helper provides test helpers: roster fixtures, a slog handler spy and spies for the
// metrics and tracing collector interfaces.
package helper
