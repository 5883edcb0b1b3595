// Package must provides assertion helpers for states that cannot occur in a
// correctly configured process.
//
// Each helper returns the wrapped value when the assertion holds. When it
// does not, the helper logs an error record through slog.Default carrying
// the error, the caller supplied context and a trimmed stack, then panics
// with the same message.
//
//	offset := must.OkCtx(time.Parse("-07:00", "+08:00"))("fixed offset parses")
//
// These helpers are not a substitute for returning errors. Anything a caller
// can reasonably recover from (a missing directory, a failed delete) is
// reported as an error value instead.
package must
