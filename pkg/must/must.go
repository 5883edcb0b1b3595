package must

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
)

// Lines before stackFrom belong to runtime/debug and this package; the
// window starts at the caller of the helper.
const (
	stackFrom = 7
	stackTo   = 31
)

// Ok returns v, or logs and panics if err is non-nil.
func Ok[T any](v T, err error) T {
	if err != nil {
		fail(err, "")
	}
	return v
}

// OkCtx is Ok with a context message attached to the diagnostic.
//
//	f := must.OkCtx(os.Open(path))("config was validated at startup")
func OkCtx[T any](v T, err error) func(msg string) T {
	return func(msg string) T {
		if err != nil {
			fail(err, msg)
		}
		return v
	}
}

// Some returns v, or logs and panics if ok is false.
func Some[T any](v T, ok bool) T {
	if !ok {
		fail(nil, "")
	}
	return v
}

// SomeCtx is Some with a context message attached to the diagnostic.
func SomeCtx[T any](v T, ok bool) func(msg string) T {
	return func(msg string) T {
		if !ok {
			fail(nil, msg)
		}
		return v
	}
}

// Never logs and panics unconditionally.
func Never(msg string) {
	fail(nil, msg)
}

func fail(err error, msg string) {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	stack := trimStack(string(debug.Stack()))
	info := fmt.Sprintf("this should never happen: %s, context: %s, back_trace: %s", errMsg, msg, stack)

	slog.Error("this should never happen",
		"error", errMsg,
		"context", msg,
		"back_trace", stack,
	)
	panic(info)
}

func trimStack(full string) string {
	lines := strings.Split(full, "\n")
	var b strings.Builder
	for i, line := range lines {
		if i >= stackFrom && i < stackTo {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
