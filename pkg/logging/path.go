package logging

import (
	"log/slog"
	"os"
	"strings"
)

const (
	// DefaultDir is used when no explicit directory or environment override is given.
	DefaultDir = "/opt/logs/apps/"

	// DevModeToken as the first process argument selects the temp directory.
	DevModeToken = "dev"
)

// Resolver computes the effective log directory. The zero value is not usable;
// construct with NewResolver.
type Resolver struct {
	// Args are the process arguments including the program name.
	Args []string

	// LookupEnv reads an environment variable.
	LookupEnv func(key string) (string, bool)

	// TempDir returns the platform temporary directory.
	TempDir func() string

	logger *slog.Logger
}

// NewResolver returns a Resolver reading the real process state.
func NewResolver() *Resolver {
	return &Resolver{
		Args:      os.Args,
		LookupEnv: os.LookupEnv,
		TempDir:   os.TempDir,
	}
}

// ResolveDir resolves the log directory from the process state.
// An empty explicit path or envKey counts as not provided.
func ResolveDir(explicit, envKey string) string {
	return NewResolver().Resolve(explicit, envKey)
}

// DevMode reports whether the process was started with DevModeToken as its
// first argument.
func DevMode() bool {
	return isDevMode(os.Args)
}

// Resolve returns, in order of precedence: the temp directory in dev mode,
// the trimmed explicit path, the value of envKey, DefaultDir.
func (r *Resolver) Resolve(explicit, envKey string) string {
	logger := r.logger
	if logger == nil {
		logger = slog.Default()
	}

	if isDevMode(r.Args) {
		dir := r.TempDir()
		logger.Debug("dev mode, logs go to the temporary directory", "dir", dir)
		return dir
	}

	if p := strings.TrimSpace(explicit); p != "" {
		return p
	}

	if envKey != "" {
		if v, ok := r.LookupEnv(envKey); ok && v != "" {
			return v
		}
		logger.Warn("log directory variable not set, using default",
			"env", envKey,
			"dir", DefaultDir,
		)
	}

	return DefaultDir
}

func isDevMode(args []string) bool {
	return len(args) > 1 && args[1] == DevModeToken
}
