// Package logging builds the process logging pipeline: a human readable
// console sink and a JSON file sink that rolls over once per calendar day.
//
// # Overview
//
// Both sinks sit behind a single target filter. A record is kept only when its
// target (the "target" attribute, normally bound with Pipeline.Logger) matches
// one of the configured targets at or above that target's level. The filter is
// an immutable value behind an atomic pointer, so the Handle returned from
// Init can swap it while other goroutines are logging.
//
// The file sink never writes on the caller's goroutine. Records are queued on
// an AsyncWriter and drained by one consumer into a DailyFile. The Guard
// returned from Init must be closed at shutdown to flush that queue.
//
// # Usage
//
//	guard, handle, err := logging.Init(logging.Options{
//		BinName: "billing",
//		Targets: []string{"billing/worker"},
//		Debug:   false,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer guard.Close()
//
//	slog.Info("started")          // target "billing"
//	handle.SetLevel(slog.LevelDebug)
//	slog.Debug("now visible")
//
// # Log Directory
//
// ResolveDir picks the directory: the temp directory in dev mode (first
// process argument "dev"), then the explicit path, then the named environment
// variable, then DefaultDir.
package logging
