// Package retention deletes aged log files, once or on a cron schedule.
//
// # Retention Policy
//
// A Policy names a flat directory and a maximum age in whole days. A cleanup
// run deletes every entry whose modification time is strictly more than
// MaxAgeDays days before the run started:
//
//   - 0 days: delete anything modified before the last 24 hours
//   - 30 days: delete files untouched for more than 30 days
//
// # Manual Cleanup
//
//	res, err := retention.Clean("/opt/logs/apps/", 30)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Printf("deleted %d files", len(res.Deleted))
//
// Runs are fail-fast. The first unlistable directory, unreadable entry or
// failed delete ends the run with a *CleanupError; use errors.Is with
// ErrDirectoryUnreadable, ErrMetadataUnavailable or ErrDeleteFailed, or
// KindOf, to tell them apart.
//
// # Scheduling
//
//	s, err := retention.Schedule(
//	    retention.Policy{Dir: "/opt/logs/apps/", MaxAgeDays: 30},
//	    "0 0 0 * * * *", // daily at midnight
//	    retention.ErrorHandlerFunc(func(err error) {
//	        slog.Error("log cleanup failed", "error", err)
//	    }),
//	)
//	if err != nil {
//	    log.Fatal(err) // malformed expression or policy
//	}
//	defer s.Stop()
//
// Expressions have seven fields, seconds first and year last:
//
//   - "0 0 0 * * * *": daily at midnight (DefaultSchedule)
//   - "0 15 6,8,10 * Mar,Jun Fri 2027": 06:15, 08:15, 10:15 on Fridays in March and June 2027
//   - "1/5 * * * * * *": every five seconds
//
// The year may be omitted, and descriptors such as "@daily" are accepted.
//
// # Scheduler Features
//
//   - One run at a time; a trigger that fires during a run is skipped
//   - Failed runs go to the ErrorHandler, never to the caller of Schedule
//   - Panics inside a run are recovered and logged
//   - UpdatePolicy swaps the policy for subsequent runs
//   - Graceful Stop waits for a running cleanup
package retention
