// logkeeper runs a service's log pipeline and keeps its log directory within
// a retention window.
//
// Usage:
//
//	# Log and clean on the configured schedule until SIGINT/SIGTERM
//	logkeeper run --config /etc/logkeeper.yaml
//
//	# Development mode: logs go to the system temp directory
//	logkeeper dev run
//
//	# Delete files older than 7 days right now
//	logkeeper clean --dir /opt/logs/apps --days 7
//
//	# Show where logs would be written
//	logkeeper path
package main

import (
	"os"

	"mercator-hq/logkeeper/pkg/logging"
)

func main() {
	os.Exit(Execute(commandArgs(os.Args)))
}

// commandArgs drops the program name and the leading development mode token,
// which is read from os.Args by the path resolver rather than by cobra.
func commandArgs(argv []string) []string {
	if len(argv) < 2 {
		return nil
	}
	if argv[1] == logging.DevModeToken {
		return argv[2:]
	}
	return argv[1:]
}
