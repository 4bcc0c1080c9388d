package main

import (
	"os"

	"github.com/chartsync/chartsync/pkg/exitcodes"
	"github.com/chartsync/chartsync/pkg/log"
)

// main delegates to Execute (root.go) and translates command errors into
// process exit codes. Non-zero failures carry their code through
// exitcodes.ExitCodeError; anything else is a general runtime error.
func main() {
	if err := Execute(); err != nil {
		log.Error("command failed", "error", err)
		if code, ok := exitcodes.IsExitCodeError(err); ok {
			os.Exit(code)
		}
		os.Exit(exitcodes.ExitGeneralRuntimeError)
	}
}
