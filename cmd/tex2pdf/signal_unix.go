//go:build !windows

package main

import (
	"os"
	"syscall"
)

// shutdownSignals stop a command. SIGHUP covers a closed terminal under
// preview and serve.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}
