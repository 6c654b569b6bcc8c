package main

import (
	"os"
)

func main() {
	Execute()
}

func fatal(msg string, err error) {
	failure("%s: %v", msg, err)
	if logger != nil {
		_ = logger.Sync()
	}
	os.Exit(1)
}
