package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	os.Exit(execute())
}

// execute runs the root command and maps its outcome to an exit status.
// Cancellation from Ctrl-C during `run` exits quietly.
func execute() int {
	err := newRootCommand().Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 1
	default:
		fmt.Fprintf(os.Stderr, "autoreply: %v\n", err)
		return 1
	}
}
