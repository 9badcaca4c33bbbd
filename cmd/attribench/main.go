package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess    = 0 // Every scored pair passed its gate
	ExitGateFailed = 1 // One or more pairs failed the gate
	ExitError      = 2 // Configuration or runtime error
)

// GateFailureError indicates scoring completed, but one or more
// (model, task) pairs failed the pass gate.
type GateFailureError struct {
	Message string
}

func (e *GateFailureError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var gateErr *GateFailureError
		if errors.As(err, &gateErr) {
			os.Exit(ExitGateFailed)
		}

		os.Exit(ExitError)
	}
}
