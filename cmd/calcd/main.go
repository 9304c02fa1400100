package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess  = 0 // Command completed
	ExitRPCError = 1 // The server answered with an error response
	ExitError    = 2 // Configuration or runtime error
)

// RPCError indicates that a call reached the server, but the server answered
// with an error response instead of a result.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		// Check error type to determine exit code
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) {
			os.Exit(ExitRPCError)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
