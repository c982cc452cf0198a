// Package main is the entry point for the satchel CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"satchel/cmd/satchel/commands"
	satchelerrors "satchel/internal/errors"
)

func main() {
	err := commands.Execute()
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, "Error:", err)

	var exitErr *satchelerrors.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Suggestion != "" {
			fmt.Fprintln(os.Stderr, exitErr.Suggestion)
		}
		os.Exit(exitErr.Code)
	}
	os.Exit(1)
}
