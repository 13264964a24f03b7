package main

import "fmt"

// exitError carries a process exit status through cobra's error return.
type exitError struct {
	code    int
	message string
	silent  bool
}

func (e exitError) Error() string {
	if e.message == "" {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.message
}

// exitSilent exits with code once the command has already reported why.
func exitSilent(code int) error {
	return exitError{code: code, silent: true}
}
