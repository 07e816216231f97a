// Package cli is the farmchat command-line client for the FarmEase backend.
package cli

import (
	"os"
)

// Run starts the CLI application.
func Run() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
