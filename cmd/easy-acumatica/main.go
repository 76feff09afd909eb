// Package main provides the easy-acumatica CLI.
//
// The CLI talks to a contract-based endpoint and generates static Go model
// stubs from its schema:
//
//	easy-acumatica generate --url https://demo.example.com --out ./models
//
// Connection settings come from flags, ACUMATICA_* environment variables,
// or a config file, in that order of precedence.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
