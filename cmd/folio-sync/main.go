// Package main is the entry point for the folio-sync CLI.
package main

import (
	"os"

	"github.com/hotelops/folio-ledger/cmd/folio-sync/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
