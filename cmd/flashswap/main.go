// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command flashswap simulates flash loans and flash swaps against an
// in-memory constant-product host and inspects their arithmetic and wire
// format.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	log "github.com/luxfi/log"
)

// logger is shared by every command
var logger log.Logger = log.NewTestLogger(log.InfoLevel)

var rootCmd = &cobra.Command{
	Use:           "flashswap",
	Short:         "Flash loan and flash swap simulator",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(simulateCmd, quoteCmd, decodeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
