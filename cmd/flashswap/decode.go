// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/luxfi/flashswap/flashswap"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <continuation>",
	Short: "Decode a continuation string",
	Long: `Decodes the data a flash swap hands to the pair and prints its fields.
The continuation must be quoted when the user data contains spaces.`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

// continuationView is the printable form of a continuation
type continuationView struct {
	Strategy     string    `yaml:"strategy"`
	BorrowToken  string    `yaml:"borrow_token"`
	Amount       string    `yaml:"amount"`
	PayToken     string    `yaml:"pay_token"`
	BorrowNative bool      `yaml:"borrow_native"`
	PayNative    bool      `yaml:"pay_native"`
	Triangle     *triangle `yaml:"triangle,omitempty"`
	UserData     string    `yaml:"user_data"`
}

type triangle struct {
	RepayPair    string `yaml:"repay_pair"`
	NativeAmount string `yaml:"native_amount"`
}

func newContinuationView(c *flashswap.Continuation) continuationView {
	v := continuationView{
		Strategy:     string(c.Strategy),
		BorrowToken:  c.BorrowToken.Hex(),
		Amount:       c.Amount.Dec(),
		PayToken:     c.PayToken.Hex(),
		BorrowNative: c.BorrowNative,
		PayNative:    c.PayNative,
		UserData:     c.UserData,
	}
	if c.Triangle != nil {
		v.Triangle = &triangle{
			RepayPair:    c.Triangle.RepayPair.Hex(),
			NativeAmount: c.Triangle.NativeAmount.Dec(),
		}
	}
	return v
}

func runDecode(cmd *cobra.Command, args []string) error {
	c, err := flashswap.DecodeContinuation(args[0])
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	defer enc.Close()
	return enc.Encode(newContinuationView(c))
}
