// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/luxfi/flashswap/dex"
	"github.com/luxfi/flashswap/flashswap"
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Quote repayments and swap outputs",
}

var quoteLoanCmd = &cobra.Command{
	Use:   "loan <amount>",
	Short: "Fee and repayment of a same-token flash loan",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuoteLoan,
}

var quoteSwapCmd = &cobra.Command{
	Use:   "swap <reserveIn> <reserveOut> <amountOut>",
	Short: "Repayment in the input token for borrowing amountOut",
	Long: `Quotes what must be paid back in the input token when amountOut of the
output token is borrowed. reserveOut is the output balance after the borrow.`,
	Args: cobra.ExactArgs(3),
	RunE: runQuoteSwap,
}

var quoteOutCmd = &cobra.Command{
	Use:   "out <amountIn> <reserveIn> <reserveOut>",
	Short: "Output of a plain swap of amountIn",
	Args:  cobra.ExactArgs(3),
	RunE:  runQuoteOut,
}

func init() {
	quoteCmd.AddCommand(quoteLoanCmd, quoteSwapCmd, quoteOutCmd)
}

func parseAmounts(args []string) ([]*uint256.Int, error) {
	out := make([]*uint256.Int, len(args))
	for i, arg := range args {
		v, err := uint256.FromDecimal(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", flashswap.ErrInvalidAmount, arg, err)
		}
		out[i] = v
	}
	return out, nil
}

func runQuoteLoan(cmd *cobra.Command, args []string) error {
	amounts, err := parseAmounts(args)
	if err != nil {
		return err
	}
	fee, repay, err := flashswap.LoanRepayment(amounts[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "fee: %s\nrepay: %s\n", fee.Dec(), repay.Dec())
	return nil
}

func runQuoteSwap(cmd *cobra.Command, args []string) error {
	amounts, err := parseAmounts(args)
	if err != nil {
		return err
	}
	repay, err := flashswap.RepayAmount(amounts[0], amounts[1], amounts[2])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "repay: %s\n", repay.Dec())
	return nil
}

func runQuoteOut(cmd *cobra.Command, args []string) error {
	amounts, err := parseAmounts(args)
	if err != nil {
		return err
	}
	out, err := dex.GetAmountOut(amounts[0], amounts[1], amounts[2])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "out: %s\n", out.Dec())
	return nil
}
