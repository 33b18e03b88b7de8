// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package flashswap

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

// flashLoan borrows amount of token and repays in the same token. The pair
// is token/wrapped native, or wrapped native/reference when the wrapped
// native token itself is borrowed.
func (s *Swapper) flashLoan(
	ctx context.Context,
	token common.Hash,
	amount *uint256.Int,
	borrowNative bool,
	payNative bool,
	userData string,
) error {
	companion := s.config.Reference
	if token != s.config.WrappedNative {
		companion = s.config.WrappedNative
	}

	pairAddr, err := s.getPair(ctx, token, companion)
	if err != nil {
		return err
	}
	if pairAddr == (common.Hash{}) {
		return ErrZeroAddress
	}
	pair, err := s.contracts.Pair(pairAddr)
	if err != nil {
		return err
	}

	amount0Out, amount1Out, err := s.outputAmounts(ctx, pair, token, amount)
	if err != nil {
		return err
	}

	return s.initiate(ctx, pairAddr, pair, amount0Out, amount1Out, &Continuation{
		Strategy:     StrategySimpleLoan,
		BorrowToken:  token,
		Amount:       amount,
		PayToken:     token,
		BorrowNative: borrowNative,
		PayNative:    payNative,
		UserData:     userData,
	})
}

// flashLoanExecute runs once this contract holds the borrowed amount of
// token. It repays pairAddr in the same token.
func (s *Swapper) flashLoanExecute(ctx context.Context, cont *Continuation, pairAddr common.Hash) error {
	if cont.BorrowNative {
		if err := s.unwrap(ctx, cont.Amount); err != nil {
			return err
		}
	}

	fee, amountToRepay, err := LoanRepayment(cont.Amount)
	if err != nil {
		return fmt.Errorf("loan repayment: %w", err)
	}

	tokenBorrowed := s.identity(cont.BorrowToken, cont.BorrowNative)
	tokenToRepay := s.identity(cont.BorrowToken, cont.PayNative)
	if err := s.executor.Execute(ctx, tokenBorrowed, cont.Amount, tokenToRepay, amountToRepay, cont.UserData); err != nil {
		return fmt.Errorf("execute: %w", err)
	}

	if cont.PayNative {
		if err := s.wrap(ctx, amountToRepay); err != nil {
			return err
		}
	}
	if err := s.transfer(ctx, cont.BorrowToken, pairAddr, amountToRepay); err != nil {
		return err
	}

	s.log.Info("flash loan repaid",
		"pair", pairAddr.Hex(),
		"token", cont.BorrowToken.Hex(),
		"amount", cont.Amount.Dec(),
		"fee", fee.Dec(),
		"repaid", amountToRepay.Dec(),
	)
	return nil
}
