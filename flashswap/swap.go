// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package flashswap

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

// flashSwap borrows amount of borrow and repays in pay through the single
// borrow/pay pair. One side is the wrapped native token, and nearly every
// token trades against it.
func (s *Swapper) flashSwap(
	ctx context.Context,
	borrow common.Hash,
	amount *uint256.Int,
	pay common.Hash,
	borrowNative bool,
	payNative bool,
	userData string,
) error {
	pairAddr, err := s.getPair(ctx, borrow, pay)
	if err != nil {
		return err
	}
	if pairAddr == (common.Hash{}) {
		return ErrPairNotAvailable
	}
	pair, err := s.contracts.Pair(pairAddr)
	if err != nil {
		return err
	}

	amount0Out, amount1Out, err := s.outputAmounts(ctx, pair, borrow, amount)
	if err != nil {
		return err
	}

	return s.initiate(ctx, pairAddr, pair, amount0Out, amount1Out, &Continuation{
		Strategy:     StrategySimpleSwap,
		BorrowToken:  borrow,
		Amount:       amount,
		PayToken:     pay,
		BorrowNative: borrowNative,
		PayNative:    payNative,
		UserData:     userData,
	})
}

// flashSwapExecute runs once this contract holds the borrowed amount. The
// pay amount is quoted from the pair balances, which already reflect the
// outgoing borrow.
func (s *Swapper) flashSwapExecute(ctx context.Context, cont *Continuation, pairAddr common.Hash) error {
	if cont.BorrowNative {
		if err := s.unwrap(ctx, cont.Amount); err != nil {
			return err
		}
	}

	pairBalanceBorrow, err := s.balanceOf(ctx, cont.BorrowToken, pairAddr)
	if err != nil {
		return err
	}
	pairBalancePay, err := s.balanceOf(ctx, cont.PayToken, pairAddr)
	if err != nil {
		return err
	}
	amountToRepay, err := RepayAmount(pairBalancePay, pairBalanceBorrow, cont.Amount)
	if err != nil {
		return fmt.Errorf("swap repayment: %w", err)
	}

	tokenBorrowed := s.identity(cont.BorrowToken, cont.BorrowNative)
	tokenToRepay := s.identity(cont.PayToken, cont.PayNative)
	if err := s.executor.Execute(ctx, tokenBorrowed, cont.Amount, tokenToRepay, amountToRepay, cont.UserData); err != nil {
		return fmt.Errorf("execute: %w", err)
	}

	if cont.PayNative {
		if err := s.wrap(ctx, amountToRepay); err != nil {
			return err
		}
	}
	if err := s.transfer(ctx, cont.PayToken, pairAddr, amountToRepay); err != nil {
		return err
	}

	s.log.Info("flash swap repaid",
		"pair", pairAddr.Hex(),
		"borrow", cont.BorrowToken.Hex(),
		"amount", cont.Amount.Dec(),
		"pay", cont.PayToken.Hex(),
		"repaid", amountToRepay.Dec(),
	)
	return nil
}
