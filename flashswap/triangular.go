// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package flashswap

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

// triangularSwap is used when neither side is the wrapped native token.
// The borrow/pay pair is unlikely to be deeper than the borrow/native and
// pay/native pairs, so:
//
//  1. quote the native amount the borrow pair needs to give out amount
//  2. flash-borrow that native amount from the pay pair
//  3. swap it for the borrow token through the borrow pair
//  4. run the executor
//  5. repay the pay pair in the pay token
//
// Steps 3-5 run in triangularSwapExecute.
func (s *Swapper) triangularSwap(
	ctx context.Context,
	borrow common.Hash,
	amount *uint256.Int,
	pay common.Hash,
	userData string,
) error {
	wrapped := s.config.WrappedNative

	borrowPair, err := s.getPair(ctx, borrow, wrapped)
	if err != nil {
		return err
	}
	if borrowPair == (common.Hash{}) {
		return ErrBorrowTokenNotAvailable
	}
	payPair, err := s.getPair(ctx, pay, wrapped)
	if err != nil {
		return err
	}
	if payPair == (common.Hash{}) {
		return ErrPayTokenNotAvailable
	}

	balanceBefore, err := s.balanceOf(ctx, borrow, borrowPair)
	if err != nil {
		return err
	}
	if balanceBefore.Lt(amount) {
		return fmt.Errorf("%w: borrow pair holds %s, requested %s", ErrAmountTooBig, balanceBefore.Dec(), amount.Dec())
	}
	balanceAfter, err := PostBalance(balanceBefore, amount)
	if err != nil {
		return err
	}

	pairBalanceNative, err := s.balanceOf(ctx, wrapped, borrowPair)
	if err != nil {
		return err
	}
	nativeNeeded, err := RepayAmount(pairBalanceNative, balanceAfter, amount)
	if err != nil {
		return fmt.Errorf("native quote: %w", err)
	}

	return s.triangularSwapHelper(ctx, borrow, amount, pay, borrowPair, payPair, nativeNeeded, userData)
}

// triangularSwapHelper flash-borrows nativeNeeded from payPair
func (s *Swapper) triangularSwapHelper(
	ctx context.Context,
	borrow common.Hash,
	amount *uint256.Int,
	pay common.Hash,
	borrowPair common.Hash,
	payPair common.Hash,
	nativeNeeded *uint256.Int,
	userData string,
) error {
	pair, err := s.contracts.Pair(payPair)
	if err != nil {
		return err
	}
	amount0Out, amount1Out, err := s.outputAmounts(ctx, pair, s.config.WrappedNative, nativeNeeded)
	if err != nil {
		return err
	}

	// Neither outer side is native: the router only picks this route when
	// both tokens differ from the wrapped native token.
	return s.initiate(ctx, payPair, pair, amount0Out, amount1Out, &Continuation{
		Strategy:    StrategyTriangularSwap,
		BorrowToken: borrow,
		Amount:      amount,
		PayToken:    pay,
		Triangle: &Triangle{
			RepayPair:    borrowPair,
			NativeAmount: nativeNeeded,
		},
		UserData: userData,
	})
}

// triangularSwapExecute runs once this contract holds the flash-borrowed
// native amount. payPair is the pair that lent it.
func (s *Swapper) triangularSwapExecute(ctx context.Context, cont *Continuation, payPair common.Hash) error {
	if cont.Triangle == nil {
		return fmt.Errorf("%w: missing triangle payload", ErrMalformedContinuation)
	}
	wrapped := s.config.WrappedNative
	borrowPair := cont.Triangle.RepayPair
	nativeNeeded := cont.Triangle.NativeAmount

	pair, err := s.contracts.Pair(borrowPair)
	if err != nil {
		return err
	}
	amount0Out, amount1Out, err := s.outputAmounts(ctx, pair, cont.BorrowToken, cont.Amount)
	if err != nil {
		return err
	}

	// Trade the borrowed native for the borrow token with a plain swap
	if err := s.transfer(ctx, wrapped, borrowPair, nativeNeeded); err != nil {
		return err
	}
	if err := pair.Swap(ctx, amount0Out, amount1Out, s.config.PackageHash, ""); err != nil {
		return fmt.Errorf("swap on borrow pair %s: %w", borrowPair.Hex(), err)
	}

	pairBalanceNative, err := s.balanceOf(ctx, wrapped, payPair)
	if err != nil {
		return err
	}
	pairBalancePay, err := s.balanceOf(ctx, cont.PayToken, payPair)
	if err != nil {
		return err
	}
	amountToRepay, err := RepayAmount(pairBalancePay, pairBalanceNative, nativeNeeded)
	if err != nil {
		return fmt.Errorf("triangular repayment: %w", err)
	}

	if err := s.executor.Execute(ctx, cont.BorrowToken, cont.Amount, cont.PayToken, amountToRepay, cont.UserData); err != nil {
		return fmt.Errorf("execute: %w", err)
	}

	if err := s.transfer(ctx, cont.PayToken, payPair, amountToRepay); err != nil {
		return err
	}

	s.log.Info("triangular swap repaid",
		"payPair", payPair.Hex(),
		"borrowPair", borrowPair.Hex(),
		"borrow", cont.BorrowToken.Hex(),
		"amount", cont.Amount.Dec(),
		"native", nativeNeeded.Dec(),
		"pay", cont.PayToken.Hex(),
		"repaid", amountToRepay.Dec(),
	)
	return nil
}
