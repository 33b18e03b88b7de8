// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package flashswap

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

// Factory resolves token pairs. A zero hash means no pair exists.
type Factory interface {
	GetPair(ctx context.Context, tokenA, tokenB common.Hash) (common.Hash, error)
}

// Pair is a constant-product liquidity pair. Swap sends the requested
// outputs to `to` and, when data is non-empty, calls back into the
// recipient before checking the pool invariant.
type Pair interface {
	Token0(ctx context.Context) (common.Hash, error)
	Token1(ctx context.Context) (common.Hash, error)
	Swap(ctx context.Context, amount0Out, amount1Out *uint256.Int, to common.Hash, data string) error
}

// Token is a fungible token. Transfers move funds out of the calling
// contract.
type Token interface {
	BalanceOf(ctx context.Context, owner common.Hash) (*uint256.Int, error)
	Transfer(ctx context.Context, recipient common.Hash, amount *uint256.Int) error
}

// WrappedNative is the token wrapping the native asset
type WrappedNative interface {
	Token
	// Withdraw burns amount of the caller's wrapped tokens and credits
	// toPurse with native funds.
	Withdraw(ctx context.Context, toPurse common.Hash, amount *uint256.Int) error
	// Deposit debits purse and mints amount of wrapped tokens to the caller.
	Deposit(ctx context.Context, purse common.Hash, amount *uint256.Int) error
}

// Contracts resolves contract identities to callable handles. Every call
// made through a handle is made on behalf of the swapper.
type Contracts interface {
	Factory(addr common.Hash) (Factory, error)
	Pair(addr common.Hash) (Pair, error)
	Token(addr common.Hash) (Token, error)
	WrappedNative(addr common.Hash) (WrappedNative, error)
}

// Executor is the user logic run while the swapper holds the borrowed
// funds. By the time Execute returns the swapper must hold amountToRepay of
// tokenToRepay; repayment itself is done by the swapper. If tokenToRepay is
// the native sentinel the funds must sit in the configured purse.
type Executor interface {
	Execute(
		ctx context.Context,
		tokenBorrowed common.Hash,
		amount *uint256.Int,
		tokenToRepay common.Hash,
		amountToRepay *uint256.Int,
		userData string,
	) error
}

// NopExecutor does nothing
type NopExecutor struct{}

func (NopExecutor) Execute(context.Context, common.Hash, *uint256.Int, common.Hash, *uint256.Int, string) error {
	return nil
}

// ExecutorFunc adapts a function to Executor
type ExecutorFunc func(
	ctx context.Context,
	tokenBorrowed common.Hash,
	amount *uint256.Int,
	tokenToRepay common.Hash,
	amountToRepay *uint256.Int,
	userData string,
) error

func (f ExecutorFunc) Execute(
	ctx context.Context,
	tokenBorrowed common.Hash,
	amount *uint256.Int,
	tokenToRepay common.Hash,
	amountToRepay *uint256.Int,
	userData string,
) error {
	return f(ctx, tokenBorrowed, amount, tokenToRepay, amountToRepay, userData)
}
