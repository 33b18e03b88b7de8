// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package hooks provides flashswap executors: a funder that covers the
// repayment shortfall in simulations, a recorder, a failing hook and a
// registry of named hooks.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/flashswap/flashswap"
)

// ErrHookFailed is returned by Fail by default
var ErrHookFailed = errors.New("hook failed")

var (
	_ flashswap.Executor = (*Funder)(nil)
	_ flashswap.Executor = (*Recorder)(nil)
	_ flashswap.Executor = Fail{}
	_ flashswap.Executor = Chain(nil)
)

// Treasury can create funds out of thin air. The dex ledger is one.
type Treasury interface {
	BalanceOf(token, owner common.Hash) (*uint256.Int, error)
	Mint(token, owner common.Hash, amount *uint256.Int) error
	PurseBalance(purse common.Hash) (*uint256.Int, error)
	FundPurse(purse common.Hash, amount *uint256.Int) error
}

// Funder tops up whatever account is short of the repayment: the purse
// when repaying in native funds, the account otherwise.
type Funder struct {
	treasury Treasury
	native   common.Hash
	account  common.Hash
	purse    common.Hash
}

// NewFunder returns a Funder for account and purse. native is the native
// sentinel the swapper reports for native repayments.
func NewFunder(treasury Treasury, native, account, purse common.Hash) *Funder {
	return &Funder{
		treasury: treasury,
		native:   native,
		account:  account,
		purse:    purse,
	}
}

func (f *Funder) Execute(
	_ context.Context,
	_ common.Hash,
	_ *uint256.Int,
	tokenToRepay common.Hash,
	amountToRepay *uint256.Int,
	_ string,
) error {
	if tokenToRepay == f.native {
		held, err := f.treasury.PurseBalance(f.purse)
		if err != nil {
			return err
		}
		if short := shortfall(held, amountToRepay); !short.IsZero() {
			if err := f.treasury.FundPurse(f.purse, short); err != nil {
				return fmt.Errorf("fund purse: %w", err)
			}
		}
		return nil
	}

	held, err := f.treasury.BalanceOf(tokenToRepay, f.account)
	if err != nil {
		return err
	}
	if short := shortfall(held, amountToRepay); !short.IsZero() {
		if err := f.treasury.Mint(tokenToRepay, f.account, short); err != nil {
			return fmt.Errorf("mint %s: %w", tokenToRepay.Hex(), err)
		}
	}
	return nil
}

func shortfall(held, needed *uint256.Int) *uint256.Int {
	if held.Lt(needed) {
		return new(uint256.Int).Sub(needed, held)
	}
	return new(uint256.Int)
}

// Call is one recorded Execute invocation
type Call struct {
	TokenBorrowed common.Hash
	Amount        *uint256.Int
	TokenToRepay  common.Hash
	AmountToRepay *uint256.Int
	UserData      string
}

// Recorder records every call and forwards it to Next when set
type Recorder struct {
	Next flashswap.Executor

	mu    sync.Mutex
	calls []Call
}

func (r *Recorder) Execute(
	ctx context.Context,
	tokenBorrowed common.Hash,
	amount *uint256.Int,
	tokenToRepay common.Hash,
	amountToRepay *uint256.Int,
	userData string,
) error {
	r.mu.Lock()
	r.calls = append(r.calls, Call{
		TokenBorrowed: tokenBorrowed,
		Amount:        amount.Clone(),
		TokenToRepay:  tokenToRepay,
		AmountToRepay: amountToRepay.Clone(),
		UserData:      userData,
	})
	r.mu.Unlock()

	if r.Next == nil {
		return nil
	}
	return r.Next.Execute(ctx, tokenBorrowed, amount, tokenToRepay, amountToRepay, userData)
}

// Calls returns the recorded calls in order
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Fail always returns Err
type Fail struct {
	Err error
}

func (f Fail) Execute(context.Context, common.Hash, *uint256.Int, common.Hash, *uint256.Int, string) error {
	if f.Err == nil {
		return ErrHookFailed
	}
	return f.Err
}

// Chain runs executors in order and stops at the first error
type Chain []flashswap.Executor

func (c Chain) Execute(
	ctx context.Context,
	tokenBorrowed common.Hash,
	amount *uint256.Int,
	tokenToRepay common.Hash,
	amountToRepay *uint256.Int,
	userData string,
) error {
	for i, e := range c {
		if err := e.Execute(ctx, tokenBorrowed, amount, tokenToRepay, amountToRepay, userData); err != nil {
			return fmt.Errorf("hook %d: %w", i, err)
		}
	}
	return nil
}
