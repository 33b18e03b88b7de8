// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/flashswap/flashswap"
)

var (
	_ flashswap.Contracts     = (*contracts)(nil)
	_ flashswap.Factory       = (*factoryHandle)(nil)
	_ flashswap.Pair          = (*pairHandle)(nil)
	_ flashswap.Token         = (*tokenHandle)(nil)
	_ flashswap.WrappedNative = (*wrappedHandle)(nil)
)

// contracts resolves ledger contracts for one caller
type contracts struct {
	ledger *Ledger
	caller common.Hash
}

// As returns handles that call into the ledger on behalf of caller
func (l *Ledger) As(caller common.Hash) flashswap.Contracts {
	return &contracts{ledger: l, caller: caller}
}

func (c *contracts) Factory(addr common.Hash) (flashswap.Factory, error) {
	if addr != c.ledger.factory {
		return nil, fmt.Errorf("%w: factory %s", flashswap.ErrUnknownContract, addr.Hex())
	}
	return &factoryHandle{ledger: c.ledger}, nil
}

func (c *contracts) Pair(addr common.Hash) (flashswap.Pair, error) {
	c.ledger.mu.RLock()
	_, ok := c.ledger.pairs[addr]
	c.ledger.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: pair %s", flashswap.ErrUnknownContract, addr.Hex())
	}
	return &pairHandle{ledger: c.ledger, caller: c.caller, addr: addr}, nil
}

func (c *contracts) Token(addr common.Hash) (flashswap.Token, error) {
	c.ledger.mu.RLock()
	_, ok := c.ledger.tokens[addr]
	c.ledger.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: token %s", flashswap.ErrUnknownContract, addr.Hex())
	}
	return &tokenHandle{ledger: c.ledger, caller: c.caller, token: addr}, nil
}

func (c *contracts) WrappedNative(addr common.Hash) (flashswap.WrappedNative, error) {
	c.ledger.mu.RLock()
	wrapped := c.ledger.wrapped
	c.ledger.mu.RUnlock()
	if wrapped == (common.Hash{}) || addr != wrapped {
		return nil, fmt.Errorf("%w: wrapped native %s", flashswap.ErrUnknownContract, addr.Hex())
	}
	return &wrappedHandle{tokenHandle{ledger: c.ledger, caller: c.caller, token: addr}}, nil
}

type factoryHandle struct {
	ledger *Ledger
}

func (f *factoryHandle) GetPair(_ context.Context, tokenA, tokenB common.Hash) (common.Hash, error) {
	return f.ledger.GetPair(tokenA, tokenB), nil
}

type pairHandle struct {
	ledger *Ledger
	caller common.Hash
	addr   common.Hash
}

func (p *pairHandle) Token0(context.Context) (common.Hash, error) {
	state, err := p.ledger.GetPairState(p.addr)
	if err != nil {
		return common.Hash{}, err
	}
	return state.Token0, nil
}

func (p *pairHandle) Token1(context.Context) (common.Hash, error) {
	state, err := p.ledger.GetPairState(p.addr)
	if err != nil {
		return common.Hash{}, err
	}
	return state.Token1, nil
}

func (p *pairHandle) Swap(ctx context.Context, amount0Out, amount1Out *uint256.Int, to common.Hash, data string) error {
	return p.ledger.Swap(ctx, p.caller, p.addr, amount0Out, amount1Out, to, data)
}

type tokenHandle struct {
	ledger *Ledger
	caller common.Hash
	token  common.Hash
}

func (t *tokenHandle) BalanceOf(_ context.Context, owner common.Hash) (*uint256.Int, error) {
	return t.ledger.BalanceOf(t.token, owner)
}

func (t *tokenHandle) Transfer(_ context.Context, recipient common.Hash, amount *uint256.Int) error {
	return t.ledger.transfer(t.token, t.caller, recipient, amount)
}

type wrappedHandle struct {
	tokenHandle
}

func (w *wrappedHandle) Withdraw(_ context.Context, toPurse common.Hash, amount *uint256.Int) error {
	return w.ledger.withdraw(w.caller, toPurse, amount)
}

func (w *wrappedHandle) Deposit(_ context.Context, purse common.Hash, amount *uint256.Int) error {
	return w.ledger.deposit(w.caller, purse, amount)
}
