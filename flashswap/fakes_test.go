// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package flashswap

import (
	"context"
	"errors"
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

var errFakeInsufficient = errors.New("fake: insufficient balance")

// fakeChain is a minimal host: balances, pairs without invariant checks
// and a purse. Pairs call straight back into the swapper.
type fakeChain struct {
	mu       sync.Mutex
	self     common.Hash
	balances map[common.Hash]map[common.Hash]*uint256.Int
	purses   map[common.Hash]*uint256.Int
	pairs    map[[2]common.Hash]*fakePair

	transfers int
	swapper   *Swapper
}

type fakePair struct {
	chain  *fakeChain
	addr   common.Hash
	token0 common.Hash
	token1 common.Hash

	// overrides of the callback identities
	caller *common.Hash
	sender *common.Hash
	// callbacks is how many times Swap calls back; zero means once
	callbacks int
}

func newFakeChain(self common.Hash) *fakeChain {
	return &fakeChain{
		self:     self,
		balances: make(map[common.Hash]map[common.Hash]*uint256.Int),
		purses:   make(map[common.Hash]*uint256.Int),
		pairs:    make(map[[2]common.Hash]*fakePair),
	}
}

func (c *fakeChain) addPair(addr, tokenA, tokenB common.Hash) *fakePair {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := &fakePair{chain: c, addr: addr, token0: tokenA, token1: tokenB}
	c.pairs[[2]common.Hash{tokenA, tokenB}] = p
	c.pairs[[2]common.Hash{tokenB, tokenA}] = p
	return p
}

func (c *fakeChain) mint(token, owner common.Hash, amount uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.credit(token, owner, uint256.NewInt(amount))
}

func (c *fakeChain) balance(token, owner common.Hash) *uint256.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balanceLocked(token, owner)
}

func (c *fakeChain) balanceLocked(token, owner common.Hash) *uint256.Int {
	if b, ok := c.balances[token][owner]; ok {
		return b.Clone()
	}
	return new(uint256.Int)
}

func (c *fakeChain) purse(purse common.Hash) *uint256.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.purses[purse]; ok {
		return b.Clone()
	}
	return new(uint256.Int)
}

func (c *fakeChain) credit(token, owner common.Hash, amount *uint256.Int) {
	if c.balances[token] == nil {
		c.balances[token] = make(map[common.Hash]*uint256.Int)
	}
	current := c.balanceLocked(token, owner)
	c.balances[token][owner] = current.Add(current, amount)
}

func (c *fakeChain) move(token, from, to common.Hash, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	held := c.balanceLocked(token, from)
	if held.Lt(amount) {
		return errFakeInsufficient
	}
	c.balances[token][from] = held.Sub(held, amount)
	c.credit(token, to, amount)
	return nil
}

// Contracts

func (c *fakeChain) Factory(common.Hash) (Factory, error) { return c, nil }
func (c *fakeChain) Token(addr common.Hash) (Token, error) {
	return &fakeToken{chain: c, addr: addr}, nil
}

func (c *fakeChain) WrappedNative(addr common.Hash) (WrappedNative, error) {
	return &fakeToken{chain: c, addr: addr}, nil
}

func (c *fakeChain) Pair(addr common.Hash) (Pair, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.pairs {
		if p.addr == addr {
			return p, nil
		}
	}
	return nil, ErrUnknownContract
}

func (c *fakeChain) GetPair(_ context.Context, tokenA, tokenB common.Hash) (common.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pairs[[2]common.Hash{tokenA, tokenB}]; ok {
		return p.addr, nil
	}
	return common.Hash{}, nil
}

func (p *fakePair) Token0(context.Context) (common.Hash, error) { return p.token0, nil }
func (p *fakePair) Token1(context.Context) (common.Hash, error) { return p.token1, nil }

func (p *fakePair) Swap(ctx context.Context, amount0Out, amount1Out *uint256.Int, to common.Hash, data string) error {
	c := p.chain
	c.mu.Lock()
	if err := c.move(p.token0, p.addr, to, amount0Out); err != nil {
		c.mu.Unlock()
		return err
	}
	if err := c.move(p.token1, p.addr, to, amount1Out); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	if data == "" {
		return nil
	}
	caller, sender := p.addr, c.self
	if p.caller != nil {
		caller = *p.caller
	}
	if p.sender != nil {
		sender = *p.sender
	}
	for i := 0; i < max(p.callbacks, 1); i++ {
		if err := c.swapper.UniswapV2Call(ctx, caller, sender, amount0Out, amount1Out, data); err != nil {
			return err
		}
	}
	return nil
}

type fakeToken struct {
	chain *fakeChain
	addr  common.Hash
}

func (t *fakeToken) BalanceOf(_ context.Context, owner common.Hash) (*uint256.Int, error) {
	return t.chain.balance(t.addr, owner), nil
}

func (t *fakeToken) Transfer(_ context.Context, recipient common.Hash, amount *uint256.Int) error {
	c := t.chain
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transfers++
	return c.move(t.addr, c.self, recipient, amount)
}

func (t *fakeToken) Withdraw(_ context.Context, toPurse common.Hash, amount *uint256.Int) error {
	c := t.chain
	c.mu.Lock()
	defer c.mu.Unlock()

	held := c.balanceLocked(t.addr, c.self)
	if held.Lt(amount) {
		return errFakeInsufficient
	}
	c.balances[t.addr][c.self] = held.Sub(held, amount)
	current, ok := c.purses[toPurse]
	if !ok {
		current = new(uint256.Int)
	}
	c.purses[toPurse] = new(uint256.Int).Add(current, amount)
	return nil
}

func (t *fakeToken) Deposit(_ context.Context, purse common.Hash, amount *uint256.Int) error {
	c := t.chain
	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.purses[purse]
	if !ok || current.Lt(amount) {
		return errFakeInsufficient
	}
	c.purses[purse] = new(uint256.Int).Sub(current, amount)
	c.credit(t.addr, c.self, amount)
	return nil
}

// call is one executor invocation
type call struct {
	tokenBorrowed common.Hash
	amount        uint64
	tokenToRepay  common.Hash
	amountToRepay uint64
	userData      string
}

// recordingExecutor records calls and then runs fund
type recordingExecutor struct {
	mu    sync.Mutex
	calls []call
	fund  func(ctx context.Context, tokenToRepay common.Hash, amountToRepay *uint256.Int) error
}

func (r *recordingExecutor) Execute(
	ctx context.Context,
	tokenBorrowed common.Hash,
	amount *uint256.Int,
	tokenToRepay common.Hash,
	amountToRepay *uint256.Int,
	userData string,
) error {
	r.mu.Lock()
	r.calls = append(r.calls, call{
		tokenBorrowed: tokenBorrowed,
		amount:        amount.Uint64(),
		tokenToRepay:  tokenToRepay,
		amountToRepay: amountToRepay.Uint64(),
		userData:      userData,
	})
	r.mu.Unlock()

	if r.fund == nil {
		return nil
	}
	return r.fund(ctx, tokenToRepay, amountToRepay)
}
