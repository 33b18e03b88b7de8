// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

import (
	"context"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	log "github.com/luxfi/log"
)

// Callee is a contract that can receive pair callbacks. caller is the pair
// and sender the account that requested the swap.
type Callee interface {
	UniswapV2Call(
		ctx context.Context,
		caller common.Hash,
		sender common.Hash,
		amount0, amount1 *uint256.Int,
		data string,
	) error
}

// Ledger holds all host state: token balances, native purses, pairs and
// the contracts able to receive callbacks.
//
// Mutations made by a failed transaction are only rolled back when they
// run inside Atomic.
type Ledger struct {
	// txMu serialises transactions run through Atomic
	txMu sync.Mutex

	// mu protects the state below. It is never held across a callback.
	mu sync.RWMutex

	factory common.Hash
	wrapped common.Hash

	// tokens is the set of registered tokens
	tokens map[common.Hash]struct{}

	// balances maps token -> owner -> balance
	balances map[common.Hash]map[common.Hash]*uint256.Int

	// purses holds native funds
	purses map[common.Hash]*uint256.Int

	// pairs maps pair address -> pair state
	pairs map[common.Hash]*Pair

	callees map[common.Hash]Callee

	log log.Logger
}

// NewLedger creates an empty ledger whose factory lives at factory
func NewLedger(factory common.Hash, logger log.Logger) *Ledger {
	if logger == nil {
		logger = log.NewTestLogger(log.InfoLevel)
	}
	return &Ledger{
		factory:  factory,
		tokens:   make(map[common.Hash]struct{}),
		balances: make(map[common.Hash]map[common.Hash]*uint256.Int),
		purses:   make(map[common.Hash]*uint256.Int),
		pairs:    make(map[common.Hash]*Pair),
		callees:  make(map[common.Hash]Callee),
		log:      logger,
	}
}

// Factory returns the factory address
func (l *Ledger) Factory() common.Hash {
	return l.factory
}

// =========================================================================
// Setup
// =========================================================================

// RegisterToken registers a fungible token
func (l *Ledger) RegisterToken(token common.Hash) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.registerToken(token)
}

// RegisterWrappedNative registers the token wrapping the native asset.
// There is at most one.
func (l *Ledger) RegisterWrappedNative(token common.Hash) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.wrapped != (common.Hash{}) {
		return fmt.Errorf("%w: wrapped native is %s", ErrTokenExists, l.wrapped.Hex())
	}
	if err := l.registerToken(token); err != nil {
		return err
	}
	l.wrapped = token
	return nil
}

func (l *Ledger) registerToken(token common.Hash) error {
	if token == (common.Hash{}) {
		return fmt.Errorf("%w: zero address", ErrUnknownToken)
	}
	if _, ok := l.tokens[token]; ok {
		return fmt.Errorf("%w: %s", ErrTokenExists, token.Hex())
	}
	l.tokens[token] = struct{}{}
	l.balances[token] = make(map[common.Hash]*uint256.Int)
	return nil
}

// CreatePair creates the pair for two registered tokens
func (l *Ledger) CreatePair(tokenA, tokenB common.Hash) (common.Hash, error) {
	if tokenA == tokenB {
		return common.Hash{}, ErrIdenticalTokens
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, token := range []common.Hash{tokenA, tokenB} {
		if _, ok := l.tokens[token]; !ok {
			return common.Hash{}, fmt.Errorf("%w: %s", ErrUnknownToken, token.Hex())
		}
	}

	addr := PairAddress(tokenA, tokenB)
	if _, ok := l.pairs[addr]; ok {
		return common.Hash{}, fmt.Errorf("%w: %s", ErrPairExists, addr.Hex())
	}
	token0, token1 := SortTokens(tokenA, tokenB)
	l.pairs[addr] = &Pair{
		Address:  addr,
		Token0:   token0,
		Token1:   token1,
		Reserve0: new(uint256.Int),
		Reserve1: new(uint256.Int),
	}

	l.log.Debug("pair created",
		"pair", addr.Hex(),
		"token0", token0.Hex(),
		"token1", token1.Hex(),
	)
	return addr, nil
}

// Mint credits owner with amount of token
func (l *Ledger) Mint(token, owner common.Hash, amount *uint256.Int) error {
	if amount == nil {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.tokens[token]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownToken, token.Hex())
	}
	return l.credit(token, owner, amount)
}

// FundPurse credits purse with amount of native funds
func (l *Ledger) FundPurse(purse common.Hash, amount *uint256.Int) error {
	if amount == nil {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.creditPurse(purse, amount)
}

// AddLiquidity mints amountA of tokenA and amountB of tokenB to their pair
// and syncs its reserves
func (l *Ledger) AddLiquidity(tokenA, tokenB common.Hash, amountA, amountB *uint256.Int) error {
	if amountA == nil || amountB == nil {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.pairs[PairAddress(tokenA, tokenB)]
	if !ok {
		return ErrPairNotFound
	}
	if p.locked {
		return ErrLocked
	}
	if err := l.credit(tokenA, p.Address, amountA); err != nil {
		return err
	}
	if err := l.credit(tokenB, p.Address, amountB); err != nil {
		return err
	}
	l.sync(p)
	return nil
}

// RegisterCallee makes callee reachable by pair callbacks at addr
func (l *Ledger) RegisterCallee(addr common.Hash, callee Callee) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.callees[addr] = callee
}

// =========================================================================
// Queries
// =========================================================================

// GetPair returns the pair of two tokens, or the zero hash
func (l *Ledger) GetPair(tokenA, tokenB common.Hash) common.Hash {
	addr := PairAddress(tokenA, tokenB)

	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, ok := l.pairs[addr]; !ok {
		return common.Hash{}
	}
	return addr
}

// GetPairState returns a copy of the pair state
func (l *Ledger) GetPairState(addr common.Hash) (*Pair, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.pairs[addr]
	if !ok {
		return nil, ErrPairNotFound
	}
	return p.clone(), nil
}

// BalanceOf returns the token balance of owner
func (l *Ledger) BalanceOf(token, owner common.Hash) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, ok := l.tokens[token]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, token.Hex())
	}
	return l.balance(token, owner), nil
}

// PurseBalance returns the native funds in purse
func (l *Ledger) PurseBalance(purse common.Hash) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if b, ok := l.purses[purse]; ok {
		return b.Clone(), nil
	}
	return new(uint256.Int), nil
}

// =========================================================================
// Transactions
// =========================================================================

// Atomic runs fn as one transaction. If fn fails every state change it made
// is discarded. Transactions are serialised.
func (l *Ledger) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	l.txMu.Lock()
	defer l.txMu.Unlock()

	snap := l.snapshot()
	if err := fn(ctx); err != nil {
		l.restore(snap)
		l.log.Debug("transaction reverted", "err", err)
		return err
	}
	return nil
}

type snapshot struct {
	balances map[common.Hash]map[common.Hash]*uint256.Int
	purses   map[common.Hash]*uint256.Int
	pairs    map[common.Hash]*Pair
}

func (l *Ledger) snapshot() *snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := &snapshot{
		balances: make(map[common.Hash]map[common.Hash]*uint256.Int, len(l.balances)),
		purses:   make(map[common.Hash]*uint256.Int, len(l.purses)),
		pairs:    make(map[common.Hash]*Pair, len(l.pairs)),
	}
	for token, owners := range l.balances {
		copied := make(map[common.Hash]*uint256.Int, len(owners))
		for owner, b := range owners {
			copied[owner] = b.Clone()
		}
		s.balances[token] = copied
	}
	for purse, b := range l.purses {
		s.purses[purse] = b.Clone()
	}
	for addr, p := range l.pairs {
		s.pairs[addr] = p.clone()
	}
	return s
}

func (l *Ledger) restore(s *snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances = s.balances
	l.purses = s.purses
	l.pairs = s.pairs
}

// =========================================================================
// Balance primitives, callers hold mu
// =========================================================================

func (l *Ledger) balance(token, owner common.Hash) *uint256.Int {
	if b, ok := l.balances[token][owner]; ok {
		return b.Clone()
	}
	return new(uint256.Int)
}

func (l *Ledger) credit(token, owner common.Hash, amount *uint256.Int) error {
	owners, ok := l.balances[token]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownToken, token.Hex())
	}
	current, ok := owners[owner]
	if !ok {
		current = new(uint256.Int)
	}
	next, overflow := new(uint256.Int).AddOverflow(current, amount)
	if overflow {
		return ErrOverflow
	}
	owners[owner] = next
	return nil
}

func (l *Ledger) debit(token, owner common.Hash, amount *uint256.Int) error {
	owners, ok := l.balances[token]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownToken, token.Hex())
	}
	current, ok := owners[owner]
	if !ok || current.Lt(amount) {
		return fmt.Errorf("%w: %s holds %s of %s, needs %s",
			ErrInsufficientBalance, owner.Hex(), l.balance(token, owner).Dec(), token.Hex(), amount.Dec())
	}
	owners[owner] = new(uint256.Int).Sub(current, amount)
	return nil
}

func (l *Ledger) move(token, from, to common.Hash, amount *uint256.Int) error {
	if err := l.debit(token, from, amount); err != nil {
		return err
	}
	return l.credit(token, to, amount)
}

func (l *Ledger) creditPurse(purse common.Hash, amount *uint256.Int) error {
	current, ok := l.purses[purse]
	if !ok {
		current = new(uint256.Int)
	}
	next, overflow := new(uint256.Int).AddOverflow(current, amount)
	if overflow {
		return ErrOverflow
	}
	l.purses[purse] = next
	return nil
}

func (l *Ledger) debitPurse(purse common.Hash, amount *uint256.Int) error {
	current, ok := l.purses[purse]
	if !ok || current.Lt(amount) {
		held := new(uint256.Int)
		if ok {
			held = current
		}
		return fmt.Errorf("%w: %s holds %s, needs %s", ErrInsufficientPurse, purse.Hex(), held.Dec(), amount.Dec())
	}
	l.purses[purse] = new(uint256.Int).Sub(current, amount)
	return nil
}

// sync sets the pair reserves to its balances
func (l *Ledger) sync(p *Pair) {
	p.Reserve0 = l.balance(p.Token0, p.Address)
	p.Reserve1 = l.balance(p.Token1, p.Address)
}

// =========================================================================
// Token operations, on behalf of caller
// =========================================================================

func (l *Ledger) transfer(token, caller, recipient common.Hash, amount *uint256.Int) error {
	if amount == nil {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.tokens[token]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownToken, token.Hex())
	}
	return l.move(token, caller, recipient, amount)
}

// withdraw burns wrapped native held by caller and credits purse
func (l *Ledger) withdraw(caller, purse common.Hash, amount *uint256.Int) error {
	if amount == nil {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.wrapped == (common.Hash{}) {
		return ErrNoWrappedNative
	}
	if err := l.debit(l.wrapped, caller, amount); err != nil {
		return err
	}
	return l.creditPurse(purse, amount)
}

// deposit debits purse and mints wrapped native to caller
func (l *Ledger) deposit(caller, purse common.Hash, amount *uint256.Int) error {
	if amount == nil {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.wrapped == (common.Hash{}) {
		return ErrNoWrappedNative
	}
	if err := l.debitPurse(purse, amount); err != nil {
		return err
	}
	return l.credit(l.wrapped, caller, amount)
}
