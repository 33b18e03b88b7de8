// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package flashswap orchestrates flash loans and flash swaps against
// constant-product pairs. A swap is started with StartSwap, resumes in
// UniswapV2Call once the pair has sent the borrowed funds, runs the user
// Executor and repays the pair before the pair's swap returns.
package flashswap

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	log "github.com/luxfi/log"
)

// Swapper is the flash-swap orchestrator
type Swapper struct {
	config    Config
	contracts Contracts
	executor  Executor

	// Logger
	log log.Logger

	sessions *sessions
}

// Option configures a Swapper
type Option func(*Swapper)

// WithExecutor sets the user logic run while funds are borrowed
func WithExecutor(e Executor) Option {
	return func(s *Swapper) {
		s.executor = e
	}
}

// WithLogger sets the logger
func WithLogger(l log.Logger) Option {
	return func(s *Swapper) {
		s.log = l
	}
}

// New creates a swapper acting as cfg.PackageHash. contracts must issue
// calls on behalf of that identity.
func New(cfg Config, contracts Contracts, opts ...Option) (*Swapper, error) {
	if err := cfg.Verify(); err != nil {
		return nil, err
	}

	s := &Swapper{
		config:    cfg,
		contracts: contracts,
		executor:  NopExecutor{},
		log:       log.NewTestLogger(log.InfoLevel),
		sessions:  newSessions(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the swapper configuration
func (s *Swapper) Config() Config {
	return s.config
}

// InFlight returns the number of transactions waiting for a pair callback
func (s *Swapper) InFlight() int {
	return s.sessions.len()
}

// =========================================================================
// Collaborator helpers
// =========================================================================

// getPair looks up the pair for (tokenA, tokenB); zero when absent
func (s *Swapper) getPair(ctx context.Context, tokenA, tokenB common.Hash) (common.Hash, error) {
	factory, err := s.contracts.Factory(s.config.Factory)
	if err != nil {
		return common.Hash{}, err
	}
	pair, err := factory.GetPair(ctx, tokenA, tokenB)
	if err != nil {
		return common.Hash{}, fmt.Errorf("get pair: %w", err)
	}
	return pair, nil
}

// outputAmounts places amount on the output slot of pair that holds token
func (s *Swapper) outputAmounts(
	ctx context.Context,
	pair Pair,
	token common.Hash,
	amount *uint256.Int,
) (*uint256.Int, *uint256.Int, error) {
	token0, err := pair.Token0(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("token0: %w", err)
	}
	token1, err := pair.Token1(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("token1: %w", err)
	}

	amount0Out, amount1Out := new(uint256.Int), new(uint256.Int)
	if token == token0 {
		amount0Out.Set(amount)
	}
	if token == token1 {
		amount1Out.Set(amount)
	}
	return amount0Out, amount1Out, nil
}

func (s *Swapper) balanceOf(ctx context.Context, token, owner common.Hash) (*uint256.Int, error) {
	t, err := s.contracts.Token(token)
	if err != nil {
		return nil, err
	}
	balance, err := t.BalanceOf(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("balance of %s: %w", owner.Hex(), err)
	}
	return balance, nil
}

func (s *Swapper) transfer(ctx context.Context, token, recipient common.Hash, amount *uint256.Int) error {
	t, err := s.contracts.Token(token)
	if err != nil {
		return err
	}
	if err := t.Transfer(ctx, recipient, amount); err != nil {
		return fmt.Errorf("transfer %s to %s: %w", amount.Dec(), recipient.Hex(), err)
	}
	return nil
}

// unwrap converts amount of held wrapped native into native funds in the purse
func (s *Swapper) unwrap(ctx context.Context, amount *uint256.Int) error {
	amount, err := nativeAmount(amount)
	if err != nil {
		return err
	}
	wrapped, err := s.contracts.WrappedNative(s.config.WrappedNative)
	if err != nil {
		return err
	}
	if err := wrapped.Withdraw(ctx, s.config.Purse, amount); err != nil {
		return fmt.Errorf("withdraw: %w", err)
	}
	return nil
}

// wrap converts amount of native funds in the purse into wrapped native
func (s *Swapper) wrap(ctx context.Context, amount *uint256.Int) error {
	amount, err := nativeAmount(amount)
	if err != nil {
		return err
	}
	wrapped, err := s.contracts.WrappedNative(s.config.WrappedNative)
	if err != nil {
		return err
	}
	if err := wrapped.Deposit(ctx, s.config.Purse, amount); err != nil {
		return fmt.Errorf("deposit: %w", err)
	}
	return nil
}

// identity returns the token the user sees: the native sentinel when the
// side was requested as native
func (s *Swapper) identity(token common.Hash, native bool) common.Hash {
	if native {
		return s.config.Native
	}
	return token
}

// initiate opens the session for pairAddr and asks the pair for the
// outputs. The pair calls back into UniswapV2Call before Swap returns.
func (s *Swapper) initiate(
	ctx context.Context,
	pairAddr common.Hash,
	pair Pair,
	amount0Out, amount1Out *uint256.Int,
	cont *Continuation,
) error {
	txID, ok := TxIDFromContext(ctx)
	if !ok {
		return ErrMissingTxID
	}

	closeSession, err := s.sessions.open(txID, pairAddr)
	if err != nil {
		return err
	}
	defer closeSession()

	s.log.Debug("requesting flash swap",
		"tx", txID,
		"strategy", cont.Strategy,
		"pair", pairAddr.Hex(),
		"amount0Out", amount0Out.Dec(),
		"amount1Out", amount1Out.Dec(),
	)

	if err := pair.Swap(ctx, amount0Out, amount1Out, s.config.PackageHash, cont.Encode()); err != nil {
		return fmt.Errorf("%s swap on %s: %w", cont.Strategy, pairAddr.Hex(), err)
	}
	return nil
}
