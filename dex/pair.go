// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

// Swap sends amount0Out of token0 and amount1Out of token1 from the pair to
// `to`. With non-empty data `to` is called back before the pair checks that
// enough input arrived to keep the fee-adjusted constant product. sender is
// the account that requested the swap.
//
// A failed swap leaves the optimistic transfer in place; run it inside
// Atomic to discard it.
func (l *Ledger) Swap(
	ctx context.Context,
	sender common.Hash,
	pairAddr common.Hash,
	amount0Out, amount1Out *uint256.Int,
	to common.Hash,
	data string,
) error {
	if amount0Out == nil || amount1Out == nil {
		return ErrInvalidAmount
	}
	if amount0Out.IsZero() && amount1Out.IsZero() {
		return ErrInsufficientOutputAmount
	}

	p, reserve0, reserve1, err := l.lockPair(pairAddr, amount0Out, amount1Out, to)
	if err != nil {
		return err
	}
	defer l.unlockPair(p)

	if len(data) > 0 {
		l.mu.RLock()
		callee, ok := l.callees[to]
		l.mu.RUnlock()
		if !ok {
			return fmt.Errorf("%w: %s", ErrNoCallee, to.Hex())
		}
		if err := callee.UniswapV2Call(ctx, pairAddr, sender, amount0Out, amount1Out, data); err != nil {
			return err
		}
	}

	return l.settle(p, reserve0, reserve1, amount0Out, amount1Out)
}

// lockPair checks the requested outputs against the reserves, locks the
// pair and transfers the outputs. It returns the reserves seen before the
// transfer.
func (l *Ledger) lockPair(
	pairAddr common.Hash,
	amount0Out, amount1Out *uint256.Int,
	to common.Hash,
) (*Pair, *uint256.Int, *uint256.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.pairs[pairAddr]
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrPairNotFound, pairAddr.Hex())
	}
	if p.locked {
		return nil, nil, nil, ErrLocked
	}
	if !amount0Out.Lt(p.Reserve0) || !amount1Out.Lt(p.Reserve1) {
		return nil, nil, nil, fmt.Errorf("%w: reserves %s/%s", ErrInsufficientLiquidity, p.Reserve0.Dec(), p.Reserve1.Dec())
	}
	if to == p.Token0 || to == p.Token1 {
		return nil, nil, nil, ErrInvalidTo
	}

	if !amount0Out.IsZero() {
		if err := l.move(p.Token0, p.Address, to, amount0Out); err != nil {
			return nil, nil, nil, err
		}
	}
	if !amount1Out.IsZero() {
		if err := l.move(p.Token1, p.Address, to, amount1Out); err != nil {
			return nil, nil, nil, err
		}
	}

	p.locked = true
	return p, p.Reserve0.Clone(), p.Reserve1.Clone(), nil
}

func (l *Ledger) unlockPair(p *Pair) {
	l.mu.Lock()
	p.locked = false
	l.mu.Unlock()
}

// settle derives the inputs from the pair balances, enforces
// (b0*1000 - in0*3) * (b1*1000 - in1*3) >= r0 * r1 * 1000^2
// and syncs the reserves.
func (l *Ledger) settle(p *Pair, reserve0, reserve1, amount0Out, amount1Out *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance0 := l.balance(p.Token0, p.Address)
	balance1 := l.balance(p.Token1, p.Address)

	amount0In := inputAmount(balance0, reserve0, amount0Out)
	amount1In := inputAmount(balance1, reserve1, amount1Out)
	if amount0In.IsZero() && amount1In.IsZero() {
		return ErrInsufficientInputAmount
	}

	adjusted0, err := adjustedBalance(balance0, amount0In)
	if err != nil {
		return err
	}
	adjusted1, err := adjustedBalance(balance1, amount1In)
	if err != nil {
		return err
	}

	lhs, overflow := new(uint256.Int).MulOverflow(adjusted0, adjusted1)
	if overflow {
		return ErrOverflow
	}
	rhs, overflow := new(uint256.Int).MulOverflow(reserve0, reserve1)
	if overflow {
		return ErrOverflow
	}
	rhs, overflow = rhs.MulOverflow(rhs, uint256.NewInt(FeeDenominator*FeeDenominator))
	if overflow {
		return ErrOverflow
	}
	if lhs.Lt(rhs) {
		return fmt.Errorf("%w: in %s/%s, out %s/%s",
			ErrConstantProduct, amount0In.Dec(), amount1In.Dec(), amount0Out.Dec(), amount1Out.Dec())
	}

	p.Reserve0 = balance0
	p.Reserve1 = balance1

	l.log.Debug("pair swap settled",
		"pair", p.Address.Hex(),
		"amount0In", amount0In.Dec(),
		"amount1In", amount1In.Dec(),
		"amount0Out", amount0Out.Dec(),
		"amount1Out", amount1Out.Dec(),
		"reserve0", balance0.Dec(),
		"reserve1", balance1.Dec(),
	)
	return nil
}

// inputAmount is balance - (reserve - out), floored at zero
func inputAmount(balance, reserve, out *uint256.Int) *uint256.Int {
	left := new(uint256.Int).Sub(reserve, out)
	if balance.Gt(left) {
		return new(uint256.Int).Sub(balance, left)
	}
	return new(uint256.Int)
}

// adjustedBalance is balance*1000 - in*3
func adjustedBalance(balance, in *uint256.Int) (*uint256.Int, error) {
	scaled, overflow := new(uint256.Int).MulOverflow(balance, uint256.NewInt(FeeDenominator))
	if overflow {
		return nil, ErrOverflow
	}
	fee, overflow := new(uint256.Int).MulOverflow(in, uint256.NewInt(FeeNumerator))
	if overflow {
		return nil, ErrOverflow
	}
	// in <= balance, so fee <= scaled
	return scaled.Sub(scaled, fee), nil
}

// GetAmountOut quotes the output of a plain swap of amountIn against the
// given reserves
func GetAmountOut(amountIn, reserveIn, reserveOut *uint256.Int) (*uint256.Int, error) {
	if amountIn == nil || amountIn.IsZero() {
		return nil, ErrInsufficientInputAmount
	}
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return nil, ErrInsufficientLiquidity
	}
	inWithFee, overflow := new(uint256.Int).MulOverflow(amountIn, uint256.NewInt(FeeDenominator-FeeNumerator))
	if overflow {
		return nil, ErrOverflow
	}
	numerator, overflow := new(uint256.Int).MulOverflow(inWithFee, reserveOut)
	if overflow {
		return nil, ErrOverflow
	}
	denominator, overflow := new(uint256.Int).MulOverflow(reserveIn, uint256.NewInt(FeeDenominator))
	if overflow {
		return nil, ErrOverflow
	}
	denominator, overflow = denominator.AddOverflow(denominator, inWithFee)
	if overflow {
		return nil, ErrOverflow
	}
	return numerator.Div(numerator, denominator), nil
}
