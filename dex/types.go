// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package dex is an in-memory host for flash swaps: fungible tokens, a
// wrapped native token backed by native purses, and Uniswap v2-style
// constant-product pairs created by a single factory. Pairs transfer
// outputs optimistically, call back into the recipient and enforce the
// fee-adjusted constant-product invariant afterwards.
package dex

import (
	"bytes"
	"errors"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/zeebo/blake3"
)

// Pair fee: 3/1000 of every input
const (
	FeeNumerator   = 3
	FeeDenominator = 1000
)

// Storage key prefixes for derived addresses
var (
	pairPrefix = []byte("pair")
)

// Errors - Ledger
var (
	ErrUnknownToken        = errors.New("unknown token")
	ErrTokenExists         = errors.New("token already registered")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInsufficientPurse   = errors.New("insufficient purse balance")
	ErrOverflow            = errors.New("balance overflow")
	ErrInvalidAmount       = errors.New("invalid amount")
)

// Errors - Pairs
var (
	ErrIdenticalTokens          = errors.New("identical tokens")
	ErrPairExists               = errors.New("pair already exists")
	ErrPairNotFound             = errors.New("pair not found")
	ErrLocked                   = errors.New("pair locked")
	ErrInsufficientOutputAmount = errors.New("insufficient output amount")
	ErrInsufficientInputAmount  = errors.New("insufficient input amount")
	ErrInsufficientLiquidity    = errors.New("insufficient liquidity")
	ErrInvalidTo                = errors.New("invalid to")
	ErrConstantProduct          = errors.New("constant product invariant violated")
	ErrNoCallee                 = errors.New("swap recipient cannot receive callbacks")
	ErrNoWrappedNative          = errors.New("wrapped native token not configured")
)

// Pair is the state of one constant-product pair
type Pair struct {
	Address  common.Hash
	Token0   common.Hash // lower token address
	Token1   common.Hash // higher token address
	Reserve0 *uint256.Int
	Reserve1 *uint256.Int

	// locked guards swap against reentrancy
	locked bool
}

func (p *Pair) clone() *Pair {
	return &Pair{
		Address:  p.Address,
		Token0:   p.Token0,
		Token1:   p.Token1,
		Reserve0: p.Reserve0.Clone(),
		Reserve1: p.Reserve1.Clone(),
	}
}

// SortTokens orders two tokens the way pairs store them
func SortTokens(tokenA, tokenB common.Hash) (common.Hash, common.Hash) {
	if bytes.Compare(tokenA[:], tokenB[:]) < 0 {
		return tokenA, tokenB
	}
	return tokenB, tokenA
}

// PairAddress derives the address of the pair for two tokens:
// BLAKE3("pair" || token0 || token1)
func PairAddress(tokenA, tokenB common.Hash) common.Hash {
	token0, token1 := SortTokens(tokenA, tokenB)

	h := blake3.New()
	h.Write(pairPrefix)
	h.Write(token0[:])
	h.Write(token1[:])

	var addr common.Hash
	h.Digest().Read(addr[:])
	return addr
}
