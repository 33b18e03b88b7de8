// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package flashswap

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/common/hexutil"
)

// Strategy tags the route a continuation resumes.
type Strategy string

const (
	StrategySimpleLoan     Strategy = "simple_loan"
	StrategySimpleSwap     Strategy = "simple_swap"
	StrategyTriangularSwap Strategy = "triangular_swap"
)

func (s Strategy) valid() bool {
	switch s {
	case StrategySimpleLoan, StrategySimpleSwap, StrategyTriangularSwap:
		return true
	}
	return false
}

// Wire format separators
const (
	fieldSeparator    = ","
	triangleSeparator = "."
	continuationParts = 8
)

// Triangle is the triangular-swap payload: the pair the borrowed native
// funds are swapped through and the native amount flash-borrowed.
type Triangle struct {
	RepayPair    common.Hash
	NativeAmount *uint256.Int
}

// Continuation carries a flash swap across the pair callback. It is passed
// to the pair as the swap data and handed back verbatim.
type Continuation struct {
	Strategy     Strategy
	BorrowToken  common.Hash
	Amount       *uint256.Int
	PayToken     common.Hash
	BorrowNative bool
	PayNative    bool
	Triangle     *Triangle // only for StrategyTriangularSwap
	UserData     string
}

// Encode renders c as
//
//	tag,borrow,amount,pay,isBorrowNative,isPayNative,payload,userData
//
// Hashes are written as bare hex, amounts in base 10 and the triangular
// payload as <repayPair>.<nativeAmount>.
func (c *Continuation) Encode() string {
	var payload string
	if c.Triangle != nil {
		payload = bareHex(c.Triangle.RepayPair) + triangleSeparator + c.Triangle.NativeAmount.Dec()
	}

	return strings.Join([]string{
		string(c.Strategy),
		bareHex(c.BorrowToken),
		c.Amount.Dec(),
		bareHex(c.PayToken),
		strconv.FormatBool(c.BorrowNative),
		strconv.FormatBool(c.PayNative),
		payload,
		c.UserData,
	}, fieldSeparator)
}

// DecodeContinuation parses a continuation produced by Encode. Everything
// after the seventh separator is user data.
func DecodeContinuation(data string) (*Continuation, error) {
	parts := strings.SplitN(data, fieldSeparator, continuationParts)
	if len(parts) != continuationParts {
		return nil, fmt.Errorf("%w: expected %d fields, got %d", ErrMalformedContinuation, continuationParts, len(parts))
	}

	c := &Continuation{
		Strategy: Strategy(parts[0]),
		UserData: parts[7],
	}
	if !c.Strategy.valid() {
		return nil, fmt.Errorf("%w: %w %q", ErrMalformedContinuation, ErrUnknownStrategy, parts[0])
	}

	var err error
	if c.BorrowToken, err = parseBareHex(parts[1]); err != nil {
		return nil, fmt.Errorf("%w: borrow token: %w", ErrMalformedContinuation, err)
	}
	if c.Amount, err = parseAmount(parts[2]); err != nil {
		return nil, fmt.Errorf("%w: amount: %w", ErrMalformedContinuation, err)
	}
	if c.PayToken, err = parseBareHex(parts[3]); err != nil {
		return nil, fmt.Errorf("%w: pay token: %w", ErrMalformedContinuation, err)
	}
	if c.BorrowNative, err = parseFlag(parts[4]); err != nil {
		return nil, fmt.Errorf("%w: borrow native flag: %w", ErrMalformedContinuation, err)
	}
	if c.PayNative, err = parseFlag(parts[5]); err != nil {
		return nil, fmt.Errorf("%w: pay native flag: %w", ErrMalformedContinuation, err)
	}

	payload := parts[6]
	switch {
	case c.Strategy == StrategyTriangularSwap:
		if c.Triangle, err = decodeTriangle(payload); err != nil {
			return nil, err
		}
	case payload != "":
		return nil, fmt.Errorf("%w: unexpected payload for %s", ErrMalformedContinuation, c.Strategy)
	}
	return c, nil
}

func decodeTriangle(payload string) (*Triangle, error) {
	pair, amount, ok := strings.Cut(payload, triangleSeparator)
	if !ok {
		return nil, fmt.Errorf("%w: triangle payload %q", ErrMalformedContinuation, payload)
	}

	repayPair, err := parseBareHex(pair)
	if err != nil {
		return nil, fmt.Errorf("%w: repay pair: %w", ErrMalformedContinuation, err)
	}
	nativeAmount, err := parseAmount(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: native amount: %w", ErrMalformedContinuation, err)
	}
	return &Triangle{RepayPair: repayPair, NativeAmount: nativeAmount}, nil
}

// parseFlag accepts only the two spellings Encode produces
func parseFlag(s string) (bool, error) {
	switch s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid flag %q", s)
}

// parseAmount accepts base-10 digits without sign or leading zeros
func parseAmount(s string) (*uint256.Int, error) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return nil, fmt.Errorf("non-canonical amount %q", s)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return nil, fmt.Errorf("non-canonical amount %q", s)
		}
	}
	return uint256.FromDecimal(s)
}

// bareHex is the hash as hex without its 0x prefix
func bareHex(h common.Hash) string {
	return hex.EncodeToString(h[:])
}

func parseBareHex(s string) (common.Hash, error) {
	if s != strings.ToLower(s) {
		return common.Hash{}, fmt.Errorf("non-canonical hex %q", s)
	}
	raw, err := hexutil.Decode("0x" + s)
	if err != nil {
		return common.Hash{}, err
	}
	if len(raw) != common.HashLength {
		return common.Hash{}, fmt.Errorf("expected %d bytes, got %d", common.HashLength, len(raw))
	}
	return common.BytesToHash(raw), nil
}
