// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package flashswap

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

// Route is the borrow/repay strategy chosen for a token pair
type Route uint8

const (
	// RouteSimpleLoan borrows and repays the same token
	RouteSimpleLoan Route = iota
	// RouteSimpleSwap borrows and repays through one pair with the wrapped
	// native token on one side
	RouteSimpleSwap
	// RouteTriangularSwap borrows wrapped native from the pay pair and
	// swaps it for the borrow token through a second pair
	RouteTriangularSwap
)

func (r Route) String() string {
	return string(r.Strategy())
}

// Strategy returns the continuation tag of r
func (r Route) Strategy() Strategy {
	switch r {
	case RouteSimpleLoan:
		return StrategySimpleLoan
	case RouteSimpleSwap:
		return StrategySimpleSwap
	default:
		return StrategyTriangularSwap
	}
}

// Classification is the outcome of routing a borrow/pay pair
type Classification struct {
	Route        Route
	BorrowToken  common.Hash // with the native sentinel replaced
	PayToken     common.Hash // with the native sentinel replaced
	BorrowNative bool
	PayNative    bool
}

// Classify substitutes the native sentinel with the wrapped native token on
// both sides and picks the route.
func Classify(cfg *Config, borrow, pay common.Hash) Classification {
	c := Classification{
		BorrowToken: borrow,
		PayToken:    pay,
	}
	if c.BorrowToken == cfg.Native {
		c.BorrowNative = true
		c.BorrowToken = cfg.WrappedNative
	}
	if c.PayToken == cfg.Native {
		c.PayNative = true
		c.PayToken = cfg.WrappedNative
	}

	switch {
	case c.BorrowToken == c.PayToken:
		c.Route = RouteSimpleLoan
	case c.BorrowToken == cfg.WrappedNative || c.PayToken == cfg.WrappedNative:
		c.Route = RouteSimpleSwap
	default:
		c.Route = RouteTriangularSwap
	}
	return c
}

// StartSwap borrows amount of borrow and repays in pay. Either side may be
// the native sentinel. The whole round trip, including the Executor, has
// completed when StartSwap returns; any error means the transaction must be
// reverted by the host.
//
// If ctx carries no transaction id one is derived and attached.
func (s *Swapper) StartSwap(
	ctx context.Context,
	borrow common.Hash,
	amount *uint256.Int,
	pay common.Hash,
	userData string,
) error {
	if amount == nil {
		return ErrInvalidAmount
	}
	if _, ok := TxIDFromContext(ctx); !ok {
		ctx = WithTxID(ctx, s.sessions.newTxID(s.config.PackageHash))
	}

	c := Classify(&s.config, borrow, pay)
	s.log.Debug("starting flash swap",
		"route", c.Route,
		"borrow", c.BorrowToken.Hex(),
		"pay", c.PayToken.Hex(),
		"amount", amount.Dec(),
		"borrowNative", c.BorrowNative,
		"payNative", c.PayNative,
	)

	switch c.Route {
	case RouteSimpleLoan:
		return s.flashLoan(ctx, c.BorrowToken, amount, c.BorrowNative, c.PayNative, userData)
	case RouteSimpleSwap:
		return s.flashSwap(ctx, c.BorrowToken, amount, c.PayToken, c.BorrowNative, c.PayNative, userData)
	default:
		return s.triangularSwap(ctx, c.BorrowToken, amount, c.PayToken, userData)
	}
}
