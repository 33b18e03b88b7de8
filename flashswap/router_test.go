// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package flashswap

import (
	"testing"

	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cfg := testConfig()
	native, wrapped := cfg.Native, cfg.WrappedNative
	tokenX, tokenY := hashA, hashB

	tests := []struct {
		name   string
		borrow common.Hash
		pay    common.Hash
		want   Classification
	}{
		{
			name:   "native loan",
			borrow: native,
			pay:    native,
			want:   Classification{Route: RouteSimpleLoan, BorrowToken: wrapped, PayToken: wrapped, BorrowNative: true, PayNative: true},
		},
		{
			name:   "wrapped loan",
			borrow: wrapped,
			pay:    wrapped,
			want:   Classification{Route: RouteSimpleLoan, BorrowToken: wrapped, PayToken: wrapped},
		},
		{
			name:   "borrow native repay wrapped",
			borrow: native,
			pay:    wrapped,
			want:   Classification{Route: RouteSimpleLoan, BorrowToken: wrapped, PayToken: wrapped, BorrowNative: true},
		},
		{
			name:   "token loan",
			borrow: tokenX,
			pay:    tokenX,
			want:   Classification{Route: RouteSimpleLoan, BorrowToken: tokenX, PayToken: tokenX},
		},
		{
			name:   "borrow native repay token",
			borrow: native,
			pay:    tokenX,
			want:   Classification{Route: RouteSimpleSwap, BorrowToken: wrapped, PayToken: tokenX, BorrowNative: true},
		},
		{
			name:   "borrow token repay native",
			borrow: tokenX,
			pay:    native,
			want:   Classification{Route: RouteSimpleSwap, BorrowToken: tokenX, PayToken: wrapped, PayNative: true},
		},
		{
			name:   "borrow wrapped repay token",
			borrow: wrapped,
			pay:    tokenX,
			want:   Classification{Route: RouteSimpleSwap, BorrowToken: wrapped, PayToken: tokenX},
		},
		{
			name:   "borrow token repay wrapped",
			borrow: tokenX,
			pay:    wrapped,
			want:   Classification{Route: RouteSimpleSwap, BorrowToken: tokenX, PayToken: wrapped},
		},
		{
			name:   "two tokens",
			borrow: tokenX,
			pay:    tokenY,
			want:   Classification{Route: RouteTriangularSwap, BorrowToken: tokenX, PayToken: tokenY},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Classify(&cfg, tt.borrow, tt.pay))
		})
	}
}

func TestClassifyIsTotal(t *testing.T) {
	cfg := testConfig()
	tokens := []common.Hash{cfg.Native, cfg.WrappedNative, cfg.Reference, hashA, hashB}

	for _, borrow := range tokens {
		for _, pay := range tokens {
			c := Classify(&cfg, borrow, pay)
			require.NotEqual(t, cfg.Native, c.BorrowToken)
			require.NotEqual(t, cfg.Native, c.PayToken)

			switch c.Route {
			case RouteSimpleLoan:
				require.Equal(t, c.BorrowToken, c.PayToken)
			case RouteSimpleSwap:
				require.NotEqual(t, c.BorrowToken, c.PayToken)
				require.True(t, c.BorrowToken == cfg.WrappedNative || c.PayToken == cfg.WrappedNative)
			case RouteTriangularSwap:
				require.NotEqual(t, cfg.WrappedNative, c.BorrowToken)
				require.NotEqual(t, cfg.WrappedNative, c.PayToken)
				require.False(t, c.BorrowNative || c.PayNative)
			default:
				t.Fatalf("unexpected route %d", c.Route)
			}
		}
	}
}

func TestRouteStrategy(t *testing.T) {
	require.Equal(t, StrategySimpleLoan, RouteSimpleLoan.Strategy())
	require.Equal(t, StrategySimpleSwap, RouteSimpleSwap.Strategy())
	require.Equal(t, StrategyTriangularSwap, RouteTriangularSwap.Strategy())
	require.Equal(t, "triangular_swap", RouteTriangularSwap.String())
}
