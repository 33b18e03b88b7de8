// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package flashswap

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

// UniswapV2Call is the pair callback. caller is the pair invoking it and
// sender the account the pair declares as having requested the swap.
//
// Only the pair recorded for the context's transaction may call in, and
// only for swaps this contract requested.
func (s *Swapper) UniswapV2Call(
	ctx context.Context,
	caller common.Hash,
	sender common.Hash,
	amount0, amount1 *uint256.Int,
	data string,
) error {
	txID, ok := TxIDFromContext(ctx)
	if !ok {
		s.log.Warn("rejected pair callback",
			"caller", caller.Hex(),
			"reason", "no transaction id",
		)
		return fmt.Errorf("%w: %w", ErrPermissionedPairAccess, ErrMissingTxID)
	}
	if err := s.sessions.claim(txID, caller); err != nil {
		s.log.Warn("rejected pair callback",
			"tx", txID,
			"caller", caller.Hex(),
			"err", err,
		)
		return err
	}
	if sender != s.config.PackageHash {
		s.log.Warn("rejected pair callback",
			"tx", txID,
			"caller", caller.Hex(),
			"sender", sender.Hex(),
		)
		return ErrInvalidContractAddress
	}

	cont, err := DecodeContinuation(data)
	if err != nil {
		return err
	}

	switch cont.Strategy {
	case StrategySimpleLoan:
		return s.flashLoanExecute(ctx, cont, caller)
	case StrategySimpleSwap:
		return s.flashSwapExecute(ctx, cont, caller)
	case StrategyTriangularSwap:
		return s.triangularSwapExecute(ctx, cont, caller)
	default:
		return ErrUnknownStrategy
	}
}
