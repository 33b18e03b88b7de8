// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package flashswap

import (
	"github.com/holiman/uint256"
)

// Constant-product pool fee: 0.3% of every leg.
var (
	feeNumerator   = uint256.NewInt(3)
	feeComplement  = uint256.NewInt(997)
	feeDenominator = uint256.NewInt(1000)
	one            = uint256.NewInt(1)
)

// maxNativeBits bounds amounts moved through the native purse
const maxNativeBits = 128

// LoanRepayment returns the fee and total owed for flash-loaning amount of a
// token and repaying in the same token:
//
//	fee = amount*3/997 + 1
//	amountToRepay = amount + fee
func LoanRepayment(amount *uint256.Int) (fee *uint256.Int, amountToRepay *uint256.Int, err error) {
	if amount == nil {
		return nil, nil, ErrInvalidAmount
	}

	scaled, overflow := new(uint256.Int).MulOverflow(amount, feeNumerator)
	if overflow {
		return nil, nil, ErrOverflow
	}
	fee = scaled.Div(scaled, feeComplement)
	if _, overflow = fee.AddOverflow(fee, one); overflow {
		return nil, nil, ErrOverflow
	}

	amountToRepay, overflow = new(uint256.Int).AddOverflow(amount, fee)
	if overflow {
		return nil, nil, ErrOverflow
	}
	return fee, amountToRepay, nil
}

// RepayAmount is the inverse constant-product quote: how much must flow in
// on the reserveIn side for amountRemoved to have left the reserveOut side
// as a fair trade after fees.
//
//	1000*reserveIn*amountRemoved / (997*reserveOut) + 1
//
// reserveOut is the balance after the removal.
func RepayAmount(reserveIn, reserveOut, amountRemoved *uint256.Int) (*uint256.Int, error) {
	if reserveIn == nil || reserveOut == nil || amountRemoved == nil {
		return nil, ErrInvalidAmount
	}

	numerator, overflow := new(uint256.Int).MulOverflow(feeDenominator, reserveIn)
	if overflow {
		return nil, ErrOverflow
	}
	if _, overflow = numerator.MulOverflow(numerator, amountRemoved); overflow {
		return nil, ErrOverflow
	}

	denominator, overflow := new(uint256.Int).MulOverflow(feeComplement, reserveOut)
	if overflow {
		return nil, ErrOverflow
	}
	if denominator.IsZero() {
		return nil, ErrDivisionByZero
	}

	amount := numerator.Div(numerator, denominator)
	if _, overflow = amount.AddOverflow(amount, one); overflow {
		return nil, ErrOverflow
	}
	return amount, nil
}

// PostBalance returns balance - amount
func PostBalance(balance, amount *uint256.Int) (*uint256.Int, error) {
	if balance == nil || amount == nil {
		return nil, ErrInvalidAmount
	}
	post, underflow := new(uint256.Int).SubOverflow(balance, amount)
	if underflow {
		return nil, ErrUnderflow
	}
	return post, nil
}

// nativeAmount checks that amount can move through the native purse
func nativeAmount(amount *uint256.Int) (*uint256.Int, error) {
	if amount.BitLen() > maxNativeBits {
		return nil, ErrNativeAmountOverflow
	}
	return amount, nil
}
