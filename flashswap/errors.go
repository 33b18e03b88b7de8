// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package flashswap

import "errors"

// Errors - Pair lookup
var (
	ErrZeroAddress             = errors.New("pair address is zero")
	ErrPairNotAvailable        = errors.New("requested pair is not available")
	ErrBorrowTokenNotAvailable = errors.New("requested borrow token is not available")
	ErrPayTokenNotAvailable    = errors.New("requested pay token is not available")
	ErrUnknownContract         = errors.New("unknown contract")
)

// Errors - Arithmetic
var (
	ErrOverflow             = errors.New("arithmetic overflow")
	ErrUnderflow            = errors.New("arithmetic underflow")
	ErrDivisionByZero       = errors.New("division by zero")
	ErrAmountTooBig         = errors.New("amount is too big")
	ErrNativeAmountOverflow = errors.New("native amount exceeds 128 bits")
	ErrInvalidAmount        = errors.New("invalid amount")
)

// Errors - Access control
var (
	ErrPermissionedPairAccess = errors.New("caller is not the permissioned pair")
	ErrInvalidContractAddress = errors.New("callback sender is not this contract")
	ErrReentrant              = errors.New("reentrancy detected")
	ErrMissingTxID            = errors.New("no transaction id")
)

// Errors - Protocol
var (
	ErrMalformedContinuation = errors.New("malformed continuation")
	ErrUnknownStrategy       = errors.New("unknown strategy")
)

// Errors - Configuration
var (
	ErrInvalidConfig      = errors.New("invalid config")
	ErrAlreadyInitialized = errors.New("already initialized")
	ErrNotInitialized     = errors.New("not initialized")
)
