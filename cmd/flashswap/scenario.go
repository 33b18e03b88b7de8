// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	"github.com/luxfi/flashswap/flashswap"
)

// NativeToken names the native asset in scenarios
const NativeToken = "native"

var (
	errNoTokens        = errors.New("scenario declares no tokens")
	errUnknownToken    = errors.New("unknown token")
	errDuplicateToken  = errors.New("duplicate token")
	errMalformedPool   = errors.New("malformed pool")
	errNoSwaps         = errors.New("scenario declares no swaps")
	errMissingWrapped  = errors.New("scenario declares no wrapped native token")
	errReservedToken   = errors.New("token name is reserved")
	errMalformedAmount = errors.New("malformed amount")
)

// Scenario describes a host state and the swaps run against it. Tokens are
// referred to by name; their addresses are derived from the names.
type Scenario struct {
	Tokens        []string `yaml:"tokens"`
	WrappedNative string   `yaml:"wrapped_native"`
	Reference     string   `yaml:"reference"`
	Pools         []Pool   `yaml:"pools"`
	Swaps         []Swap   `yaml:"swaps"`
}

// Pool seeds one pair
type Pool struct {
	Tokens   [2]string `yaml:"tokens"`
	Reserves [2]string `yaml:"reserves"`
}

// Swap is one StartSwap call, run as its own transaction
type Swap struct {
	Borrow   string `yaml:"borrow"`
	Pay      string `yaml:"pay"`
	Amount   string `yaml:"amount"`
	Hook     string `yaml:"hook"`
	UserData string `yaml:"user_data"`
}

// LoadScenario reads and validates a scenario file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a YAML scenario
func ParseScenario(data []byte) (*Scenario, error) {
	s := &Scenario{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.Verify(); err != nil {
		return nil, err
	}
	return s, nil
}

// Verify checks that every name used is declared and every amount parses
func (s *Scenario) Verify() error {
	if len(s.Tokens) == 0 {
		return errNoTokens
	}
	declared := make(map[string]struct{}, len(s.Tokens))
	for _, name := range s.Tokens {
		if name == NativeToken {
			return fmt.Errorf("%w: %s", errReservedToken, name)
		}
		if _, ok := declared[name]; ok {
			return fmt.Errorf("%w: %s", errDuplicateToken, name)
		}
		declared[name] = struct{}{}
	}
	known := func(name string) error {
		if _, ok := declared[name]; !ok {
			return fmt.Errorf("%w: %q", errUnknownToken, name)
		}
		return nil
	}

	if s.WrappedNative == "" {
		return errMissingWrapped
	}
	if err := known(s.WrappedNative); err != nil {
		return err
	}
	if s.Reference != "" {
		if err := known(s.Reference); err != nil {
			return err
		}
	}

	for i, p := range s.Pools {
		if p.Tokens[0] == p.Tokens[1] {
			return fmt.Errorf("%w %d: identical tokens", errMalformedPool, i)
		}
		for j := range p.Tokens {
			if err := known(p.Tokens[j]); err != nil {
				return fmt.Errorf("pool %d: %w", i, err)
			}
			if _, err := amount(p.Reserves[j]); err != nil {
				return fmt.Errorf("pool %d: %w", i, err)
			}
		}
	}

	if len(s.Swaps) == 0 {
		return errNoSwaps
	}
	for i, sw := range s.Swaps {
		for _, name := range []string{sw.Borrow, sw.Pay} {
			if name == NativeToken {
				continue
			}
			if err := known(name); err != nil {
				return fmt.Errorf("swap %d: %w", i, err)
			}
		}
		if _, err := amount(sw.Amount); err != nil {
			return fmt.Errorf("swap %d: %w", i, err)
		}
	}
	return nil
}

// Config derives the swapper configuration of the scenario
func (s *Scenario) Config() flashswap.Config {
	cfg := flashswap.Config{
		WrappedNative: s.Address(s.WrappedNative),
		Factory:       derive("factory", "uniswap_v2_factory"),
		ContractHash:  derive("contract", "flashswap"),
		PackageHash:   derive("package", "flashswap"),
		Purse:         derive("purse", "flashswap"),
	}
	if s.Reference != "" {
		cfg.Reference = s.Address(s.Reference)
	}
	return cfg
}

// Address resolves a token name. The native asset resolves to the zero
// hash, the native sentinel.
func (s *Scenario) Address(name string) common.Hash {
	if name == NativeToken {
		return common.Hash{}
	}
	return derive("token", name)
}

// derive is BLAKE3(kind || ":" || name)
func derive(kind, name string) common.Hash {
	h := blake3.New()
	h.Write([]byte(kind))
	h.Write([]byte(":"))
	h.Write([]byte(name))

	var out common.Hash
	h.Digest().Read(out[:])
	return out
}

func amount(s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", errMalformedAmount, s, err)
	}
	return v, nil
}
