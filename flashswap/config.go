// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package flashswap

import (
	"errors"
	"fmt"

	"github.com/luxfi/database"
	"github.com/luxfi/geth/common"
)

// ConfigKey is the key used in json config files to specify the swapper config.
const ConfigKey = "flashSwapperConfig"

// Config holds the process-wide identities the swapper works with.
// It is written once at initialization and only read afterwards.
type Config struct {
	// WrappedNative is the wrapped native token every route trades against.
	WrappedNative common.Hash `json:"wrappedNative" yaml:"wrappedNative"`
	// Native is the sentinel callers use to ask for the native asset.
	Native common.Hash `json:"native,omitempty" yaml:"native,omitempty"`
	// Reference is the companion token used to locate a pair when the
	// wrapped native token itself is flash-loaned.
	Reference common.Hash `json:"reference" yaml:"reference"`
	// Factory resolves token pairs to pair contracts.
	Factory common.Hash `json:"factory" yaml:"factory"`
	// ContractHash and PackageHash identify this swapper. Pairs deliver
	// borrowed funds to PackageHash and declare it as the callback sender.
	ContractHash common.Hash `json:"contractHash" yaml:"contractHash"`
	PackageHash  common.Hash `json:"packageHash" yaml:"packageHash"`
	// Purse receives unwrapped native funds and pays for wrapping.
	Purse common.Hash `json:"purse" yaml:"purse"`
}

func (c *Config) Key() string {
	return ConfigKey
}

// Verify checks that every identity the routes depend on is set.
func (c *Config) Verify() error {
	switch {
	case c.WrappedNative == (common.Hash{}):
		return fmt.Errorf("%w: wrapped native token not set", ErrInvalidConfig)
	case c.Factory == (common.Hash{}):
		return fmt.Errorf("%w: factory not set", ErrInvalidConfig)
	case c.ContractHash == (common.Hash{}):
		return fmt.Errorf("%w: contract hash not set", ErrInvalidConfig)
	case c.PackageHash == (common.Hash{}):
		return fmt.Errorf("%w: package hash not set", ErrInvalidConfig)
	case c.Purse == (common.Hash{}):
		return fmt.Errorf("%w: purse not set", ErrInvalidConfig)
	case c.Reference == c.WrappedNative:
		return fmt.Errorf("%w: reference token equals wrapped native token", ErrInvalidConfig)
	case c.Native == c.WrappedNative:
		return fmt.Errorf("%w: native sentinel equals wrapped native token", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) Equal(other *Config) bool {
	if other == nil {
		return false
	}
	return *c == *other
}

// Named keys the config is stored under.
var (
	keyWrappedNative = []byte("wcspr")
	keyNative        = []byte("cspr")
	keyReference     = []byte("dai")
	keyFactory       = []byte("uniswap_v2_factory")
	keyContractHash  = []byte("contract_hash")
	keyPackageHash   = []byte("package_hash")
	keyPurse         = []byte("purse")
)

// Store persists the swapper config as named keys.
type Store struct {
	db database.Database
}

// NewStore creates a config store backed by db
func NewStore(db database.Database) *Store {
	return &Store{db: db}
}

func (s *Store) fields(cfg *Config) []struct {
	key []byte
	val *common.Hash
} {
	return []struct {
		key []byte
		val *common.Hash
	}{
		{keyWrappedNative, &cfg.WrappedNative},
		{keyNative, &cfg.Native},
		{keyReference, &cfg.Reference},
		{keyFactory, &cfg.Factory},
		{keyContractHash, &cfg.ContractHash},
		{keyPackageHash, &cfg.PackageHash},
		{keyPurse, &cfg.Purse},
	}
}

// Init verifies cfg and writes it in a single batch. A store can only be
// initialized once.
func (s *Store) Init(cfg Config) error {
	if err := cfg.Verify(); err != nil {
		return err
	}

	initialized, err := s.db.Has(keyPackageHash)
	if err != nil {
		return err
	}
	if initialized {
		return ErrAlreadyInitialized
	}

	batch := s.db.NewBatch()
	for _, f := range s.fields(&cfg) {
		if err := batch.Put(f.key, f.val.Bytes()); err != nil {
			return err
		}
	}
	return batch.Write()
}

// Load reads the config written by Init
func (s *Store) Load() (*Config, error) {
	cfg := new(Config)
	for _, f := range s.fields(cfg) {
		raw, err := s.db.Get(f.key)
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: missing key %q", ErrNotInitialized, f.key)
		}
		if err != nil {
			return nil, err
		}
		if len(raw) != common.HashLength {
			return nil, fmt.Errorf("%w: key %q has %d bytes", ErrInvalidConfig, f.key, len(raw))
		}
		*f.val = common.BytesToHash(raw)
	}
	return cfg, nil
}
