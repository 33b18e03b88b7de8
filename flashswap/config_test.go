// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package flashswap

import (
	"testing"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		WrappedNative: common.HexToHash("0x01"),
		Reference:     common.HexToHash("0x02"),
		Factory:       common.HexToHash("0xfa"),
		ContractHash:  common.HexToHash("0xc0"),
		PackageHash:   common.HexToHash("0xc1"),
		Purse:         common.HexToHash("0xc2"),
	}
}

func TestConfigVerify(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		err    error
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:   "no reference",
			mutate: func(c *Config) { c.Reference = common.Hash{} },
		},
		{
			name:   "no wrapped native",
			mutate: func(c *Config) { c.WrappedNative = common.Hash{} },
			err:    ErrInvalidConfig,
		},
		{
			name:   "no factory",
			mutate: func(c *Config) { c.Factory = common.Hash{} },
			err:    ErrInvalidConfig,
		},
		{
			name:   "no contract",
			mutate: func(c *Config) { c.ContractHash = common.Hash{} },
			err:    ErrInvalidConfig,
		},
		{
			name:   "no package",
			mutate: func(c *Config) { c.PackageHash = common.Hash{} },
			err:    ErrInvalidConfig,
		},
		{
			name:   "no purse",
			mutate: func(c *Config) { c.Purse = common.Hash{} },
			err:    ErrInvalidConfig,
		},
		{
			name:   "reference is wrapped native",
			mutate: func(c *Config) { c.Reference = c.WrappedNative },
			err:    ErrInvalidConfig,
		},
		{
			name:   "native sentinel is wrapped native",
			mutate: func(c *Config) { c.Native = c.WrappedNative },
			err:    ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			err := cfg.Verify()
			if tt.err == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestConfigEqual(t *testing.T) {
	a, b := testConfig(), testConfig()
	require.True(t, a.Equal(&b))
	require.False(t, a.Equal(nil))

	b.Purse = common.HexToHash("0xdead")
	require.False(t, a.Equal(&b))
	require.Equal(t, ConfigKey, a.Key())
}

func TestStoreInitLoad(t *testing.T) {
	store := NewStore(memdb.New())

	_, err := store.Load()
	require.ErrorIs(t, err, ErrNotInitialized)

	cfg := testConfig()
	cfg.Native = common.HexToHash("0xee")
	require.NoError(t, store.Init(cfg))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.True(t, cfg.Equal(loaded))
}

func TestStoreInitOnce(t *testing.T) {
	store := NewStore(memdb.New())
	require.NoError(t, store.Init(testConfig()))

	other := testConfig()
	other.Factory = common.HexToHash("0xfb")
	require.ErrorIs(t, store.Init(other), ErrAlreadyInitialized)

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, testConfig().Factory, loaded.Factory)
}

func TestStoreRejectsInvalidConfig(t *testing.T) {
	store := NewStore(memdb.New())

	cfg := testConfig()
	cfg.Factory = common.Hash{}
	require.ErrorIs(t, store.Init(cfg), ErrInvalidConfig)

	_, err := store.Load()
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestStoreNamedKeys(t *testing.T) {
	db := memdb.New()
	store := NewStore(db)
	cfg := testConfig()
	require.NoError(t, store.Init(cfg))

	for key, want := range map[string]common.Hash{
		"wcspr":              cfg.WrappedNative,
		"cspr":               cfg.Native,
		"dai":                cfg.Reference,
		"uniswap_v2_factory": cfg.Factory,
		"contract_hash":      cfg.ContractHash,
		"package_hash":       cfg.PackageHash,
		"purse":              cfg.Purse,
	} {
		raw, err := db.Get([]byte(key))
		require.NoError(t, err, key)
		require.Equal(t, want.Bytes(), raw, key)
	}
}

func TestStoreRejectsTruncatedValue(t *testing.T) {
	db := memdb.New()
	store := NewStore(db)
	require.NoError(t, store.Init(testConfig()))
	require.NoError(t, db.Put([]byte("purse"), []byte{1, 2, 3}))

	_, err := store.Load()
	require.ErrorIs(t, err, ErrInvalidConfig)
}
