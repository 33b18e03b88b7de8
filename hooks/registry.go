// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hooks

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/flashswap/flashswap"
)

var (
	ErrInvalidName    = errors.New("invalid hook name")
	ErrDuplicateName  = errors.New("hook name already registered")
	ErrNotRegistered  = errors.New("hook not registered")
	ErrMissingFactory = errors.New("hook has no factory")
)

// names are lowercase words separated by dashes
var validName = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

// Env is what a hook factory may bind to
type Env struct {
	Config   flashswap.Config
	Treasury Treasury
}

// Account is the identity holding borrowed funds: the swapper package
func (e Env) Account() common.Hash {
	return e.Config.PackageHash
}

// Module is a named executor factory
type Module struct {
	Name        string
	Description string
	New         func(env Env) (flashswap.Executor, error)
}

// Registry keeps modules sorted by name for deterministic iteration
type Registry struct {
	modules []Module
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds m. Names are unique.
func (r *Registry) Register(m Module) error {
	if !validName.MatchString(m.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, m.Name)
	}
	if m.New == nil {
		return fmt.Errorf("%w: %s", ErrMissingFactory, m.Name)
	}
	for _, registered := range r.modules {
		if registered.Name == m.Name {
			return fmt.Errorf("%w: %s", ErrDuplicateName, m.Name)
		}
	}
	r.modules = insertSortedByName(r.modules, m)
	return nil
}

// Get returns the module registered as name
func (r *Registry) Get(name string) (Module, bool) {
	for _, m := range r.modules {
		if m.Name == name {
			return m, true
		}
	}
	return Module{}, false
}

// Build instantiates the executor registered as name
func (r *Registry) Build(name string, env Env) (flashswap.Executor, error) {
	m, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	return m.New(env)
}

// Modules returns the registered modules ordered by name
func (r *Registry) Modules() []Module {
	out := make([]Module, len(r.modules))
	copy(out, r.modules)
	return out
}

func insertSortedByName(data []Module, m Module) []Module {
	data = append(data, m)
	sort.Sort(moduleArray(data))
	return data
}

type moduleArray []Module

func (m moduleArray) Len() int           { return len(m) }
func (m moduleArray) Less(i, j int) bool { return m[i].Name < m[j].Name }
func (m moduleArray) Swap(i, j int)      { m[i], m[j] = m[j], m[i] }

// Default holds the built-in hooks
var Default = NewRegistry()

func init() {
	for _, m := range []Module{
		{
			Name:        "nop",
			Description: "does nothing; repayment must already be held",
			New: func(Env) (flashswap.Executor, error) {
				return flashswap.NopExecutor{}, nil
			},
		},
		{
			Name:        "fund",
			Description: "mints whatever is missing to repay",
			New: func(env Env) (flashswap.Executor, error) {
				if env.Treasury == nil {
					return nil, fmt.Errorf("%w: fund needs a treasury", ErrMissingFactory)
				}
				return NewFunder(env.Treasury, env.Config.Native, env.Account(), env.Config.Purse), nil
			},
		},
		{
			Name:        "fail",
			Description: "always fails, reverting the transaction",
			New: func(Env) (flashswap.Executor, error) {
				return Fail{Err: ErrHookFailed}, nil
			},
		},
	} {
		if err := Default.Register(m); err != nil {
			panic(err)
		}
	}
}
