// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/holiman/uint256"
	"github.com/luxfi/database/memdb"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/luxfi/flashswap/dex"
	"github.com/luxfi/flashswap/flashswap"
	"github.com/luxfi/flashswap/hooks"
)

var parallel bool

var simulateCmd = &cobra.Command{
	Use:   "simulate <scenario.yaml>",
	Short: "Run the swaps of a scenario against an in-memory host",
	Long: `Seeds an in-memory host with the tokens and pools of a scenario, then runs
every swap as its own transaction. A failed swap is reverted and reported;
it does not stop the others.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().BoolVar(&parallel, "parallel", false, "submit all swaps at once")
}

// Outcome is the result of one swap
type Outcome struct {
	Borrow   string `yaml:"borrow"`
	Pay      string `yaml:"pay"`
	Amount   string `yaml:"amount"`
	Route    string `yaml:"route"`
	Reverted bool   `yaml:"reverted"`
	Error    string `yaml:"error,omitempty"`
}

// PoolState is a pool after all swaps
type PoolState struct {
	Tokens   [2]string `yaml:"tokens"`
	Reserves [2]string `yaml:"reserves"`
}

// Report is printed by simulate
type Report struct {
	Swaps []Outcome   `yaml:"swaps"`
	Pools []PoolState `yaml:"pools"`
}

func runSimulate(cmd *cobra.Command, args []string) error {
	s, err := LoadScenario(args[0])
	if err != nil {
		return err
	}
	report, err := Simulate(cmd.Context(), s, parallel)
	if err != nil {
		return err
	}
	return writeReport(cmd.OutOrStdout(), report)
}

func writeReport(w io.Writer, report *Report) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(report)
}

// Simulate builds the host of s and runs its swaps
func Simulate(ctx context.Context, s *Scenario, parallel bool) (*Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	store := flashswap.NewStore(memdb.New())
	if err := store.Init(s.Config()); err != nil {
		return nil, err
	}
	cfg, err := store.Load()
	if err != nil {
		return nil, err
	}

	ledger, err := seed(s, cfg)
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, len(s.Swaps))
	run := func(i int) error {
		outcome, err := simulateSwap(ctx, s, cfg, ledger, s.Swaps[i])
		if err != nil {
			return err
		}
		outcomes[i] = outcome
		return nil
	}

	if parallel {
		var g errgroup.Group
		for i := range s.Swaps {
			g.Go(func() error { return run(i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range s.Swaps {
			if err := run(i); err != nil {
				return nil, err
			}
		}
	}

	report := &Report{Swaps: outcomes}
	for _, p := range s.Pools {
		state, err := ledger.GetPairState(dex.PairAddress(s.Address(p.Tokens[0]), s.Address(p.Tokens[1])))
		if err != nil {
			return nil, err
		}
		reserveA, reserveB := state.Reserve0, state.Reserve1
		if state.Token0 != s.Address(p.Tokens[0]) {
			reserveA, reserveB = reserveB, reserveA
		}
		report.Pools = append(report.Pools, PoolState{
			Tokens:   p.Tokens,
			Reserves: [2]string{reserveA.Dec(), reserveB.Dec()},
		})
	}
	return report, nil
}

// seed registers tokens and pools
func seed(s *Scenario, cfg *flashswap.Config) (*dex.Ledger, error) {
	ledger := dex.NewLedger(cfg.Factory, logger)
	for _, name := range s.Tokens {
		var err error
		if name == s.WrappedNative {
			err = ledger.RegisterWrappedNative(s.Address(name))
		} else {
			err = ledger.RegisterToken(s.Address(name))
		}
		if err != nil {
			return nil, fmt.Errorf("token %s: %w", name, err)
		}
	}
	for _, p := range s.Pools {
		a, b := s.Address(p.Tokens[0]), s.Address(p.Tokens[1])
		if _, err := ledger.CreatePair(a, b); err != nil {
			return nil, fmt.Errorf("pool %s/%s: %w", p.Tokens[0], p.Tokens[1], err)
		}
		reserveA, _ := amount(p.Reserves[0])
		reserveB, _ := amount(p.Reserves[1])
		if err := ledger.AddLiquidity(a, b, reserveA, reserveB); err != nil {
			return nil, fmt.Errorf("pool %s/%s: %w", p.Tokens[0], p.Tokens[1], err)
		}
	}
	return ledger, nil
}

// simulateSwap runs one swap in its own transaction. Swap failures are
// reported in the outcome; only setup failures are returned.
func simulateSwap(
	ctx context.Context,
	s *Scenario,
	cfg *flashswap.Config,
	ledger *dex.Ledger,
	sw Swap,
) (Outcome, error) {
	hookName := sw.Hook
	if hookName == "" {
		hookName = "fund"
	}
	executor, err := hooks.Default.Build(hookName, hooks.Env{Config: *cfg, Treasury: ledger})
	if err != nil {
		return Outcome{}, err
	}

	swapper, err := flashswap.New(*cfg, ledger.As(cfg.PackageHash),
		flashswap.WithExecutor(executor),
		flashswap.WithLogger(logger),
	)
	if err != nil {
		return Outcome{}, err
	}

	borrow, pay := s.Address(sw.Borrow), s.Address(sw.Pay)
	amt, err := amount(sw.Amount)
	if err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{
		Borrow: sw.Borrow,
		Pay:    sw.Pay,
		Amount: amt.Dec(),
		Route:  flashswap.Classify(cfg, borrow, pay).Route.String(),
	}

	err = ledger.Atomic(ctx, func(ctx context.Context) error {
		// the callee slot is rebound for every transaction
		ledger.RegisterCallee(cfg.PackageHash, swapper)
		return swapper.StartSwap(ctx, borrow, new(uint256.Int).Set(amt), pay, sw.UserData)
	})
	if err != nil {
		outcome.Reverted = true
		outcome.Error = err.Error()
		logger.Warn("swap reverted",
			"borrow", sw.Borrow,
			"pay", sw.Pay,
			"amount", outcome.Amount,
			"err", err,
		)
	}
	return outcome, nil
}
