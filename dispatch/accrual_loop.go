package dispatch

import (
	"context"
	"time"

	"github.com/facebookgo/clock"

	"github.com/domeliquid/lendingcore/core"
)

// AccrualLoop periodically calls accrue_bank_interest across every
// bank in a group, so share values stay current between user-driven
// instructions rather than only advancing when someone happens to
// touch a given bank.
type AccrualLoop struct {
	log      core.Log
	clk      clock.Clock
	interval time.Duration
	banks    func() ([]*core.Bank, error)
}

func NewAccrualLoop(log core.Log, clk clock.Clock, interval time.Duration, banks func() ([]*core.Bank, error)) *AccrualLoop {
	return &AccrualLoop{log: log, clk: clk, interval: interval, banks: banks}
}

// Run blocks, sweeping every interval until ctx is cancelled. A single
// bank's accrual failure is logged and skipped rather than aborting
// the sweep for every other bank.
func (a *AccrualLoop) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.log.Info().Msgf("accrual loop started: interval=%s", a.interval)

	for {
		select {
		case <-ctx.Done():
			a.log.Info().Msg("accrual loop stopped")
			return
		case <-ticker.C:
			a.sweep()
		}
	}
}

func (a *AccrualLoop) sweep() {
	banks, err := a.banks()
	if err != nil {
		a.log.Error().Msgf("accrual sweep: failed to list banks: %v", err)
		return
	}

	for _, bank := range banks {
		if err := HandleAccrueBankInterest(a.log, a.clk, bank); err != nil {
			a.log.Error().Msgf("accrual sweep: bank=%s: %v", bank.Id, err)
		}
	}
}
