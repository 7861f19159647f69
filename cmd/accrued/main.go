// Command accrued runs the periodic interest-accrual sweep across
// every bank its bank store lists, standalone from any instruction-triggered
// accrual a deposit/withdraw/borrow/repay call already performs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/facebookgo/clock"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/domeliquid/lendingcore/core"
	"github.com/domeliquid/lendingcore/dispatch"
	"github.com/domeliquid/lendingcore/memstore"
)

var (
	configFile string
	interval   time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "accrued",
		Short: "accrued runs the periodic bank interest-accrual sweep",
		RunE:  run,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default none, flags only)")
	rootCmd.PersistentFlags().DurationVar(&interval, "interval", time.Minute, "sweep interval")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if v := viper.GetDuration("accrual.interval"); v > 0 {
		interval = v
	}

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()
	clk := clock.New()

	// A real deployment points this at a DB-backed core.BankStore; the
	// in-memory store here means the sweep has nothing to accrue until
	// banks are registered through the same process (e.g. by an
	// embedding service), but the wiring — ticker, signal handling,
	// shutdown — is exactly what a persistent deployment reuses.
	banks := memstore.NewBankStore()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop := dispatch.NewAccrualLoop(log, clk, interval, func() ([]*core.Bank, error) {
		return banks.ListBank(ctx)
	})

	go loop.Run(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("accrued: shutting down")
	cancel()
	return nil
}

func loadConfig() error {
	if configFile == "" {
		return nil
	}
	viper.SetConfigFile(configFile)
	return viper.ReadInConfig()
}
