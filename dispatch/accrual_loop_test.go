package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/domeliquid/lendingcore/core"
)

var errBankListUnavailable = errors.New("bank list unavailable")

func TestAccrualLoopSweepsEveryBankAndSkipsNil(t *testing.T) {
	clk := clock.NewMock()
	log := zerolog.Nop()
	groupId := uuid.Must(uuid.NewV4())

	bankA := newTestBank(clk, groupId, "usdc-pool", "usdc")
	bankB := newTestBank(clk, groupId, "eth-pool", "eth")
	preA, preB := bankA.LastUpdate, bankB.LastUpdate
	clk.Add(3600000000000)

	loop := NewAccrualLoop(log, clk, 5*time.Millisecond, func() ([]*core.Bank, error) {
		return []*core.Bank{bankA, bankB, nil}, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	loop.Run(ctx)

	assert.Greater(t, bankA.LastUpdate, preA)
	assert.Greater(t, bankB.LastUpdate, preB)
}

func TestAccrualLoopSurvivesBankListError(t *testing.T) {
	clk := clock.NewMock()
	log := zerolog.Nop()

	loop := NewAccrualLoop(log, clk, 5*time.Millisecond, func() ([]*core.Bank, error) {
		return nil, errBankListUnavailable
	})

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Millisecond)
	defer cancel()
	loop.Run(ctx)
}
