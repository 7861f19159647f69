package memstore

import (
	"context"
	"testing"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/domeliquid/lendingcore/core"
	"github.com/domeliquid/lendingcore/dispatch"
)

func TestBankStoreCreateGetUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewBankStore()

	bank := &core.Bank{Id: uuid.Must(uuid.NewV4()), Name: "usdc-pool", AssetId: "usdc"}
	assert.NoError(t, s.CreateBank(ctx, bank))
	assert.ErrorIs(t, s.CreateBank(ctx, bank), gorm.ErrDuplicatedKey)

	got, err := s.GetBankById(ctx, bank.Id)
	assert.NoError(t, err)
	assert.Equal(t, "usdc-pool", got.Name)

	byName, err := s.GetBankByName(ctx, "usdc-pool")
	assert.NoError(t, err)
	assert.Equal(t, bank.Id, byName.Id)

	byAsset, err := s.GetBankByAssetId(ctx, "usdc")
	assert.NoError(t, err)
	assert.Equal(t, bank.Id, byAsset.Id)

	_, err = s.GetBankById(ctx, uuid.Must(uuid.NewV4()))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got.Name = "renamed"
	assert.NoError(t, s.UpdateBank(ctx, bank.Id, got))
	reread, err := s.GetBankById(ctx, bank.Id)
	assert.NoError(t, err)
	assert.Equal(t, "renamed", reread.Name)
}

func TestBankStoreMutationIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewBankStore()
	bank := &core.Bank{Id: uuid.Must(uuid.NewV4()), Name: "original"}
	assert.NoError(t, s.CreateBank(ctx, bank))

	got, err := s.GetBankById(ctx, bank.Id)
	assert.NoError(t, err)
	got.Name = "mutated-by-caller"

	reread, err := s.GetBankById(ctx, bank.Id)
	assert.NoError(t, err)
	assert.Equal(t, "original", reread.Name, "store must return independent copies")
}

func TestAccountStoreLookups(t *testing.T) {
	ctx := context.Background()
	s := NewAccountStore()
	groupId := uuid.Must(uuid.NewV4())

	acc := &core.LendingAccount{Id: uuid.Must(uuid.NewV4()), GroupId: groupId, PubKey: "alice", Index: 0}
	assert.NoError(t, s.CreateAccount(ctx, acc))

	got, err := s.GetAccountByPubkey(ctx, groupId, "alice", 0)
	assert.NoError(t, err)
	assert.Equal(t, acc.Id, got.Id)

	list, err := s.ListAccountByPubkey(ctx, groupId, "alice")
	assert.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = s.GetAccountByPubkey(ctx, groupId, "bob", 0)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGroupStorePauseFiltersTradeGroups(t *testing.T) {
	ctx := context.Background()
	s := NewGroupStore()
	clk := clock.NewMock()

	active := core.NewGroup(clk, "admin", "active-group", "")
	paused := core.NewGroup(clk, "admin", "paused-group", "")
	paused.SetPaused(clk, true)

	assert.NoError(t, s.CreateGroup(ctx, active))
	assert.NoError(t, s.CreateGroup(ctx, paused))

	trade, err := s.ListTradeGroups(ctx)
	assert.NoError(t, err)
	assert.Len(t, trade, 1)
	assert.Equal(t, "active-group", trade[0].Name)

	assert.NoError(t, s.DeleteGroup(ctx, "paused-group"))
	_, err = s.GetGroupByName(ctx, "paused-group")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAssetStoreUpsertAndList(t *testing.T) {
	ctx := context.Background()
	s := NewAssetStore()

	asset := &core.BankAsset{AssetId: "usdc", Symbol: "USDC", Precision: 6}
	assert.NoError(t, s.UpsertAsset(ctx, asset))

	got, err := s.GetAsset(ctx, "usdc")
	assert.NoError(t, err)
	assert.Equal(t, "USDC", got.Symbol)

	all, err := s.ListAllAssets(ctx)
	assert.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = s.GetAsset(ctx, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRecordStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewRecordStore()
	clk := clock.NewMock()

	record := dispatch.NewInstructionRecord(clk, "req-1", "alice", uuid.Must(uuid.NewV4()), dispatch.BankDeposit, uuid.Must(uuid.NewV4()), core.One)
	assert.NoError(t, s.CreateRecord(ctx, record))
	assert.ErrorIs(t, s.CreateRecord(ctx, record), gorm.ErrDuplicatedKey)

	clk.Add(1)
	assert.NoError(t, s.UpdateRecordStatus(ctx, "req-1", dispatch.RecordStatusConfirmed, "ok", clk.Now().Unix()))

	got, err := s.GetRecordByRequestId(ctx, "req-1")
	assert.NoError(t, err)
	assert.Equal(t, dispatch.RecordStatusConfirmed, got.Status)

	list, err := s.ListRecords(ctx, "alice", dispatch.BankDeposit, 0, 10)
	assert.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = s.ListRecords(ctx, "alice", dispatch.BankWithdraw, 0, 10)
	assert.NoError(t, err)
	assert.Len(t, list, 0)
}

func TestBankAccountWrapperStoreAccumulates(t *testing.T) {
	ctx := context.Background()
	s := NewBankAccountWrapperStore()

	wrapper := &core.BankAccountWrapper{Balance: &core.Balance{}, Bank: &core.Bank{}}
	assert.NoError(t, s.StorageBankAccount(ctx, wrapper))
	assert.NoError(t, s.StorageBankAccount(ctx, wrapper))
	assert.Len(t, s.Wrappers(), 2)

	result := &core.LiquidationResult{}
	assert.NoError(t, s.StorageLiquidationResult(ctx, result))
	assert.Len(t, s.Liquidations(), 1)
}
