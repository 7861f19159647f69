package core

import (
	"context"
	"strconv"

	"github.com/domeliquid/lendingcore/utils"
	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type (
	AccountStore interface {
		GetAccountById(ctx context.Context, accountId uuid.UUID) (*LendingAccount, error)
		ListAccountByPubkey(ctx context.Context, groupId uuid.UUID, pubkey string) ([]*LendingAccount, error)
		GetAccountByPubkey(ctx context.Context, groupId uuid.UUID, pubkey string, index uint8) (*LendingAccount, error)
		CreateAccount(ctx context.Context, account *LendingAccount) error
		UpsertAccount(ctx context.Context, account *LendingAccount) error
	}

	// LendingAccount is a borrower/lender's position across every bank
	// in a Group. Balances is a fixed N=16 slot array scanned linearly
	// by bank-equality and the Active flag, rather than an unbounded
	// row set: a liquidator or risk check can always enumerate an
	// account's full exposure in one bounded pass.
	LendingAccount struct {
		Id           uuid.UUID       `json:"id"`
		GroupId      uuid.UUID       `json:"groupId"`
		PubKey       string          `json:"pubKey"`
		AccountFlags AccountFlags    `json:"accountFlags"`
		Index        uint8           `json:"index"`
		Balances     [MaxBalances]Balance `json:"balances"`

		CreatedAt int64 `json:"createdAt"`
		UpdatedAt int64 `json:"updatedAt"`
	}
)

type AccountFlags uint8

const (
	DisabledFlag                 AccountFlags = 1 << 0
	InFlashloanFlag              AccountFlags = 1 << 1
	FlashloanEnabledFlag         AccountFlags = 1 << 2
	TransferAuthorityAllowedFlag AccountFlags = 1 << 3
)

func (a *LendingAccount) SetFlag(flag AccountFlags) {
	a.AccountFlags |= flag
}

func (a *LendingAccount) UnsetFlag(flag AccountFlags) {
	a.AccountFlags &= ^flag
}

func (a *LendingAccount) GetFlag(flag AccountFlags) bool {
	return a.AccountFlags&flag != 0
}

func NewAccount(clk clock.Clock, groupId uuid.UUID, pubKey string, index uint8) *LendingAccount {
	return &LendingAccount{
		Id:        uuid.Must(uuid.FromString(utils.GenUuidFromStrings(groupId.String(), pubKey, strconv.Itoa(int(index))))),
		GroupId:   groupId,
		PubKey:    pubKey,
		Index:     index,
		CreatedAt: clk.Now().Unix(),
		UpdatedAt: clk.Now().Unix(),
	}
}

// FindBalance returns the active slot for bankId, or nil if the account
// holds no active position against that bank.
func (a *LendingAccount) FindBalance(bankId uuid.UUID) *Balance {
	for i := range a.Balances {
		if a.Balances[i].Active && a.Balances[i].BankId == bankId {
			return &a.Balances[i]
		}
	}
	return nil
}

// FindOrCreateBalance returns the active slot for bankId, reusing a
// deactivated slot if one names the same bank, or else the first free
// slot. ErrSlotsFull if every slot is active and none matches.
func (a *LendingAccount) FindOrCreateBalance(clk clock.Clock, bankId uuid.UUID) (*Balance, error) {
	if b := a.FindBalance(bankId); b != nil {
		return b, nil
	}

	var reusable *Balance
	for i := range a.Balances {
		if !a.Balances[i].Active {
			if a.Balances[i].BankId == bankId {
				reusable = &a.Balances[i]
				break
			}
			if reusable == nil {
				reusable = &a.Balances[i]
			}
		}
	}
	if reusable == nil {
		return nil, ErrSlotsFull
	}

	*reusable = *NewBalance(clk, bankId)
	return reusable, nil
}

// ActiveBalances returns every slot currently carrying a position.
func (a *LendingAccount) ActiveBalances() []*Balance {
	var active []*Balance
	for i := range a.Balances {
		if a.Balances[i].Active {
			active = append(active, &a.Balances[i])
		}
	}
	return active
}

func GetAccountHealth(totalAssets, totalLiabilities decimal.Decimal) decimal.Decimal {
	health := One

	if totalLiabilities.IsZero() {
		return health
	}

	if totalAssets.IsPositive() {
		health = (totalAssets.Sub(totalLiabilities)).Div(totalAssets)
	}
	return health
}
