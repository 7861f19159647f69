// Package dispatch is the wire surface: it decodes an incoming
// instruction envelope into a typed payload and routes it to the
// core/ operation that implements it.
package dispatch

import (
	"encoding/json"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// InstructionType enumerates the 14 instructions the protocol accepts,
// collapsing the teacher's separate bank_* / lending_pool_* naming
// families into one vocabulary.
type InstructionType uint8

const (
	GroupInitialize InstructionType = iota + 1
	GroupConfigure
	LendingPoolAddBank
	LendingPoolConfigureBank
	AccountInitialize
	BankDeposit
	BankWithdraw
	BankBorrow
	BankRepay
	Liquidate
	FlashloanStart
	FlashloanEnd
	AccrueBankInterest
	HandleBankruptcy
)

func (t InstructionType) String() string {
	switch t {
	case GroupInitialize:
		return "group_initialize"
	case GroupConfigure:
		return "group_configure"
	case LendingPoolAddBank:
		return "lending_pool_add_bank"
	case LendingPoolConfigureBank:
		return "lending_pool_configure_bank"
	case AccountInitialize:
		return "account_initialize"
	case BankDeposit:
		return "bank_deposit"
	case BankWithdraw:
		return "bank_withdraw"
	case BankBorrow:
		return "bank_borrow"
	case BankRepay:
		return "bank_repay"
	case Liquidate:
		return "liquidate"
	case FlashloanStart:
		return "flashloan_start"
	case FlashloanEnd:
		return "flashloan_end"
	case AccrueBankInterest:
		return "accrue_bank_interest"
	case HandleBankruptcy:
		return "handle_bankruptcy"
	default:
		return "unknown"
	}
}

func (t InstructionType) Valid() bool {
	return t >= GroupInitialize && t <= HandleBankruptcy
}

// Each *Args struct is the decoded argument set for one InstructionType,
// per the wire table; key accounts (bank, vaults, oracle, signer) are
// resolved by the caller from on-chain/off-chain context rather than
// carried in the args themselves, mirroring the teacher's split between
// a memo's compact action payload and the accounts a transfer already
// names.

type GroupConfigureArgs struct {
	AdminKey    string `json:"adminKey"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type AddBankArgs struct {
	AssetId string          `json:"assetId"`
	Name    string          `json:"name"`
	Config  json.RawMessage `json:"config"`
}

type ConfigureBankArgs struct {
	BankId uuid.UUID       `json:"bankId"`
	Config json.RawMessage `json:"config"`
}

type AccountInitializeArgs struct {
	Index uint8 `json:"index"`
}

type BankDepositArgs struct {
	BankId uuid.UUID       `json:"bankId"`
	Amount decimal.Decimal `json:"amount"`
}

type BankWithdrawArgs struct {
	BankId uuid.UUID       `json:"bankId"`
	Amount decimal.Decimal `json:"amount"`
	All    bool            `json:"all,omitempty"`
}

type BankBorrowArgs struct {
	BankId uuid.UUID       `json:"bankId"`
	Amount decimal.Decimal `json:"amount"`
}

type BankRepayArgs struct {
	BankId uuid.UUID       `json:"bankId"`
	Amount decimal.Decimal `json:"amount"`
	All    bool            `json:"all,omitempty"`
}

type LiquidateArgs struct {
	AssetBankId         uuid.UUID       `json:"assetBankId"`
	LiabilityBankId     uuid.UUID       `json:"liabilityBankId"`
	LiquidateeAccountId uuid.UUID       `json:"liquidateeAccountId"`
	AssetAmount         decimal.Decimal `json:"assetAmount"`
}

type FlashloanStartArgs struct {
	EndIndex int `json:"endIndex"`
}

type FlashloanEndArgs struct{}

type AccrueBankInterestArgs struct {
	BankId uuid.UUID `json:"bankId"`
}

type HandleBankruptcyArgs struct {
	AccountId uuid.UUID `json:"accountId"`
	BankId    uuid.UUID `json:"bankId"`
}
