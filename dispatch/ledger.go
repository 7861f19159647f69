package dispatch

import (
	"context"
	"database/sql/driver"
	"encoding/json"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// RecordStatus mirrors a transfer's settlement lifecycle on the host
// transport: an instruction is recorded pending as soon as it's
// decoded, then moved to confirmed or failed once the underlying
// token transfer and core/ mutation have actually landed.
type RecordStatus string

const (
	RecordStatusPending   RecordStatus = "pending"
	RecordStatusConfirmed RecordStatus = "confirmed"
	RecordStatusFailed    RecordStatus = "failed"
)

func (s RecordStatus) String() string {
	switch s {
	case RecordStatusPending:
		return "pending"
	case RecordStatusConfirmed:
		return "confirmed"
	case RecordStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type RecordStore interface {
	CreateRecord(ctx context.Context, record *InstructionRecord) error
	UpsertRecord(ctx context.Context, record *InstructionRecord) error
	UpdateRecordStatus(ctx context.Context, requestId string, status RecordStatus, message string, updatedAt int64) error
	GetRecordByRequestId(ctx context.Context, requestId string) (*InstructionRecord, error)
	GetRecordBySnapshotId(ctx context.Context, snapshotId string) (*InstructionRecord, error)
	ListRecords(ctx context.Context, pubKey string, typ InstructionType, createdBeforeAt, limit int64) ([]InstructionRecord, error)
}

// InstructionRecord is the single audit row for one executed
// instruction: the decoded intent (what the teacher split across
// Payment and Operate), the raw transport receipt (what the teacher
// kept in Snapshot), and the outcome once applied.
type InstructionRecord struct {
	RequestId  string `json:"requestId"`
	SnapshotId string `json:"snapshotId,omitempty"`

	PubKey    string          `json:"pubKey"`
	AccountId uuid.UUID       `json:"accountId"`
	Type      InstructionType `json:"type"`
	Status    RecordStatus    `json:"status"`
	Message   string          `json:"message,omitempty"`

	BankId uuid.UUID       `json:"bankId,omitempty"`
	Amount decimal.Decimal `json:"amount,omitempty"`
	Actions []ActionDetail `json:"actions,omitempty"`

	Extra RecordExtra `json:"extra,omitempty"`

	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

// ActionDetail is one leg of a multi-leg instruction (liquidation
// touches four balances; most instructions touch exactly one).
type ActionDetail struct {
	AccountId  uuid.UUID       `json:"accountId"`
	ActionType InstructionType `json:"actionType"`
	BankId     uuid.UUID       `json:"bankId"`
	Amount     decimal.Decimal `json:"amount"`
}

// RecordExtra carries the result payload specific to instructions that
// produce more than a balance delta.
type RecordExtra struct {
	LiquidationResult *LiquidationRecord `json:"liquidationResult,omitempty"`
	BankruptcyResult  *BankruptcyRecord  `json:"bankruptcyResult,omitempty"`
}

type LiquidationRecord struct {
	AssetBankId      uuid.UUID       `json:"assetBankId"`
	LiabilityBankId  uuid.UUID       `json:"liabilityBankId"`
	InsuranceFundFee decimal.Decimal `json:"insuranceFundFee"`
}

type BankruptcyRecord struct {
	LiabilityBankId     uuid.UUID       `json:"liabilityBankId"`
	CoveredByInsurance  decimal.Decimal `json:"coveredByInsurance"`
	SocializedLoss      decimal.Decimal `json:"socializedLoss"`
}

func NewInstructionRecord(clk clock.Clock, requestId, pubKey string, accountId uuid.UUID, typ InstructionType, bankId uuid.UUID, amount decimal.Decimal) *InstructionRecord {
	return &InstructionRecord{
		RequestId: requestId,
		PubKey:    pubKey,
		AccountId: accountId,
		Type:      typ,
		Status:    RecordStatusPending,
		BankId:    bankId,
		Amount:    amount,
		CreatedAt: clk.Now().Unix(),
		UpdatedAt: clk.Now().Unix(),
	}
}

func (r *InstructionRecord) UpdateStatus(clk clock.Clock, status RecordStatus, message string) {
	r.Status = status
	r.Message = message
	r.UpdatedAt = clk.Now().Unix()
}

func (r RecordExtra) Value() (driver.Value, error) {
	valueString, err := json.Marshal(r)
	return string(valueString), err
}

func (r *RecordExtra) Scan(value any) error {
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, r)
}
