package dispatch

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Envelope is the compact payload a transfer memo carries: which
// account slot is acting, which instruction it invokes, and the
// instruction's own argument bytes. The transfer itself (amount,
// asset, counterparty) already names everything else an instruction
// needs, so the envelope only needs to disambiguate intent.
type Envelope struct {
	AccountIndex uint8           `json:"i"`
	Type         InstructionType `json:"t"`
	Args         json.RawMessage `json:"a,omitempty"`
}

func (e Envelope) Valid() bool {
	return e.Type.Valid()
}

// EncodeEnvelope renders an envelope the way the host transport's memo
// field expects it: JSON, then base64, matching the teacher's
// EncodeAnyMemo.
func EncodeEnvelope(e Envelope) (string, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeEnvelope reverses EncodeEnvelope, accepting the teacher's
// hex-then-base64 double encoding (the host transport hex-encodes the
// memo field before it reaches application code).
func DecodeEnvelope(memo string) (*Envelope, error) {
	hexDecoded, err := hex.DecodeString(memo)
	if err != nil {
		return nil, err
	}
	raw, err := base64.StdEncoding.DecodeString(string(hexDecoded))
	if err != nil {
		return nil, err
	}
	var e Envelope
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// DecodeArgs unmarshals an envelope's argument bytes into a typed
// *Args struct, e.g. DecodeArgs[BankDepositArgs](e).
func DecodeArgs[T any](e *Envelope) (*T, error) {
	var args T
	if len(e.Args) == 0 {
		return &args, nil
	}
	if err := json.Unmarshal(e.Args, &args); err != nil {
		return nil, err
	}
	return &args, nil
}

// IsTransferMemo and IsRefundMemo recognize the host transport's own
// order-correlation memos so the dispatcher can tell a lending
// instruction apart from housekeeping transfers that aren't meant to
// reach it at all.
func IsTransferMemo(memo string) (string, bool) {
	decoded, err := hex.DecodeString(memo)
	if err != nil {
		return "", false
	}
	if strings.HasSuffix(string(decoded), "#transfer") {
		return strings.TrimSuffix(string(decoded), "#transfer"), true
	}
	return "", false
}

func IsRefundMemo(memo string) (string, bool) {
	decoded, err := hex.DecodeString(memo)
	if err != nil {
		return "", false
	}
	if !strings.HasSuffix(string(decoded), "#refund") {
		return "", false
	}
	parts := strings.Split(string(decoded), "#")
	if len(parts) != 3 {
		return "", false
	}
	return parts[0], true
}
