package core

import (
	"github.com/gofrs/uuid"
)

// FlashloanInstructionKind identifies what an instruction sysvar slot
// decodes to, the minimum the bracket needs to recognize its own
// closing instruction among whatever else shares the transaction.
type FlashloanInstructionKind string

const FlashloanEndInstructionKind FlashloanInstructionKind = "flashloan_end"

// FlashloanInstruction is the decoded shape of one entry in the host
// transaction's instruction list, as much as flashloan verification
// needs: which program it targets, which account it names, and what
// kind of instruction it is.
type FlashloanInstruction struct {
	Kind      FlashloanInstructionKind
	ProgramId string
	AccountId uuid.UUID
}

// InstructionSysvar is the pull-style collaborator the dispatcher
// supplies at flashloan_start time, giving it read access to the
// other instructions already queued in the same transaction.
type InstructionSysvar interface {
	InstructionAt(index int) (*FlashloanInstruction, error)
}

// StartFlashloan opens a bracket that suspends health checks on this
// account until a matching flashloan_end closes it. It refuses to
// nest: an account already mid-bracket cannot start another one, and
// it requires instructionSysvar to prove a matching flashloan_end
// exists at endIndex in the same transaction before setting the flag
// — a transaction that never actually closes the bracket is rejected
// up front rather than left with a stuck flag.
func StartFlashloan(log Log, account *LendingAccount, instructionSysvar InstructionSysvar, endIndex int, programId string) error {
	if account.GetFlag(InFlashloanFlag) {
		return ErrFlashloanNestingForbidden
	}

	instr, err := instructionSysvar.InstructionAt(endIndex)
	if err != nil {
		return ErrFlashloanIxsSysvarInvalid
	}
	if instr == nil || instr.Kind != FlashloanEndInstructionKind {
		return ErrFlashloanIxsSysvarInvalid
	}
	if instr.ProgramId != programId || instr.AccountId != account.Id {
		return ErrFlashloanIxsSysvarInvalid
	}

	log.Debug().Msgf("flashloan start: account=%s end_index=%d", account.Id, endIndex)
	account.SetFlag(InFlashloanFlag)
	return nil
}

// EndFlashloan closes the bracket and, now that health checks are no
// longer suspended, runs the Initial health check the whole bracket
// deferred. A mismatched end with no preceding start is rejected
// rather than silently treated as a no-op.
func EndFlashloan(log Log, account *LendingAccount, banks map[uuid.UUID]*Bank, bankAccounts []*BankAccountWrapper, priceFeedMgr PriceAdapterMgr) error {
	if !account.GetFlag(InFlashloanFlag) {
		return ErrAccountNotInFlashloan
	}
	account.UnsetFlag(InFlashloanFlag)

	log.Debug().Msgf("flashloan end: account=%s", account.Id)

	engine, err := NewRiskEngineNoFlashloanCheck(account, banks, bankAccounts, priceFeedMgr)
	if err != nil {
		return err
	}
	return engine.CheckAccountHealth(Initial)
}
