// Package memstore provides in-memory implementations of every Store
// interface the core/ and dispatch/ packages declare, guarded by
// sync.RWMutex the way the teacher's in-process caches are. They exist
// for tests and single-process deployments; a real deployment backs
// these interfaces with a database instead.
package memstore

import (
	"github.com/domeliquid/lendingcore/core"
	"github.com/domeliquid/lendingcore/dispatch"
)

// clone returns a shallow copy so callers mutating a returned pointer
// never corrupt what's held in the store, matching the copy-on-read
// semantics a real DB round trip would give for free.
func cloneBank(b *core.Bank) *core.Bank {
	cp := *b
	return &cp
}

func cloneAccount(a *core.LendingAccount) *core.LendingAccount {
	cp := *a
	return &cp
}

func cloneGroup(g *core.Group) *core.Group {
	cp := *g
	return &cp
}

func cloneAsset(a *core.BankAsset) *core.BankAsset {
	cp := *a
	return &cp
}

func cloneRecord(r *dispatch.InstructionRecord) *dispatch.InstructionRecord {
	cp := *r
	return &cp
}
