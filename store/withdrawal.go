package store

import (
	"fmt"

	"github.com/nknorg/ballot/common"
)

func (sdb *StateDB) GetPendingWithdrawal(addr common.Uint160) (common.Fixed64, error) {
	amount, err := sdb.loadFixed64(&sdb.withdrawals, PendingWithdrawalKey(addr), addr)
	if err != nil {
		return 0, fmt.Errorf("[GetPendingWithdrawal]can not get pending withdrawal of %v: %w", addr, err)
	}
	return amount, nil
}

func (sdb *StateDB) SetPendingWithdrawal(addr common.Uint160, amount common.Fixed64) {
	sdb.withdrawals.Store(addr, amount)
}

func (sdb *StateDB) FinalizeWithdrawals(commit bool) error {
	return sdb.finalizeFixed64(&sdb.withdrawals, PendingWithdrawalKey, commit)
}
