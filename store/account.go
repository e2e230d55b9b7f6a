package store

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/nknorg/ballot/common"
)

type Operation int

const (
	Addition Operation = iota
	Subtraction
)

var (
	ErrInsufficientBalance = errors.New("not sufficient funds")
	ErrBalanceOverflow     = errors.New("balance overflow")
)

func (sdb *StateDB) loadFixed64(cache fixed64Cache, key []byte, id common.Uint160) (common.Fixed64, error) {
	if v, ok := cache.Load(id); ok {
		if value, ok := v.(common.Fixed64); ok {
			return value, nil
		}
	}

	enc, err := sdb.cs.get(key)
	if err != nil {
		return 0, err
	}

	var value common.Fixed64
	if len(enc) > 0 {
		if err := value.Deserialize(bytes.NewReader(enc)); err != nil {
			return 0, err
		}
	}
	return value, nil
}

func (sdb *StateDB) GetBalance(addr common.Uint160) (common.Fixed64, error) {
	balance, err := sdb.loadFixed64(&sdb.accounts, AccountKey(addr), addr)
	if err != nil {
		return 0, fmt.Errorf("[GetBalance]can not get balance of %v: %w", addr, err)
	}
	return balance, nil
}

func (sdb *StateDB) SetBalance(addr common.Uint160, value common.Fixed64) {
	sdb.accounts.Store(addr, value)
}

func (sdb *StateDB) UpdateBalance(addr common.Uint160, value common.Fixed64, op Operation) error {
	if value < 0 {
		return fmt.Errorf("negative value %v", value)
	}

	balance, err := sdb.GetBalance(addr)
	if err != nil {
		return err
	}

	switch op {
	case Addition:
		if balance > math.MaxInt64-value {
			return ErrBalanceOverflow
		}
		sdb.SetBalance(addr, balance+value)
	case Subtraction:
		if balance < value {
			return ErrInsufficientBalance
		}
		sdb.SetBalance(addr, balance-value)
	default:
		return fmt.Errorf("unknown balance operation %v", op)
	}

	return nil
}

// Transfer moves value from one account to another within the overlay.
func (sdb *StateDB) Transfer(from, to common.Uint160, value common.Fixed64) error {
	if err := sdb.UpdateBalance(from, value, Subtraction); err != nil {
		return err
	}
	return sdb.UpdateBalance(to, value, Addition)
}

func (sdb *StateDB) FinalizeAccounts(commit bool) error {
	return sdb.finalizeFixed64(&sdb.accounts, AccountKey, commit)
}

type fixed64Cache interface {
	Load(key interface{}) (interface{}, bool)
	Range(f func(key, value interface{}) bool)
	Delete(key interface{})
}

func (sdb *StateDB) finalizeFixed64(cache fixed64Cache, keyFunc func(common.Uint160) []byte, commit bool) error {
	var err error
	cache.Range(func(key, value interface{}) bool {
		addr, ok := key.(common.Uint160)
		if !ok {
			err = fmt.Errorf("key %v is not Uint160", key)
			return false
		}
		amount, ok := value.(common.Fixed64)
		if !ok {
			err = fmt.Errorf("value %v is not Fixed64", value)
			return false
		}
		if commit {
			if amount == 0 {
				err = sdb.cs.st.BatchDelete(keyFunc(addr))
			} else {
				buff := bytes.NewBuffer(nil)
				if err = amount.Serialize(buff); err == nil {
					err = sdb.cs.st.BatchPut(keyFunc(addr), buff.Bytes())
				}
			}
			if err != nil {
				return false
			}
		}
		cache.Delete(addr)
		return true
	})
	return err
}
