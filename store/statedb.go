package store

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/nknorg/ballot/common"
	"github.com/nknorg/ballot/common/serialization"
)

// StateDB is a write overlay on top of the committed state. Reads fall
// through to the store, writes stay in memory until Finalize(true) flushes
// them in one batch. Dropping a StateDB without committing discards
// everything it holds.
type StateDB struct {
	cs          *ChainStore
	voters      sync.Map
	proposals   sync.Map
	bribes      sync.Map
	withdrawals sync.Map
	accounts    sync.Map
	operations  sync.Map
	meta        sync.Map
}

func NewStateDB(cs *ChainStore) *StateDB {
	return &StateDB{
		cs: cs,
	}
}

func (sdb *StateDB) Finalize(commit bool) error {
	height, err := sdb.GetHeight()
	if err != nil {
		return err
	}

	if commit {
		sdb.cs.mu.Lock()
		defer sdb.cs.mu.Unlock()

		if err := sdb.cs.st.NewBatch(); err != nil {
			return err
		}
	}

	if err := sdb.FinalizeVoters(commit); err != nil {
		return err
	}

	if err := sdb.FinalizeProposals(commit); err != nil {
		return err
	}

	if err := sdb.FinalizeBribes(commit); err != nil {
		return err
	}

	if err := sdb.FinalizeWithdrawals(commit); err != nil {
		return err
	}

	if err := sdb.FinalizeAccounts(commit); err != nil {
		return err
	}

	if err := sdb.FinalizeOperations(commit); err != nil {
		return err
	}

	if err := sdb.FinalizeMeta(commit); err != nil {
		return err
	}

	if commit {
		if err := sdb.cs.st.BatchCommit(); err != nil {
			return err
		}
		sdb.cs.currentHeight = height
	}

	return nil
}

func (sdb *StateDB) loadUint160(prefix DataEntryPrefix) (common.Uint160, error) {
	if v, ok := sdb.meta.Load(prefix); ok {
		if u, ok := v.(common.Uint160); ok {
			return u, nil
		}
	}

	enc, err := sdb.cs.get(paddingKey(prefix, nil))
	if err != nil {
		return common.EmptyUint160, err
	}
	if len(enc) == 0 {
		return common.EmptyUint160, nil
	}
	return common.Uint160ParseFromBytes(enc)
}

func (sdb *StateDB) GetChairperson() (common.Uint160, error) {
	return sdb.loadUint160(SYS_Chairperson)
}

func (sdb *StateDB) SetChairperson(addr common.Uint160) {
	sdb.meta.Store(SYS_Chairperson, addr)
}

func (sdb *StateDB) GetEscrow() (common.Uint160, error) {
	return sdb.loadUint160(SYS_Escrow)
}

func (sdb *StateDB) SetEscrow(addr common.Uint160) {
	sdb.meta.Store(SYS_Escrow, addr)
}

func (sdb *StateDB) SetVersion(version byte) {
	sdb.meta.Store(CFG_Version, version)
}

func (sdb *StateDB) GetHeight() (uint32, error) {
	if v, ok := sdb.meta.Load(SYS_CurrentHeight); ok {
		if height, ok := v.(uint32); ok {
			return height, nil
		}
	}

	enc, err := sdb.cs.get(CurrentHeightKey())
	if err != nil {
		return 0, fmt.Errorf("[GetHeight]can not get current height: %w", err)
	}
	if len(enc) == 0 {
		return 0, nil
	}
	return serialization.ReadUint32(bytes.NewReader(enc))
}

// AppendOperation stores the entry produced by encode as the next entry of the
// operation log and returns its height.
func (sdb *StateDB) AppendOperation(encode func(height uint32) ([]byte, error)) (uint32, error) {
	height, err := sdb.GetHeight()
	if err != nil {
		return 0, err
	}
	height++

	data, err := encode(height)
	if err != nil {
		return 0, err
	}

	sdb.operations.Store(height, data)
	sdb.meta.Store(SYS_CurrentHeight, height)
	return height, nil
}

func (sdb *StateDB) FinalizeOperations(commit bool) error {
	var err error
	sdb.operations.Range(func(key, value interface{}) bool {
		height, ok := key.(uint32)
		if !ok {
			err = fmt.Errorf("key %v is not uint32", key)
			return false
		}
		data, ok := value.([]byte)
		if !ok {
			err = fmt.Errorf("value %v is not []byte", value)
			return false
		}
		if commit {
			if err = sdb.cs.st.BatchPut(OperationKey(height), data); err != nil {
				return false
			}
		}
		sdb.operations.Delete(height)
		return true
	})
	return err
}

func (sdb *StateDB) FinalizeMeta(commit bool) error {
	var err error
	sdb.meta.Range(func(key, value interface{}) bool {
		prefix, ok := key.(DataEntryPrefix)
		if !ok {
			err = fmt.Errorf("key %v is not DataEntryPrefix", key)
			return false
		}
		if commit {
			buff := bytes.NewBuffer(nil)
			switch v := value.(type) {
			case common.Uint160:
				_, err = v.Serialize(buff)
			case uint32:
				err = serialization.WriteUint32(buff, v)
			case byte:
				err = serialization.WriteUint8(buff, v)
			default:
				err = fmt.Errorf("unsupported meta value %v", value)
			}
			if err != nil {
				return false
			}
			if err = sdb.cs.st.BatchPut(paddingKey(prefix, nil), buff.Bytes()); err != nil {
				return false
			}
		}
		sdb.meta.Delete(prefix)
		return true
	})
	return err
}
