package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nknorg/ballot/config"
	"github.com/nknorg/ballot/db"
	"github.com/nknorg/ballot/util/log"
)

var (
	ErrNotInitialized  = errors.New("ledger store is not initialized")
	ErrVersionMismatch = errors.New("ledger store version mismatch")
)

type ChainStore struct {
	st db.IStore

	mu            sync.RWMutex
	currentHeight uint32
}

func NewLedgerStore(st db.IStore) *ChainStore {
	return &ChainStore{
		st: st,
	}
}

// NewLedgerStoreFromConfig opens the leveldb store configured in
// config.Parameters, or an in-memory one if inMemory is set.
func NewLedgerStoreFromConfig(inMemory bool) (*ChainStore, error) {
	var st *db.LevelDBStore
	var err error
	if inMemory {
		st, err = db.NewMemLevelDBStore()
	} else {
		st, err = db.NewLevelDBStore(config.Parameters.ChainDBPath)
	}
	if err != nil {
		return nil, err
	}
	return NewLedgerStore(st), nil
}

func (cs *ChainStore) Close() error {
	return cs.st.Close()
}

// get returns nil without error if the key does not exist.
func (cs *ChainStore) get(key []byte) ([]byte, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	value, err := cs.st.Get(key)
	if err == db.ErrNotFound {
		return nil, nil
	}
	return value, err
}

func (cs *ChainStore) NewStateDB() *StateDB {
	return NewStateDB(cs)
}

func (cs *ChainStore) IsInitialized() (bool, error) {
	version, err := cs.get(VersionKey())
	if err != nil {
		return false, err
	}
	return len(version) > 0, nil
}

// Load checks the store version and loads the current height.
func (cs *ChainStore) Load() error {
	version, err := cs.get(VersionKey())
	if err != nil {
		return err
	}
	if len(version) == 0 {
		return ErrNotInitialized
	}

	log.Info("database Version:", version[0])
	if version[0] != config.DBVersion {
		return fmt.Errorf("%w: have %d, want %d", ErrVersionMismatch, version[0], config.DBVersion)
	}

	height, err := cs.NewStateDB().GetHeight()
	if err != nil {
		return err
	}

	cs.mu.Lock()
	cs.currentHeight = height
	cs.mu.Unlock()

	return nil
}

func (cs *ChainStore) GetHeight() uint32 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.currentHeight
}

// GetOperation returns the operation log entry at height, or nil if there is
// none.
func (cs *ChainStore) GetOperation(height uint32) ([]byte, error) {
	return cs.get(OperationKey(height))
}

func (cs *ChainStore) ResetDB() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if err := cs.st.NewBatch(); err != nil {
		return err
	}
	iter := cs.st.NewIterator(nil)
	for iter.Next() {
		key := make([]byte, len(iter.Key()))
		copy(key, iter.Key())
		cs.st.BatchDelete(key)
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return err
	}

	if err := cs.st.BatchCommit(); err != nil {
		return err
	}
	cs.currentHeight = 0
	return nil
}
