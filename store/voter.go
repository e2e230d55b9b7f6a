package store

import (
	"bytes"
	"fmt"
	"io"

	"github.com/nknorg/ballot/common"
	"github.com/nknorg/ballot/common/serialization"
)

// Voter is the per address voting record. An address that was never touched
// reads as the zero Voter: no weight, not voted, no delegate.
type Voter struct {
	Weight   uint64          `json:"weight"`
	Voted    bool            `json:"voted"`
	Vote     uint32          `json:"vote"`
	Delegate *common.Uint160 `json:"delegate,omitempty"`
}

func (v *Voter) Serialize(w io.Writer) error {
	if err := serialization.WriteUint64(w, v.Weight); err != nil {
		return fmt.Errorf("voter weight Serialize error: %v", err)
	}
	if err := serialization.WriteBool(w, v.Voted); err != nil {
		return fmt.Errorf("voter voted Serialize error: %v", err)
	}
	if err := serialization.WriteUint32(w, v.Vote); err != nil {
		return fmt.Errorf("voter vote Serialize error: %v", err)
	}
	if err := serialization.WriteBool(w, v.Delegate != nil); err != nil {
		return fmt.Errorf("voter delegate Serialize error: %v", err)
	}
	if v.Delegate != nil {
		if _, err := v.Delegate.Serialize(w); err != nil {
			return fmt.Errorf("voter delegate Serialize error: %v", err)
		}
	}
	return nil
}

func (v *Voter) Deserialize(r io.Reader) error {
	var err error
	if v.Weight, err = serialization.ReadUint64(r); err != nil {
		return fmt.Errorf("Deserialize voter weight error: %v", err)
	}
	if v.Voted, err = serialization.ReadBool(r); err != nil {
		return fmt.Errorf("Deserialize voter voted error: %v", err)
	}
	if v.Vote, err = serialization.ReadUint32(r); err != nil {
		return fmt.Errorf("Deserialize voter vote error: %v", err)
	}
	hasDelegate, err := serialization.ReadBool(r)
	if err != nil {
		return fmt.Errorf("Deserialize voter delegate error: %v", err)
	}
	v.Delegate = nil
	if hasDelegate {
		v.Delegate = new(common.Uint160)
		if err := v.Delegate.Deserialize(r); err != nil {
			return fmt.Errorf("Deserialize voter delegate error: %v", err)
		}
	}
	return nil
}

func (v *Voter) Empty() bool {
	return v.Weight == 0 && !v.Voted && v.Vote == 0 && v.Delegate == nil
}

// Copy returns a deep copy, so callers can never alias the cached record.
func (v *Voter) Copy() *Voter {
	c := *v
	if v.Delegate != nil {
		d := *v.Delegate
		c.Delegate = &d
	}
	return &c
}

func (sdb *StateDB) GetVoter(addr common.Uint160) (*Voter, error) {
	if v, ok := sdb.voters.Load(addr); ok {
		if voter, ok := v.(*Voter); ok {
			return voter.Copy(), nil
		}
	}

	enc, err := sdb.cs.get(VoterKey(addr))
	if err != nil {
		return nil, fmt.Errorf("[GetVoter]can not get voter %v: %w", addr, err)
	}

	voter := &Voter{}
	if len(enc) > 0 {
		if err := voter.Deserialize(bytes.NewReader(enc)); err != nil {
			return nil, fmt.Errorf("[GetVoter]Failed to decode voter %v: %w", addr, err)
		}
	}

	return voter, nil
}

func (sdb *StateDB) SetVoter(addr common.Uint160, voter *Voter) {
	sdb.voters.Store(addr, voter.Copy())
}

func (sdb *StateDB) FinalizeVoters(commit bool) error {
	var err error
	sdb.voters.Range(func(key, value interface{}) bool {
		addr, ok := key.(common.Uint160)
		if !ok {
			err = fmt.Errorf("key %v is not Uint160", key)
			return false
		}
		voter, ok := value.(*Voter)
		if !ok {
			err = fmt.Errorf("value %v is not *Voter", value)
			return false
		}
		if commit {
			if voter.Empty() {
				err = sdb.cs.st.BatchDelete(VoterKey(addr))
			} else {
				buff := bytes.NewBuffer(nil)
				if err = voter.Serialize(buff); err == nil {
					err = sdb.cs.st.BatchPut(VoterKey(addr), buff.Bytes())
				}
			}
			if err != nil {
				return false
			}
		}
		sdb.voters.Delete(addr)
		return true
	})
	return err
}

type VoterEntry struct {
	Address common.Uint160 `json:"address"`
	*Voter
}

// GetVoters iterates every committed voter record in address order.
func (cs *ChainStore) GetVoters() ([]VoterEntry, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	var voters []VoterEntry
	iter := cs.st.NewIterator([]byte{byte(ST_Voter)})
	defer iter.Release()
	for iter.Next() {
		addr, err := common.Uint160ParseFromBytes(iter.Key()[1:])
		if err != nil {
			return nil, err
		}
		voter := &Voter{}
		if err := voter.Deserialize(bytes.NewReader(iter.Value())); err != nil {
			return nil, fmt.Errorf("Failed to decode voter %v: %w", addr, err)
		}
		voters = append(voters, VoterEntry{Address: addr, Voter: voter})
	}
	return voters, iter.Error()
}
