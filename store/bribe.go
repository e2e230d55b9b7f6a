package store

import (
	"bytes"
	"fmt"
	"io"

	"github.com/nknorg/ballot/common"
	"github.com/nknorg/ballot/common/serialization"
)

// Bribe is an unsettled offer to the bribee, keyed by bribee. A zero Amount
// means no bribe is recorded.
type Bribe struct {
	Briber   common.Uint160 `json:"briber"`
	Amount   common.Fixed64 `json:"amount"`
	Proposal uint32         `json:"proposal"`
}

func (b *Bribe) Serialize(w io.Writer) error {
	if _, err := b.Briber.Serialize(w); err != nil {
		return fmt.Errorf("bribe briber Serialize error: %v", err)
	}
	if err := b.Amount.Serialize(w); err != nil {
		return fmt.Errorf("bribe amount Serialize error: %v", err)
	}
	if err := serialization.WriteUint32(w, b.Proposal); err != nil {
		return fmt.Errorf("bribe proposal Serialize error: %v", err)
	}
	return nil
}

func (b *Bribe) Deserialize(r io.Reader) error {
	var err error
	if err = b.Briber.Deserialize(r); err != nil {
		return fmt.Errorf("Deserialize bribe briber error: %v", err)
	}
	if err = b.Amount.Deserialize(r); err != nil {
		return fmt.Errorf("Deserialize bribe amount error: %v", err)
	}
	if b.Proposal, err = serialization.ReadUint32(r); err != nil {
		return fmt.Errorf("Deserialize bribe proposal error: %v", err)
	}
	return nil
}

func (b *Bribe) Empty() bool {
	return b.Amount == 0
}

func (sdb *StateDB) GetBribe(bribee common.Uint160) (*Bribe, error) {
	if v, ok := sdb.bribes.Load(bribee); ok {
		if b, ok := v.(*Bribe); ok {
			c := *b
			return &c, nil
		}
	}

	enc, err := sdb.cs.get(BribeKey(bribee))
	if err != nil {
		return nil, fmt.Errorf("[GetBribe]can not get bribe for %v: %w", bribee, err)
	}

	b := &Bribe{}
	if len(enc) > 0 {
		if err := b.Deserialize(bytes.NewReader(enc)); err != nil {
			return nil, fmt.Errorf("[GetBribe]Failed to decode bribe for %v: %w", bribee, err)
		}
	}
	return b, nil
}

func (sdb *StateDB) SetBribe(bribee common.Uint160, b *Bribe) {
	c := *b
	sdb.bribes.Store(bribee, &c)
}

func (sdb *StateDB) DeleteBribe(bribee common.Uint160) {
	sdb.bribes.Store(bribee, &Bribe{})
}

func (sdb *StateDB) FinalizeBribes(commit bool) error {
	var err error
	sdb.bribes.Range(func(key, value interface{}) bool {
		bribee, ok := key.(common.Uint160)
		if !ok {
			err = fmt.Errorf("key %v is not Uint160", key)
			return false
		}
		b, ok := value.(*Bribe)
		if !ok {
			err = fmt.Errorf("value %v is not *Bribe", value)
			return false
		}
		if commit {
			if b.Empty() {
				err = sdb.cs.st.BatchDelete(BribeKey(bribee))
			} else {
				buff := bytes.NewBuffer(nil)
				if err = b.Serialize(buff); err == nil {
					err = sdb.cs.st.BatchPut(BribeKey(bribee), buff.Bytes())
				}
			}
			if err != nil {
				return false
			}
		}
		sdb.bribes.Delete(bribee)
		return true
	})
	return err
}
