package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/nknorg/ballot/common/serialization"
)

const ProposalNameSize = 32

// ProposalName is a fixed size, right zero padded name.
type ProposalName [ProposalNameSize]byte

// NewProposalName pads s to ProposalNameSize. ok is false if s does not fit.
func NewProposalName(s string) (name ProposalName, ok bool) {
	if len(s) > ProposalNameSize {
		return name, false
	}
	copy(name[:], s)
	return name, true
}

func (n ProposalName) String() string {
	return string(bytes.TrimRight(n[:], "\x00"))
}

func (n ProposalName) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.String())
}

func (n *ProposalName) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	name, ok := NewProposalName(s)
	if !ok {
		return fmt.Errorf("proposal name %q is longer than %d bytes", s, ProposalNameSize)
	}
	*n = name
	return nil
}

type Proposal struct {
	Name      ProposalName `json:"name"`
	VoteCount uint64       `json:"voteCount"`
}

func (p *Proposal) Serialize(w io.Writer) error {
	if err := serialization.WriteVarBytes(w, p.Name[:]); err != nil {
		return fmt.Errorf("proposal name Serialize error: %v", err)
	}
	if err := serialization.WriteUint64(w, p.VoteCount); err != nil {
		return fmt.Errorf("proposal vote count Serialize error: %v", err)
	}
	return nil
}

func (p *Proposal) Deserialize(r io.Reader) error {
	name, err := serialization.ReadVarBytes(r)
	if err != nil {
		return fmt.Errorf("Deserialize proposal name error: %v", err)
	}
	if len(name) != ProposalNameSize {
		return fmt.Errorf("Deserialize proposal name error: invalid length %d", len(name))
	}
	copy(p.Name[:], name)
	if p.VoteCount, err = serialization.ReadUint64(r); err != nil {
		return fmt.Errorf("Deserialize proposal vote count error: %v", err)
	}
	return nil
}

func (sdb *StateDB) GetProposalCount() (uint32, error) {
	if v, ok := sdb.meta.Load(SYS_ProposalCount); ok {
		if count, ok := v.(uint32); ok {
			return count, nil
		}
	}

	enc, err := sdb.cs.get(ProposalCountKey())
	if err != nil {
		return 0, fmt.Errorf("[GetProposalCount]can not get proposal count: %w", err)
	}
	if len(enc) == 0 {
		return 0, nil
	}
	return serialization.ReadUint32(bytes.NewReader(enc))
}

// GetProposal returns nil without error if index is out of range.
func (sdb *StateDB) GetProposal(index uint32) (*Proposal, error) {
	count, err := sdb.GetProposalCount()
	if err != nil {
		return nil, err
	}
	if index >= count {
		return nil, nil
	}

	if v, ok := sdb.proposals.Load(index); ok {
		if p, ok := v.(*Proposal); ok {
			c := *p
			return &c, nil
		}
	}

	enc, err := sdb.cs.get(ProposalKey(index))
	if err != nil {
		return nil, fmt.Errorf("[GetProposal]can not get proposal %d: %w", index, err)
	}
	if len(enc) == 0 {
		return nil, fmt.Errorf("[GetProposal]proposal %d missing from store", index)
	}

	p := &Proposal{}
	if err := p.Deserialize(bytes.NewReader(enc)); err != nil {
		return nil, fmt.Errorf("[GetProposal]Failed to decode proposal %d: %w", index, err)
	}
	return p, nil
}

func (sdb *StateDB) GetProposals() ([]*Proposal, error) {
	count, err := sdb.GetProposalCount()
	if err != nil {
		return nil, err
	}
	proposals := make([]*Proposal, 0, count)
	for i := uint32(0); i < count; i++ {
		p, err := sdb.GetProposal(i)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}
	return proposals, nil
}

// SetProposal stores p at index. Storing at index == count appends.
func (sdb *StateDB) SetProposal(index uint32, p *Proposal) error {
	count, err := sdb.GetProposalCount()
	if err != nil {
		return err
	}
	if index > count {
		return fmt.Errorf("proposal index %d out of range %d", index, count)
	}
	if index == count {
		sdb.meta.Store(SYS_ProposalCount, count+1)
	}
	c := *p
	sdb.proposals.Store(index, &c)
	return nil
}

func (sdb *StateDB) FinalizeProposals(commit bool) error {
	var err error
	sdb.proposals.Range(func(key, value interface{}) bool {
		index, ok := key.(uint32)
		if !ok {
			err = fmt.Errorf("key %v is not uint32", key)
			return false
		}
		p, ok := value.(*Proposal)
		if !ok {
			err = fmt.Errorf("value %v is not *Proposal", value)
			return false
		}
		if commit {
			buff := bytes.NewBuffer(nil)
			if err = p.Serialize(buff); err != nil {
				return false
			}
			if err = sdb.cs.st.BatchPut(ProposalKey(index), buff.Bytes()); err != nil {
				return false
			}
		}
		sdb.proposals.Delete(index)
		return true
	})
	return err
}
