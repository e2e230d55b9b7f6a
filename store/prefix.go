package store

import (
	"encoding/binary"

	"github.com/nknorg/ballot/common"
)

type DataEntryPrefix byte

const (
	// STATE
	ST_Voter             DataEntryPrefix = 0x00
	ST_Proposal          DataEntryPrefix = 0x01
	ST_Bribe             DataEntryPrefix = 0x02
	ST_PendingWithdrawal DataEntryPrefix = 0x03
	ST_Account           DataEntryPrefix = 0x04

	// DATA
	DATA_Operation DataEntryPrefix = 0x10

	//SYSTEM
	SYS_Chairperson   DataEntryPrefix = 0x40
	SYS_Escrow        DataEntryPrefix = 0x41
	SYS_ProposalCount DataEntryPrefix = 0x42
	SYS_CurrentHeight DataEntryPrefix = 0x43

	//CONFIG
	CFG_Version DataEntryPrefix = 0xf0
)

func paddingKey(prefix DataEntryPrefix, key []byte) []byte {
	return append([]byte{byte(prefix)}, key...)
}

func VersionKey() []byte {
	return paddingKey(CFG_Version, nil)
}

func ChairpersonKey() []byte {
	return paddingKey(SYS_Chairperson, nil)
}

func EscrowKey() []byte {
	return paddingKey(SYS_Escrow, nil)
}

func ProposalCountKey() []byte {
	return paddingKey(SYS_ProposalCount, nil)
}

func CurrentHeightKey() []byte {
	return paddingKey(SYS_CurrentHeight, nil)
}

func VoterKey(addr common.Uint160) []byte {
	return paddingKey(ST_Voter, addr.ToArray())
}

func ProposalKey(index uint32) []byte {
	indexBuffer := make([]byte, 4)
	binary.BigEndian.PutUint32(indexBuffer, index)
	return paddingKey(ST_Proposal, indexBuffer)
}

func BribeKey(bribee common.Uint160) []byte {
	return paddingKey(ST_Bribe, bribee.ToArray())
}

func PendingWithdrawalKey(addr common.Uint160) []byte {
	return paddingKey(ST_PendingWithdrawal, addr.ToArray())
}

func AccountKey(addr common.Uint160) []byte {
	return paddingKey(ST_Account, addr.ToArray())
}

// OperationKey uses big endian so the operation log iterates in height order.
func OperationKey(height uint32) []byte {
	heightBuffer := make([]byte, 4)
	binary.BigEndian.PutUint32(heightBuffer, height)
	return paddingKey(DATA_Operation, heightBuffer)
}
