package common

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	base58 "github.com/itchyny/base58-go"
)

// FOOLPROOFPREFIX used for fool-proof prefix
// base58.BitcoinEncoding[21] = 'N', base58.BitcoinEncoding[18] = 'K'
// 33 = len(base58.Encode( (2**192).Bytes() )),  192 = 8bit * (UINT160SIZE + SHA256CHKSUM)
// ((21 * 58**35) + (18 * 58**34) + (21 * 58**33)) >> 192 = 0x02b824
const FOOLPROOFPREFIX = 0x02b824 + 1 // +1 for avoid affected by lower 192bits shift-add

// PREFIXLEN = len( 0x02b825.Bytes() )
const PREFIXLEN = 3
const UINT160SIZE = 20
const SHA256CHKSUM = 4
const HEXADDRLEN = PREFIXLEN + UINT160SIZE + SHA256CHKSUM

// Uint160 identifies an account on the ledger: voters, bribers, the
// chairperson and the escrow instance itself.
type Uint160 [UINT160SIZE]uint8

var EmptyUint160 Uint160

func (u *Uint160) CompareTo(o Uint160) int {
	return bytes.Compare(u[:], o[:])
}

func (u *Uint160) ToArray() []byte {
	x := make([]byte, UINT160SIZE)
	copy(x, u[:])
	return x
}

func (u *Uint160) Serialize(w io.Writer) (int, error) {
	return w.Write(u[:])
}

func (u *Uint160) Deserialize(r io.Reader) error {
	_, err := io.ReadFull(r, u[:])
	return err
}

func (u Uint160) IsEmpty() bool {
	return u == EmptyUint160
}

func IsValidHexAddr(s []byte) bool {
	if len(s) == HEXADDRLEN && new(big.Int).SetBytes(s[:PREFIXLEN]).Uint64() == FOOLPROOFPREFIX {
		sha := sha256.Sum256(s[:PREFIXLEN+UINT160SIZE])
		chkSum := sha256.Sum256(sha[:])
		return bytes.Equal(s[PREFIXLEN+UINT160SIZE:], chkSum[:SHA256CHKSUM])
	}
	return false
}

func (u Uint160) MarshalJSON() ([]byte, error) {
	str, err := u.ToAddress()
	return []byte("\"" + str + "\""), err
}

func (u *Uint160) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), "\"")
	addr, err := ToScriptHash(str)
	if err != nil {
		return err
	}
	*u = addr
	return nil
}

func (u *Uint160) ToAddress() (string, error) {
	data := append(big.NewInt(FOOLPROOFPREFIX).Bytes(), u.ToArray()...)
	temp := sha256.Sum256(data)
	temps := sha256.Sum256(temp[:])
	data = append(data, temps[0:SHA256CHKSUM]...)

	bi := new(big.Int).SetBytes(data).String()
	encoded, err := base58.BitcoinEncoding.Encode([]byte(bi))
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// String returns the base58 address, or the hex form if encoding fails.
func (u Uint160) String() string {
	addr, err := u.ToAddress()
	if err != nil {
		return u.ToHexString()
	}
	return addr
}

func Uint160ParseFromBytes(f []byte) (Uint160, error) {
	if len(f) != UINT160SIZE {
		return EmptyUint160, errors.New("[Common]: Uint160ParseFromBytes err, len != 20")
	}

	var hash Uint160
	copy(hash[:], f)
	return hash, nil
}

func ToScriptHash(address string) (Uint160, error) {
	decoded, err := base58.BitcoinEncoding.Decode([]byte(address))
	if err != nil {
		return EmptyUint160, err
	}

	bint, ok := new(big.Int).SetString(string(decoded), 10)
	if !ok {
		return EmptyUint160, fmt.Errorf("Base58.Decode[%s] %s NOT a decimal number", address, decoded)
	}

	hex := bint.Bytes()
	if !IsValidHexAddr(hex) {
		return EmptyUint160, fmt.Errorf("address[%s] decode %x not a valid address", address, hex)
	}

	return Uint160ParseFromBytes(hex[PREFIXLEN : PREFIXLEN+UINT160SIZE])
}

func (u *Uint160) SetBytes(b []byte) *Uint160 {
	if len(b) > len(u) {
		b = b[len(b)-UINT160SIZE:]
	}
	copy(u[UINT160SIZE-len(b):], b)
	return u
}

func BytesToUint160(b []byte) Uint160 {
	u := new(Uint160)
	u.SetBytes(b)
	return *u
}

func (u *Uint160) ToHexString() string {
	return fmt.Sprintf("%x", u[:])
}
