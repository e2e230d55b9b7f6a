package common

import (
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/ripemd160"
)

// ToCodeHash derives an account address from arbitrary code or construction
// parameters: ripemd160(sha256(code)).
func ToCodeHash(code []byte) (Uint160, error) {
	temp := sha256.Sum256(code)
	md := ripemd160.New()
	md.Write(temp[:])
	f := md.Sum(nil)

	hash, err := Uint160ParseFromBytes(f)
	if err != nil {
		return Uint160{}, errors.New("ToCodehash parse uint160 error")
	}
	return hash, nil
}
