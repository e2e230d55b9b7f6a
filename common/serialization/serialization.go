package serialization

import (
	"encoding/binary"
	"errors"
	"io"
)

// MaxVarBytesLen bounds a single length-prefixed field so a corrupted record
// can not make the reader allocate unbounded memory.
const MaxVarBytesLen = 1 << 20

var ErrRange = errors.New("value out of range")

func WriteUint8(w io.Writer, val uint8) error {
	_, err := w.Write([]byte{val})
	return err
}

func ReadUint8(r io.Reader) (uint8, error) {
	var p [1]byte
	if _, err := io.ReadFull(r, p[:]); err != nil {
		return 0, err
	}
	return p[0], nil
}

func WriteBool(w io.Writer, val bool) error {
	if val {
		return WriteUint8(w, 1)
	}
	return WriteUint8(w, 0)
}

func ReadBool(r io.Reader) (bool, error) {
	b, err := ReadUint8(r)
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

func WriteUint32(w io.Writer, val uint32) error {
	var p [4]byte
	binary.LittleEndian.PutUint32(p[:], val)
	_, err := w.Write(p[:])
	return err
}

func ReadUint32(r io.Reader) (uint32, error) {
	var p [4]byte
	if _, err := io.ReadFull(r, p[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(p[:]), nil
}

func WriteUint64(w io.Writer, val uint64) error {
	var p [8]byte
	binary.LittleEndian.PutUint64(p[:], val)
	_, err := w.Write(p[:])
	return err
}

func ReadUint64(r io.Reader) (uint64, error) {
	var p [8]byte
	if _, err := io.ReadFull(r, p[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(p[:]), nil
}

func WriteVarUint(w io.Writer, val uint64) error {
	var p [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(p[:], val)
	_, err := w.Write(p[:n])
	return err
}

func ReadVarUint(r io.Reader, max uint64) (uint64, error) {
	var p [1]byte
	var x uint64
	var s uint
	for i := 0; i < binary.MaxVarintLen64; i++ {
		if _, err := io.ReadFull(r, p[:]); err != nil {
			return 0, err
		}
		b := p[0]
		if b < 0x80 {
			x |= uint64(b) << s
			if max > 0 && x > max {
				return 0, ErrRange
			}
			return x, nil
		}
		x |= uint64(b&0x7f) << s
		s += 7
	}
	return 0, ErrRange
}

func WriteVarBytes(w io.Writer, value []byte) error {
	if err := WriteVarUint(w, uint64(len(value))); err != nil {
		return err
	}
	_, err := w.Write(value)
	return err
}

func ReadVarBytes(r io.Reader) ([]byte, error) {
	n, err := ReadVarUint(r, MaxVarBytesLen)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func WriteVarString(w io.Writer, value string) error {
	return WriteVarBytes(w, []byte(value))
}

func ReadVarString(r io.Reader) (string, error) {
	b, err := ReadVarBytes(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
