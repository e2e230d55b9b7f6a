package common

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
)

const (
	// supported max precision of native value is 8
	MaximumPrecision = 8
	StorageFactor    = 100000000
)

// Fixed64 is the native value unit: a 64 bit fixed-point number, precise 10^-8
type Fixed64 int64

func (f *Fixed64) Serialize(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, int64(*f))
}

func (f *Fixed64) Deserialize(r io.Reader) error {
	var x int64
	err := binary.Read(r, binary.LittleEndian, &x)
	if err != nil {
		return err
	}
	*f = Fixed64(x)
	return nil
}

func (f Fixed64) GetData() int64 {
	return int64(f)
}

func (f Fixed64) String() string {
	var buffer bytes.Buffer
	value := uint64(f)
	if f < 0 {
		buffer.WriteRune('-')
		value = uint64(-f)
	}
	buffer.WriteString(strconv.FormatUint(value/StorageFactor, 10))
	value %= StorageFactor
	if value > 0 {
		buffer.WriteRune('.')
		s := strconv.FormatUint(value, 10)
		for i := len(s); i < 8; i++ {
			buffer.WriteRune('0')
		}
		buffer.WriteString(strings.TrimRight(s, "0"))
	}
	return buffer.String()
}

// MarshalJSON renders the value as a decimal string, e.g. "0.01".
func (f Fixed64) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

func (f *Fixed64) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	value, err := StringToFixed64(s)
	if err != nil {
		return err
	}
	*f = value
	return nil
}

func StringToFixed64(s string) (Fixed64, error) {
	var buffer bytes.Buffer

	di := strings.Index(s, ".")
	if di == -1 {
		buffer.WriteString(s)
		for i := 0; i < MaximumPrecision; i++ {
			buffer.WriteByte('0')
		}
	} else {
		precision := len(s) - di - 1
		if precision > MaximumPrecision {
			return Fixed64(0), errors.New("unsupported precision")
		}
		buffer.WriteString(s[:di])
		buffer.WriteString(s[di+1:])
		n := MaximumPrecision - precision
		for i := 0; i < n; i++ {
			buffer.WriteByte('0')
		}
	}
	r, err := strconv.ParseInt(buffer.String(), 10, 64)
	if err != nil {
		return Fixed64(0), err
	}

	return Fixed64(r), nil
}
