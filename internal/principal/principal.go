// Package principal parses and formats the textual form of Internet Computer principals.
//
// The textual form is the lowercase, unpadded base32 encoding of a big-endian CRC32
// checksum followed by the raw principal bytes, grouped in fives with dashes.
package principal

import (
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"strings"
)

const maxLength = 29

var (
	ErrEmpty    = errors.New("principal is empty")
	ErrChecksum = errors.New("principal checksum mismatch")
	ErrTooLong  = errors.New("principal exceeds 29 bytes")

	encoding = base32.StdEncoding.WithPadding(base32.NoPadding)
)

// Anonymous is the principal of unauthenticated callers.
var Anonymous = Principal{raw: []byte{0x04}}

type Principal struct {
	raw []byte
}

// Parse decodes a textual principal and verifies its checksum and grouping.
func Parse(s string) (Principal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Principal{}, ErrEmpty
	}

	compact := strings.ReplaceAll(s, "-", "")
	decoded, err := encoding.DecodeString(strings.ToUpper(compact))
	if err != nil {
		return Principal{}, fmt.Errorf("invalid principal %q: %w", s, err)
	}
	if len(decoded) < 4 {
		return Principal{}, fmt.Errorf("invalid principal %q: too short", s)
	}

	raw := decoded[4:]
	if len(raw) > maxLength {
		return Principal{}, ErrTooLong
	}
	if binary.BigEndian.Uint32(decoded[:4]) != crc32.ChecksumIEEE(raw) {
		return Principal{}, fmt.Errorf("%w: %q", ErrChecksum, s)
	}

	p := Principal{raw: raw}
	if p.String() != strings.ToLower(s) {
		return Principal{}, fmt.Errorf("principal %q is not in canonical form", s)
	}
	return p, nil
}

// Valid reports whether s is a well-formed textual principal.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

func FromBytes(raw []byte) (Principal, error) {
	if len(raw) > maxLength {
		return Principal{}, ErrTooLong
	}
	return Principal{raw: append([]byte(nil), raw...)}, nil
}

func (p Principal) Bytes() []byte {
	return append([]byte(nil), p.raw...)
}

func (p Principal) String() string {
	buf := make([]byte, 4+len(p.raw))
	binary.BigEndian.PutUint32(buf, crc32.ChecksumIEEE(p.raw))
	copy(buf[4:], p.raw)

	enc := strings.ToLower(encoding.EncodeToString(buf))
	var b strings.Builder
	for i := 0; i < len(enc); i += 5 {
		if i > 0 {
			b.WriteByte('-')
		}
		end := i + 5
		if end > len(enc) {
			end = len(enc)
		}
		b.WriteString(enc[i:end])
	}
	return b.String()
}

// IsAnonymous reports whether p is the anonymous principal.
func (p Principal) IsAnonymous() bool {
	return len(p.raw) == 1 && p.raw[0] == 0x04
}
