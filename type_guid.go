package books

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// GuidEncodingLength is the length of the textual form: 32 hex characters.
const GuidEncodingLength = 32

// Guid is a 128-bit globally unique entity identifier. The zero value is the
// null guid, used to mark an unresolved reference.
type Guid [16]byte

// NullGuid is the all-zero guid.
var NullGuid Guid

// NewGuid returns a new random guid.
func NewGuid() Guid { return Guid(uuid.New()) }

// IsNull reports whether g is the null guid.
func (g Guid) IsNull() bool { return g == NullGuid }

// ParseGuid parses the 32-character lowercase or uppercase hex form.
func ParseGuid(s string) (Guid, error) {
	if len(s) != GuidEncodingLength {
		return NullGuid, fmt.Errorf("invalid guid %q: want %d hex characters", s, GuidEncodingLength)
	}
	var g Guid
	if _, err := hex.Decode(g[:], []byte(s)); err != nil {
		return NullGuid, fmt.Errorf("invalid guid %q: %w", s, err)
	}
	return g, nil
}

func (g Guid) String() string { return hex.EncodeToString(g[:]) }

// MarshalText encodes as the 32-character hex form.
func (g Guid) MarshalText() ([]byte, error) {
	dst := make([]byte, GuidEncodingLength)
	hex.Encode(dst, g[:])
	return dst, nil
}

// UnmarshalText decodes the hex form.
func (g *Guid) UnmarshalText(text []byte) error {
	v, err := ParseGuid(string(text))
	if err != nil {
		return err
	}
	*g = v
	return nil
}
