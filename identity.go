package session

import (
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// SessionIDSize is the length of a hex-encoded Session ID: a one-byte
// version prefix plus a 32-byte x25519 pubkey.
const SessionIDSize = 66

// base32z is the z-base-32 alphabet used for community server pubkeys.
var base32z = base32.NewEncoding("ybndrfg8ejkmcpqxot1uwisza345h769").WithPadding(base32.NoPadding)

// checkSessionID validates a Session ID before it is trusted as a dict
// key: 66 hex characters with the "05" version prefix.
func checkSessionID(id string) error {
	if err := checkHexID(id); err != nil {
		return err
	}
	if id[0] != '0' || id[1] != '5' {
		return fmt.Errorf("%w: %q does not have the 05 prefix", ErrInvalidSessionID, id)
	}
	return nil
}

// checkHexID validates the Session-ID shape without constraining the
// version prefix; legacy closed group identifiers look like Session IDs
// but may carry a different prefix byte.
func checkHexID(id string) error {
	if len(id) != SessionIDSize {
		return fmt.Errorf("%w: expected %d hex digits, got %d", ErrInvalidSessionID, SessionIDSize, len(id))
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return fmt.Errorf("%w: invalid hex digit %q", ErrInvalidSessionID, c)
		}
	}
	return nil
}

// decodePubkey normalizes a 32-byte server pubkey accepted as hex (64
// chars), base32z (52 chars), or base64 (43 chars unpadded / 44 padded)
// into raw bytes.
func decodePubkey(pk string) ([]byte, error) {
	switch len(pk) {
	case 64:
		raw, err := hex.DecodeString(pk)
		if err != nil {
			return nil, fmt.Errorf("%w: bad hex: %q", ErrInvalidPubkey, pk)
		}
		return raw, nil
	case 52:
		raw, err := base32z.DecodeString(pk)
		if err != nil || len(raw) != 32 {
			return nil, fmt.Errorf("%w: bad base32z: %q", ErrInvalidPubkey, pk)
		}
		return raw, nil
	case 43:
		raw, err := base64.RawStdEncoding.DecodeString(pk)
		if err != nil || len(raw) != 32 {
			return nil, fmt.Errorf("%w: bad base64: %q", ErrInvalidPubkey, pk)
		}
		return raw, nil
	case 44:
		raw, err := base64.StdEncoding.DecodeString(pk)
		if err != nil || len(raw) != 32 {
			return nil, fmt.Errorf("%w: bad base64: %q", ErrInvalidPubkey, pk)
		}
		return raw, nil
	}
	return nil, fmt.Errorf("%w: unrecognized length %d", ErrInvalidPubkey, len(pk))
}

// asciiLower lower-cases A-Z only, leaving all other bytes untouched.
// Community URLs and room names are normalized with this before any key
// derivation so differently-cased references converge to one record.
func asciiLower(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}
