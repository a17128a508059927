package session

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSessionID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		ok   bool
	}{
		{"valid lowercase", aliceID, true},
		{"valid uppercase hex", "05" + strings.Repeat("A", 64), true},
		{"too short", "05abcd", false},
		{"too long", aliceID + "ff", false},
		{"wrong prefix", "03" + strings.Repeat("a", 64), false},
		{"non-hex digit", "05" + strings.Repeat("g", 64), false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkSessionID(tt.id)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidSessionID)
			}
		})
	}
}

func TestCheckHexIDAllowsOtherPrefixes(t *testing.T) {
	// legacy closed group ids carry a different version byte
	assert.NoError(t, checkHexID("03"+strings.Repeat("c", 64)))
	assert.NoError(t, checkHexID("05"+strings.Repeat("a", 64)))
	assert.ErrorIs(t, checkHexID("0x"+strings.Repeat("a", 64)), ErrInvalidSessionID)
	assert.ErrorIs(t, checkHexID(strings.Repeat("a", 64)), ErrInvalidSessionID)
}

func TestDecodePubkeyFormats(t *testing.T) {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i * 3)
	}

	encodings := map[string]string{
		"hex":           hex.EncodeToString(raw),
		"hex uppercase": strings.ToUpper(hex.EncodeToString(raw)),
		"base32z":       base32z.EncodeToString(raw),
		"base64 raw":    base64.RawStdEncoding.EncodeToString(raw),
		"base64 padded": base64.StdEncoding.EncodeToString(raw),
	}
	for name, enc := range encodings {
		t.Run(name, func(t *testing.T) {
			got, err := decodePubkey(enc)
			require.NoError(t, err)
			assert.Equal(t, raw, got)
		})
	}
}

func TestDecodePubkeyRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"bad hex digits", strings.Repeat("zz", 32)},
		{"bad base32z digits", strings.Repeat("0", 52)},
		{"bad base64 digits", strings.Repeat("!", 43)},
		{"unrecognized length", "abcdef"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodePubkey(tt.in)
			assert.ErrorIs(t, err, ErrInvalidPubkey)
		})
	}
}

func TestAsciiLower(t *testing.T) {
	assert.Equal(t, "http://example.com/room", asciiLower("HTTP://Example.COM/Room"))
	// non-ASCII bytes pass through untouched
	assert.Equal(t, "cafÉ", asciiLower("CAFÉ"))
	assert.Equal(t, "", asciiLower(""))
}
