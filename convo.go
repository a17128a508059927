package session

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/Aerilym/libsession-util/internal/bt"
)

// ExpirationMode is the disappearing-message setting of a one-to-one
// conversation.
type ExpirationMode int8

const (
	ExpirationNone      ExpirationMode = 0
	ExpirationAfterSend ExpirationMode = 1
	ExpirationAfterRead ExpirationMode = 2
)

// Convo is the closed set of conversation record kinds: OneToOne,
// OpenGroup, or LegacyClosedGroup. Records are independent value copies
// with no back-reference to the store; mutating or destroying the store
// never invalidates a previously returned record.
type Convo interface {
	isConvo()
}

func (OneToOne) isConvo()          {}
func (OpenGroup) isConvo()         {}
func (LegacyClosedGroup) isConvo() {}

// OneToOne is a direct conversation with a contact, keyed by their hex
// Session ID. LastRead is the unix timestamp (integer milliseconds) of the
// last-read message; 0 means no messages have been read. The expiration
// fields configure disappearing messages; the timer has minute
// granularity and is meaningless when Expiration is ExpirationNone.
type OneToOne struct {
	SessionID       string
	LastRead        int64
	Expiration      ExpirationMode
	ExpirationTimer time.Duration
}

// NewOneToOne constructs an empty record for the given Session ID.
func NewOneToOne(sessionID string) (OneToOne, error) {
	if err := checkSessionID(sessionID); err != nil {
		return OneToOne{}, err
	}
	return OneToOne{SessionID: sessionID}, nil
}

// OpenGroup is an open group (community) conversation. Its identity is the
// composite key lc(baseURL) || NUL || lc(room) || NUL || pubkey, immutable
// after construction; the URL and room name are always stored lower-cased
// so differently-cased references from separate devices converge to one
// record.
type OpenGroup struct {
	key    string
	urlLen int

	LastRead int64
}

// NewOpenGroup constructs an empty open group record from a base URL, room
// name, and 32-byte server pubkey. URL and room are lower-cased if not
// already.
func NewOpenGroup(baseURL, room string, pubkey []byte) (OpenGroup, error) {
	key, urlLen, err := makeOpenGroupKey(baseURL, room, pubkey)
	if err != nil {
		return OpenGroup{}, err
	}
	return OpenGroup{key: key, urlLen: urlLen}, nil
}

// NewOpenGroupEncoded is NewOpenGroup with the pubkey in hex, base32z, or
// base64.
func NewOpenGroupEncoded(baseURL, room, pubkey string) (OpenGroup, error) {
	raw, err := decodePubkey(pubkey)
	if err != nil {
		return OpenGroup{}, err
	}
	return NewOpenGroup(baseURL, room, raw)
}

// BaseURL returns the base url (not including room or pubkey), always
// lower-case.
func (o *OpenGroup) BaseURL() string { return o.key[:o.urlLen] }

// Room returns the room name, always lower-case.
func (o *OpenGroup) Room() string { return o.key[o.urlLen+1 : len(o.key)-33] }

// Pubkey returns the 32-byte server pubkey.
func (o *OpenGroup) Pubkey() []byte { return []byte(o.key[len(o.key)-32:]) }

// PubkeyHex returns the server pubkey as 64 hex digits.
func (o *OpenGroup) PubkeyHex() string { return hex.EncodeToString(o.Pubkey()) }

// SetServer replaces the baseurl/room/pubkey identity of this record.
func (o *OpenGroup) SetServer(baseURL, room string, pubkey []byte) error {
	key, urlLen, err := makeOpenGroupKey(baseURL, room, pubkey)
	if err != nil {
		return err
	}
	o.key, o.urlLen = key, urlLen
	return nil
}

// makeOpenGroupKey derives the composite storage key for an open group.
func makeOpenGroupKey(baseURL, room string, pubkey []byte) (key string, urlLen int, err error) {
	url := asciiLower(baseURL)
	room = asciiLower(room)
	if url == "" || strings.IndexByte(url, 0) >= 0 {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidURL, baseURL)
	}
	if room == "" || strings.IndexByte(room, 0) >= 0 {
		return "", 0, fmt.Errorf("%w: invalid room name %q", ErrInvalidURL, room)
	}
	if len(pubkey) != 32 {
		return "", 0, fmt.Errorf("%w: expected 32 bytes, got %d", ErrInvalidPubkey, len(pubkey))
	}
	var b strings.Builder
	b.Grow(len(url) + 1 + len(room) + 1 + 32)
	b.WriteString(url)
	b.WriteByte(0)
	b.WriteString(room)
	b.WriteByte(0)
	b.Write(pubkey)
	return b.String(), len(url), nil
}

// parseOpenGroupKey validates a stored composite key and returns the url
// length, for records loaded back out of the tree.
func parseOpenGroupKey(key string) (urlLen int, err error) {
	if len(key) < 32+4 || key[len(key)-33] != 0 {
		return 0, fmt.Errorf("%w: malformed composite key", ErrInvalidURL)
	}
	urlLen = strings.IndexByte(key, 0)
	if urlLen <= 0 || urlLen >= len(key)-33 {
		return 0, fmt.Errorf("%w: malformed composite key", ErrInvalidURL)
	}
	return urlLen, nil
}

// LegacyClosedGroup is a legacy closed group conversation, keyed by a
// hex-like group identifier that is shaped like a Session ID but is not
// really one.
type LegacyClosedGroup struct {
	ID       string
	LastRead int64
}

// NewLegacyClosedGroup constructs an empty record for the given group ID.
func NewLegacyClosedGroup(groupID string) (LegacyClosedGroup, error) {
	if err := checkHexID(groupID); err != nil {
		return LegacyClosedGroup{}, err
	}
	return LegacyClosedGroup{ID: groupID}, nil
}

// Per-record field keys within each conversation dict.
const (
	fieldLastRead        = "r" // unix ms of last-read message, always written
	fieldExpirationMode  = "e" // 1 after-send, 2 after-read, omitted when none
	fieldExpirationTimer = "E" // timer minutes, omitted with "e"
)

func loadOneToOne(sessionID string, d *bt.Dict) OneToOne {
	rec := OneToOne{SessionID: sessionID}
	rec.LastRead, _ = maybeInt(d, fieldLastRead)
	if mode, ok := maybeInt(d, fieldExpirationMode); ok {
		switch ExpirationMode(mode) {
		case ExpirationAfterSend, ExpirationAfterRead:
			rec.Expiration = ExpirationMode(mode)
			timer, _ := maybeInt(d, fieldExpirationTimer)
			rec.ExpirationTimer = time.Duration(timer) * time.Minute
		}
	}
	return rec
}

func loadOpenGroup(key string, urlLen int, d *bt.Dict) OpenGroup {
	rec := OpenGroup{key: key, urlLen: urlLen}
	rec.LastRead, _ = maybeInt(d, fieldLastRead)
	return rec
}

func loadLegacyClosedGroup(groupID string, d *bt.Dict) LegacyClosedGroup {
	rec := LegacyClosedGroup{ID: groupID}
	rec.LastRead, _ = maybeInt(d, fieldLastRead)
	return rec
}
