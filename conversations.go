package session

import (
	"fmt"

	"github.com/Aerilym/libsession-util/internal/bt"
)

// Top-level keys used by the conversations config, currently or in the
// past (so they are never reused):
//
//	1 - dict of one-to-one conversations, keyed by hex Session ID
//	o - dict of open group conversations, keyed by the composite
//	    lc(url) || NUL || lc(room) || NUL || pubkey key
//	C - dict of legacy closed group conversations, keyed by the hex-like
//	    group identifier
//	c - reserved for future tracking of new closed group conversations
const (
	keyOneToOne     = "1"
	keyOpenGroup    = "o"
	keyLegacyClosed = "C"
	keyReserved     = "c"
)

func knownConversationsKey(key string) bool {
	switch key {
	case keyOneToOne, keyOpenGroup, keyLegacyClosed, keyReserved:
		return true
	}
	return false
}

// conversationsPolicies declares the conflict resolution rule for each
// record field. Last-read takes the maximum timestamp; the disappearing
// message fields also take the maximum, which is deterministic and
// order-independent (devices racing to change the mode settle on the
// higher one until the next explicit change).
var conversationsPolicies = map[string]mergePolicy{
	fieldLastRead:        policyIntMax,
	fieldExpirationMode:  policyIntMax,
	fieldExpirationTimer: policyIntMax,
}

// Conversations tracks the user's conversation list: one-to-one, open
// group, and legacy closed group conversations stored in one encrypted
// config object and synchronized across the user's devices through the
// swarm.
//
// Typical update flow is get -> mutate -> set:
//
//	rec, err := convos.GetOrConstructOneToOne(sessionID)
//	...
//	rec.LastRead = now
//	err = convos.Set(rec)
type Conversations struct {
	*config
}

// NewConversations constructs a conversation list from the device's secret
// key and optional previously-dumped state. The secret key is the 32-byte
// ed25519 seed, or the full 64-byte secret key of which only the first 32
// bytes are used. Pass nil dump to construct an empty list.
func NewConversations(seed, dump []byte) (*Conversations, error) {
	return NewConversationsWithOptions(seed, dump, Options{})
}

// NewConversationsWithOptions is NewConversations with explicit Options.
func NewConversationsWithOptions(seed, dump []byte, opts Options) (*Conversations, error) {
	cfg, err := newConfig(
		NamespaceConversations,
		"Conversations",
		seed,
		dump,
		knownConversationsKey,
		conversationsPolicies,
		opts,
	)
	if err != nil {
		return nil, err
	}
	return &Conversations{config: cfg}, nil
}

// GetOneToOne looks up a one-to-one conversation by hex Session ID,
// returning nil if not present.
func (c *Conversations) GetOneToOne(sessionID string) (*OneToOne, error) {
	if err := checkSessionID(sessionID); err != nil {
		return nil, err
	}
	d := c.dig(keyOneToOne, sessionID)
	if d == nil {
		return nil, nil
	}
	rec := loadOneToOne(sessionID, d)
	return &rec, nil
}

// GetOrConstructOneToOne returns the existing record for the given Session
// ID, or a fresh zero-valued one. The fresh record is not persisted until
// passed to Set.
func (c *Conversations) GetOrConstructOneToOne(sessionID string) (OneToOne, error) {
	rec, err := c.GetOneToOne(sessionID)
	if err != nil {
		return OneToOne{}, err
	}
	if rec != nil {
		return *rec, nil
	}
	return NewOneToOne(sessionID)
}

// GetOpenGroup looks up an open group conversation by base URL, room name
// (case insensitive), and encoded server pubkey (hex, base32z, or base64).
// Returns nil if not present.
func (c *Conversations) GetOpenGroup(baseURL, room, pubkey string) (*OpenGroup, error) {
	raw, err := decodePubkey(pubkey)
	if err != nil {
		return nil, err
	}
	return c.GetOpenGroupRaw(baseURL, room, raw)
}

// GetOpenGroupRaw is GetOpenGroup with the pubkey as 32 raw bytes.
func (c *Conversations) GetOpenGroupRaw(baseURL, room string, pubkey []byte) (*OpenGroup, error) {
	key, urlLen, err := makeOpenGroupKey(baseURL, room, pubkey)
	if err != nil {
		return nil, err
	}
	d := c.dig(keyOpenGroup, key)
	if d == nil {
		return nil, nil
	}
	rec := loadOpenGroup(key, urlLen, d)
	return &rec, nil
}

// GetOrConstructOpenGroup returns the existing open group record, or a
// fresh zero-valued one prefilled with the normalized url/room/pubkey.
func (c *Conversations) GetOrConstructOpenGroup(baseURL, room, pubkey string) (OpenGroup, error) {
	raw, err := decodePubkey(pubkey)
	if err != nil {
		return OpenGroup{}, err
	}
	return c.GetOrConstructOpenGroupRaw(baseURL, room, raw)
}

// GetOrConstructOpenGroupRaw is GetOrConstructOpenGroup with the pubkey as
// raw bytes.
func (c *Conversations) GetOrConstructOpenGroupRaw(baseURL, room string, pubkey []byte) (OpenGroup, error) {
	rec, err := c.GetOpenGroupRaw(baseURL, room, pubkey)
	if err != nil {
		return OpenGroup{}, err
	}
	if rec != nil {
		return *rec, nil
	}
	return NewOpenGroup(baseURL, room, pubkey)
}

// GetLegacyClosedGroup looks up a legacy closed group conversation by its
// hex-like group ID, returning nil if not present.
func (c *Conversations) GetLegacyClosedGroup(groupID string) (*LegacyClosedGroup, error) {
	if err := checkHexID(groupID); err != nil {
		return nil, err
	}
	d := c.dig(keyLegacyClosed, groupID)
	if d == nil {
		return nil, nil
	}
	rec := loadLegacyClosedGroup(groupID, d)
	return &rec, nil
}

// GetOrConstructLegacyClosedGroup returns the existing record or a fresh
// zero-valued one.
func (c *Conversations) GetOrConstructLegacyClosedGroup(groupID string) (LegacyClosedGroup, error) {
	rec, err := c.GetLegacyClosedGroup(groupID)
	if err != nil {
		return LegacyClosedGroup{}, err
	}
	if rec != nil {
		return *rec, nil
	}
	return NewLegacyClosedGroup(groupID)
}

// Set inserts or replaces a conversation record. The storage key is
// derived from the record's own identity fields and the whole record is
// replaced; partial update is the caller's responsibility via
// read-modify-write.
func (c *Conversations) Set(rec Convo) error {
	if c.closed {
		return ErrClosed
	}
	switch r := rec.(type) {
	case OneToOne:
		return c.setOneToOne(r)
	case OpenGroup:
		return c.setOpenGroup(r)
	case LegacyClosedGroup:
		return c.setLegacyClosedGroup(r)
	}
	return fmt.Errorf("session: unknown conversation kind %T", rec)
}

func (c *Conversations) setOneToOne(rec OneToOne) error {
	if err := checkSessionID(rec.SessionID); err != nil {
		return err
	}
	d := bt.NewDict()
	kind := c.digOrCreate(keyOneToOne)
	kind.Set(rec.SessionID, d)
	c.setInt(d, fieldLastRead, rec.LastRead)
	c.setPairIf(
		rec.Expiration == ExpirationAfterSend || rec.Expiration == ExpirationAfterRead,
		d,
		fieldExpirationMode, int64(rec.Expiration),
		fieldExpirationTimer, int64(rec.ExpirationTimer.Minutes()),
	)
	c.dirty = true
	return nil
}

func (c *Conversations) setOpenGroup(rec OpenGroup) error {
	if rec.key == "" {
		return fmt.Errorf("%w: open group record has no identity", ErrInvalidURL)
	}
	if _, err := parseOpenGroupKey(rec.key); err != nil {
		return err
	}
	d := bt.NewDict()
	kind := c.digOrCreate(keyOpenGroup)
	kind.Set(rec.key, d)
	c.setInt(d, fieldLastRead, rec.LastRead)
	c.dirty = true
	return nil
}

func (c *Conversations) setLegacyClosedGroup(rec LegacyClosedGroup) error {
	if err := checkHexID(rec.ID); err != nil {
		return err
	}
	d := bt.NewDict()
	kind := c.digOrCreate(keyLegacyClosed)
	kind.Set(rec.ID, d)
	c.setInt(d, fieldLastRead, rec.LastRead)
	c.dirty = true
	return nil
}

// EraseOneToOne removes a one-to-one conversation, reporting whether it
// was present.
func (c *Conversations) EraseOneToOne(sessionID string) (bool, error) {
	if err := checkSessionID(sessionID); err != nil {
		return false, err
	}
	return c.eraseField(c.dig(keyOneToOne), sessionID), nil
}

// EraseOpenGroup removes an open group conversation, reporting whether it
// was present. Arguments are the same as GetOpenGroup.
func (c *Conversations) EraseOpenGroup(baseURL, room, pubkey string) (bool, error) {
	raw, err := decodePubkey(pubkey)
	if err != nil {
		return false, err
	}
	key, _, err := makeOpenGroupKey(baseURL, room, raw)
	if err != nil {
		return false, err
	}
	return c.eraseField(c.dig(keyOpenGroup), key), nil
}

// EraseLegacyClosedGroup removes a legacy closed group conversation,
// reporting whether it was present.
func (c *Conversations) EraseLegacyClosedGroup(groupID string) (bool, error) {
	if err := checkHexID(groupID); err != nil {
		return false, err
	}
	return c.eraseField(c.dig(keyLegacyClosed), groupID), nil
}

// Erase removes a conversation taking the record itself rather than its
// identity components.
func (c *Conversations) Erase(rec Convo) (bool, error) {
	switch r := rec.(type) {
	case OneToOne:
		return c.EraseOneToOne(r.SessionID)
	case OpenGroup:
		if _, err := parseOpenGroupKey(r.key); err != nil {
			return false, err
		}
		return c.eraseField(c.dig(keyOpenGroup), r.key), nil
	case LegacyClosedGroup:
		return c.EraseLegacyClosedGroup(r.ID)
	}
	return false, fmt.Errorf("session: unknown conversation kind %T", rec)
}

func (c *Conversations) kindSize(key string) int {
	d := c.dig(key)
	if d == nil {
		return 0
	}
	return d.Len()
}

// SizeOneToOne returns the number of one-to-one conversations.
func (c *Conversations) SizeOneToOne() int { return c.kindSize(keyOneToOne) }

// SizeOpenGroups returns the number of open group conversations.
func (c *Conversations) SizeOpenGroups() int { return c.kindSize(keyOpenGroup) }

// SizeLegacyClosedGroups returns the number of legacy closed group
// conversations.
func (c *Conversations) SizeLegacyClosedGroups() int { return c.kindSize(keyLegacyClosed) }

// Size returns the number of conversations of any kind.
func (c *Conversations) Size() int {
	return c.SizeOneToOne() + c.SizeOpenGroups() + c.SizeLegacyClosedGroups()
}

// Empty reports whether the conversation list is empty.
func (c *Conversations) Empty() bool { return c.Size() == 0 }
