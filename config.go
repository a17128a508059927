package session

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/awnumar/memguard"

	"github.com/Aerilym/libsession-util/audit"
	"github.com/Aerilym/libsession-util/internal/bt"
	"github.com/Aerilym/libsession-util/internal/crypto"
	"github.com/Aerilym/libsession-util/internal/mem"
)

// Namespace identifies the swarm storage namespace a config type is pushed
// to. It is metadata for the transport layer; the core never interprets it.
type Namespace int16

const (
	NamespaceConversations     Namespace = 1
	NamespaceUserProfile       Namespace = 2
	NamespaceContacts          Namespace = 3
	NamespaceConvoInfoVolatile Namespace = 4
	NamespaceUserGroups        Namespace = 5
)

func init() {
	// Enable memguard interrupt handling before any guarded allocation
	memguard.CatchInterrupt()
}

var memoryLockOnce sync.Once

// mergePolicy resolves a leaf-level conflict between a local and an
// incoming value for the same path. Policies must be deterministic,
// commutative (symmetric in their arguments up to the declared rule), and
// idempotent, since the swarm may redeliver or reorder blobs.
type mergePolicy func(local, incoming bt.Value) bt.Value

// policyIntMax keeps the larger integer; mixed types fall back to the
// canonical-bytes rule. Used for last-read timestamps and expiration fields.
func policyIntMax(local, incoming bt.Value) bt.Value {
	li, lok := local.(bt.Int)
	ri, rok := incoming.(bt.Int)
	if lok && rok {
		if ri > li {
			return incoming
		}
		return local
	}
	return policyCanonicalMax(local, incoming)
}

// policyCanonicalMax keeps whichever value has the larger canonical
// encoding. Arbitrary but deterministic, commutative, and idempotent; it is
// the default for fields with no declared rule.
func policyCanonicalMax(local, incoming bt.Value) bt.Value {
	if bytes.Compare(bt.Marshal(incoming), bt.Marshal(local)) > 0 {
		return incoming
	}
	return local
}

// config is the generic encrypted, mergeable object underlying every typed
// schema. It owns the value tree and the derived key material; typed
// schemas such as Conversations embed it and provide the field layout.
//
// A config object is not internally synchronized: it follows a
// single-writer model where any concurrent use requires external
// serialization spanning whole read-modify-write sequences.
type config struct {
	namespace Namespace
	domain    string

	key  *mem.Buffer
	data *bt.Dict

	// unknown holds the raw canonical encoding of top-level keys outside
	// the schema's recognized set, keyed by top-level key, so a newer
	// client's fields survive a round trip through this version verbatim.
	unknown map[string][]byte

	knownKey func(key string) bool
	policies map[string]mergePolicy

	dirty   bool
	closed  bool
	auditor audit.Logger
}

// newConfig derives the domain-scoped encryption key from the seed and, if
// dump is non-nil, decrypts and loads the prior state. The seed may be a
// 32-byte seed or a 64-byte ed25519 secret key, of which only the first 32
// bytes are used. A dump that fails to decrypt or parse fails the whole
// construction; no partially-usable object is returned.
func newConfig(
	namespace Namespace,
	domain string,
	seed []byte,
	dump []byte,
	knownKey func(string) bool,
	policies map[string]mergePolicy,
	opts Options,
) (*config, error) {
	switch len(seed) {
	case crypto.SeedSize:
	case 2 * crypto.SeedSize:
		seed = seed[:crypto.SeedSize]
	default:
		return nil, ErrInvalidSeed
	}

	if !opts.SkipMemoryLock {
		memoryLockOnce.Do(func() {
			// Best-effort: partial protection is acceptable, per-buffer
			// guards still apply
			_, _ = mem.Lock()
		})
	}

	key, err := crypto.DeriveKey(seed, domain)
	if err != nil {
		return nil, err
	}

	c := &config{
		namespace: namespace,
		domain:    domain,
		key:       key,
		data:      bt.NewDict(),
		unknown:   make(map[string][]byte),
		knownKey:  knownKey,
		policies:  policies,
		auditor:   opts.auditor(),
	}

	if dump != nil {
		if err := c.loadDump(dump); err != nil {
			c.key.Reset()
			_ = c.auditor.Log(audit.ActionConstruct, false, map[string]interface{}{
				"domain": domain,
				"error":  err.Error(),
			})
			return nil, err
		}
	}

	_ = c.auditor.Log(audit.ActionConstruct, true, map[string]interface{}{
		"domain":    domain,
		"from_dump": dump != nil,
	})
	return c, nil
}

// EncryptionDomain returns the key-separation label of this config type.
func (c *config) EncryptionDomain() string { return c.domain }

// StorageNamespace returns the swarm namespace this config type is stored
// under.
func (c *config) StorageNamespace() Namespace { return c.namespace }

// NeedsPush reports whether the object has local changes that have not yet
// been dumped for the swarm.
func (c *config) NeedsPush() bool { return c.dirty }

// ConfirmPushed clears the pending-push state without producing a dump;
// called by the application once the latest blob is known to be stored.
func (c *config) ConfirmPushed() { c.dirty = false }

// Closed reports whether Close has been called.
func (c *config) Closed() bool { return c.closed }

// Close wipes and releases the derived key material. It is idempotent and
// deterministic; the object is unusable afterwards.
func (c *config) Close() {
	if c.closed {
		return
	}
	c.key.Reset()
	c.closed = true
	_ = c.auditor.Log(audit.ActionClose, true, map[string]interface{}{
		"domain": c.domain,
	})
}

// serialize produces the canonical plaintext: the recognized tree with
// empty top-level maps elided plus every preserved unknown range reinserted
// verbatim at its sorted key position.
func (c *config) serialize() []byte {
	top := bt.NewDict()
	c.data.Range(func(key string, val bt.Value) bool {
		if d, ok := val.(*bt.Dict); ok && d.Len() == 0 {
			return true
		}
		top.Set(key, val)
		return true
	})
	for key, raw := range c.unknown {
		top.Set(key, bt.Raw(raw))
	}
	return bt.Marshal(top)
}

// Dump serializes and encrypts the current state for pushing to the swarm
// or persisting locally. A fresh random nonce is used each call, so the
// same logical state legitimately yields different blobs. Dump clears the
// pending-push state.
func (c *config) Dump() ([]byte, error) {
	if c.closed {
		return nil, ErrClosed
	}
	blob, err := crypto.Seal(c.serialize(), c.key)
	if err != nil {
		_ = c.auditor.Log(audit.ActionDump, false, map[string]interface{}{
			"domain": c.domain,
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("session: dump: %w", err)
	}
	c.dirty = false
	_ = c.auditor.Log(audit.ActionDump, true, map[string]interface{}{
		"domain": c.domain,
		"bytes":  len(blob),
	})
	return blob, nil
}

// loadDump decrypts and deserializes a prior dump into the (empty) tree.
func (c *config) loadDump(dump []byte) error {
	plain, err := crypto.Open(dump, c.key)
	if err != nil {
		return ErrInvalidDump
	}
	data, unknown, err := c.parsePlaintext(plain)
	if err != nil {
		return ErrInvalidDump
	}
	c.data = data
	c.unknown = unknown
	return nil
}

// parsePlaintext splits a decrypted payload into the recognized tree and
// the raw byte ranges of unrecognized top-level keys.
func (c *config) parsePlaintext(plain []byte) (*bt.Dict, map[string][]byte, error) {
	data := bt.NewDict()
	unknown := make(map[string][]byte)
	err := bt.ParseDict(plain, func(key string, val bt.Value, raw []byte) error {
		if c.knownKey(key) {
			data.Set(key, val)
			return nil
		}
		unknown[key] = append([]byte(nil), raw...)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return data, unknown, nil
}

// Merge decrypts each blob and folds it into the local tree. Blobs that
// fail authentication or deserialization are skipped silently: a tampered
// or foreign-key blob from the swarm is not an error, merge proceeds over
// the remaining batch. Returns the number of blobs accepted.
//
// Merge is field-scoped. A leaf present on only one side is kept (presence
// wins over absence); a leaf present on both sides is resolved by the
// declared per-field policy, defaulting to the canonical-bytes rule; sets
// are unioned; sub-dicts merge recursively; unknown top-level ranges are
// unioned across all inputs. Every rule is commutative and idempotent, so
// redelivered or reordered blobs converge to the same tree.
func (c *config) Merge(blobs [][]byte) (int, error) {
	if c.closed {
		return 0, ErrClosed
	}
	accepted := 0
	for _, blob := range blobs {
		plain, err := crypto.Open(blob, c.key)
		if err != nil {
			_ = c.auditor.Log(audit.ActionBlobRejected, false, map[string]interface{}{
				"domain": c.domain,
				"reason": "auth_failure",
			})
			continue
		}
		data, unknown, err := c.parsePlaintext(plain)
		if err != nil {
			_ = c.auditor.Log(audit.ActionBlobRejected, false, map[string]interface{}{
				"domain": c.domain,
				"reason": "parse_failure",
			})
			continue
		}
		changed := c.mergeDict(c.data, data)
		if c.mergeUnknown(unknown) {
			changed = true
		}
		if changed {
			c.dirty = true
		}
		accepted++
	}
	_ = c.auditor.Log(audit.ActionMerge, true, map[string]interface{}{
		"domain":   c.domain,
		"blobs":    len(blobs),
		"accepted": accepted,
	})
	return accepted, nil
}

func (c *config) mergeDict(dst, src *bt.Dict) bool {
	changed := false
	src.Range(func(key string, incoming bt.Value) bool {
		local, ok := dst.Get(key)
		if !ok {
			dst.Set(key, incoming.Clone())
			changed = true
			return true
		}
		if ld, lok := local.(*bt.Dict); lok {
			if sd, sok := incoming.(*bt.Dict); sok {
				if c.mergeDict(ld, sd) {
					changed = true
				}
				return true
			}
		}
		if ls, lok := local.(bt.Set); lok {
			if ss, sok := incoming.(bt.Set); sok {
				union := bt.NewSet(append(append([]string(nil), ls...), ss...)...)
				if !bt.Equal(union, ls) {
					dst.Set(key, union)
					changed = true
				}
				return true
			}
		}
		policy, ok := c.policies[key]
		if !ok {
			policy = policyCanonicalMax
		}
		winner := policy(local, incoming)
		if !bt.Equal(winner, local) {
			dst.Set(key, winner.Clone())
			changed = true
		}
		return true
	})
	return changed
}

// mergeUnknown unions foreign top-level ranges; on a conflicting key the
// byte-wise larger encoding wins, which keeps the union deterministic.
func (c *config) mergeUnknown(incoming map[string][]byte) bool {
	changed := false
	for key, raw := range incoming {
		cur, ok := c.unknown[key]
		if !ok {
			c.unknown[key] = raw
			changed = true
			continue
		}
		if bytes.Compare(raw, cur) > 0 {
			c.unknown[key] = raw
			changed = true
		}
	}
	return changed
}
