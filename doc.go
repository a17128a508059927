// Package session implements a per-device, end-to-end-encrypted, mergeable
// configuration store for messaging clients. Structured application state is
// kept in a canonical byte-sorted value tree, encrypted under a key derived
// from the device seed with a per-config domain label, and exchanged between
// a user's devices as opaque blobs via an untrusted swarm. Concurrent edits
// from independent devices converge without coordination: merge is
// field-scoped, commutative, and idempotent, and fields unknown to the
// current schema version are carried byte-for-byte through any
// re-serialization.
//
// Conversations is the typed schema exemplar layered on the generic config
// object: one-to-one, open group, and legacy closed group conversation
// records with normalized composite identities and a deterministic merged
// iteration order.
package session
