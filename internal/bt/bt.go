// Package bt implements the canonical binary encoding used for config
// payloads: a bencode-style format restricted to integers, byte strings,
// sorted string sets, and dicts whose keys are emitted in byte-wise sorted
// order. Any semantic value has exactly one encoding, which is what makes
// structural diff/merge of config trees possible.
package bt

import (
	"bytes"
	"sort"
)

// Value is one node of a config tree: Int, String, Set, Dict or Raw.
type Value interface {
	isValue()
	// Clone returns a deep copy sharing no mutable state with the receiver.
	Clone() Value
}

// Int is an integer leaf.
type Int int64

// String is a byte-string leaf. Go strings are used as immutable byte
// containers here; the content is not required to be valid UTF-8.
type String string

// Set is a set of byte strings. It is kept sorted and deduplicated by the
// constructors and mutators; the encoder relies on that.
type Set []string

// Raw is a pre-encoded value emitted verbatim by the encoder. The decoder
// never produces Raw; it exists so that unrecognized fields can be carried
// byte-for-byte through a re-serialization.
type Raw []byte

func (Int) isValue()    {}
func (String) isValue() {}
func (Set) isValue()    {}
func (Raw) isValue()    {}
func (*Dict) isValue()  {}

func (v Int) Clone() Value    { return v }
func (v String) Clone() Value { return v }

func (v Set) Clone() Value {
	out := make(Set, len(v))
	copy(out, v)
	return out
}

func (v Raw) Clone() Value {
	out := make(Raw, len(v))
	copy(out, v)
	return out
}

// NewSet builds a sorted, deduplicated Set from arbitrary input.
func NewSet(elems ...string) Set {
	out := make(Set, 0, len(elems))
	out = append(out, elems...)
	sort.Strings(out)
	j := 0
	for i, e := range out {
		if i > 0 && e == out[j-1] {
			continue
		}
		out[j] = e
		j++
	}
	return out[:j]
}

// Has reports whether the set contains elem.
func (v Set) Has(elem string) bool {
	i := sort.SearchStrings(v, elem)
	return i < len(v) && v[i] == elem
}

type entry struct {
	key string
	val Value
}

// Dict is an ordered dictionary keyed by byte string. Iteration order is
// always byte-wise sorted key order regardless of insertion order, so two
// dicts holding the same entries are indistinguishable.
type Dict struct {
	entries []entry
}

// NewDict returns an empty dict.
func NewDict() *Dict { return &Dict{} }

func (d *Dict) search(key string) int {
	return sort.Search(len(d.entries), func(i int) bool { return d.entries[i].key >= key })
}

// Get returns the value stored under key, if any.
func (d *Dict) Get(key string) (Value, bool) {
	i := d.search(key)
	if i < len(d.entries) && d.entries[i].key == key {
		return d.entries[i].val, true
	}
	return nil, false
}

// Set stores val under key, replacing any existing value.
func (d *Dict) Set(key string, val Value) {
	i := d.search(key)
	if i < len(d.entries) && d.entries[i].key == key {
		d.entries[i].val = val
		return
	}
	d.entries = append(d.entries, entry{})
	copy(d.entries[i+1:], d.entries[i:])
	d.entries[i] = entry{key: key, val: val}
}

// Delete removes key, reporting whether it was present.
func (d *Dict) Delete(key string) bool {
	i := d.search(key)
	if i >= len(d.entries) || d.entries[i].key != key {
		return false
	}
	d.entries = append(d.entries[:i], d.entries[i+1:]...)
	return true
}

// Len returns the number of entries.
func (d *Dict) Len() int { return len(d.entries) }

// Keys returns the keys in sorted order.
func (d *Dict) Keys() []string {
	out := make([]string, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.key
	}
	return out
}

// Range calls fn for each entry in sorted key order until fn returns false.
func (d *Dict) Range(fn func(key string, val Value) bool) {
	for _, e := range d.entries {
		if !fn(e.key, e.val) {
			return
		}
	}
}

// Clone returns a deep copy of the dict.
func (d *Dict) Clone() Value {
	out := &Dict{entries: make([]entry, len(d.entries))}
	for i, e := range d.entries {
		out.entries[i] = entry{key: e.key, val: e.val.Clone()}
	}
	return out
}

// CloneDict is Clone with a concrete return type.
func (d *Dict) CloneDict() *Dict { return d.Clone().(*Dict) }

// Equal reports deep semantic equality of two values. Raw values compare
// by their encoded bytes, so a Raw node equals itself but is never equal
// to a decoded node, which is fine: Raw only ever holds foreign fields.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Set:
		bv, ok := b.(Set)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case Raw:
		bv, ok := b.(Raw)
		return ok && bytes.Equal(av, bv)
	case *Dict:
		bv, ok := b.(*Dict)
		if !ok || len(av.entries) != len(bv.entries) {
			return false
		}
		for i := range av.entries {
			if av.entries[i].key != bv.entries[i].key ||
				!Equal(av.entries[i].val, bv.entries[i].val) {
				return false
			}
		}
		return true
	}
	return false
}
