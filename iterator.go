package session

// Iterator walks all conversations in a fixed total order: one-to-one
// records sorted by Session ID, then open groups sorted by composite key
// bytes, then legacy closed groups sorted by group ID. Converged devices
// therefore also converge on enumeration order.
//
//	for it := convos.Begin(); !it.Done(); it.Next() {
//	    switch rec := it.Value().(type) {
//	    case session.OneToOne:
//	        ...
//	    case session.OpenGroup:
//	        ...
//	    case session.LegacyClosedGroup:
//	        ...
//	    }
//	}
//
// Modifying or adding records via Set during iteration is permitted. To
// erase the record under the iterator, EraseIt must be used; it removes
// the element and returns the iterator for the next position:
//
//	for it := convos.Begin(); !it.Done(); {
//	    if shouldRemove(it.Value()) {
//	        it = convos.EraseIt(it)
//	    } else {
//	        it.Next()
//	    }
//	}
//
// EraseIt invalidates the iterator passed to it (and any copies of that
// position); using an invalidated iterator panics.
type Iterator struct {
	convos  *Conversations
	keys    [3][]string
	kind    int
	idx     int
	invalid bool
}

var kindKeys = [3]string{keyOneToOne, keyOpenGroup, keyLegacyClosed}

// Begin returns an iterator positioned at the first conversation. The key
// order is snapshotted; records themselves are read live.
func (c *Conversations) Begin() *Iterator {
	it := &Iterator{convos: c}
	for i, key := range kindKeys {
		if d := c.dig(key); d != nil {
			it.keys[i] = d.Keys()
		}
	}
	it.settle()
	return it
}

// Done reports whether the iterator is past the last conversation. Records
// erased since the last advance are skipped here, so a loop terminates
// cleanly even when the trailing records were erased out-of-band.
func (it *Iterator) Done() bool {
	it.mustValid()
	it.settle()
	return it.kind >= len(it.keys)
}

// Next advances to the next conversation.
func (it *Iterator) Next() {
	it.mustValid()
	if it.kind >= len(it.keys) {
		return
	}
	it.idx++
	it.settle()
}

// Value returns an independent copy of the current record.
func (it *Iterator) Value() Convo {
	it.mustValid()
	it.settle()
	if it.kind >= len(it.keys) {
		panic("session: Value called on finished conversations iterator")
	}
	key := it.keys[it.kind][it.idx]
	d := it.convos.dig(kindKeys[it.kind], key)
	switch it.kind {
	case 0:
		return loadOneToOne(key, d)
	case 1:
		urlLen, err := parseOpenGroupKey(key)
		if err != nil {
			// settle() only stops on live keys; a malformed one cannot be
			// stored by Set
			panic("session: malformed open group key in tree")
		}
		return loadOpenGroup(key, urlLen, d)
	default:
		return loadLegacyClosedGroup(key, d)
	}
}

// settle advances past exhausted kinds and snapshot keys whose record has
// been erased since Begin.
func (it *Iterator) settle() {
	for it.kind < len(it.keys) {
		if it.idx >= len(it.keys[it.kind]) {
			it.kind++
			it.idx = 0
			continue
		}
		key := it.keys[it.kind][it.idx]
		if d := it.convos.dig(kindKeys[it.kind]); d != nil {
			if _, ok := d.Get(key); ok {
				return
			}
		}
		it.idx++
	}
}

func (it *Iterator) mustValid() {
	if it.invalid {
		panic("session: use of invalidated conversations iterator")
	}
}

// EraseIt removes the conversation under it and returns the iterator for
// the next position. The passed-in iterator is invalidated; incrementing
// it after the erase is a caller bug and panics.
func (c *Conversations) EraseIt(it *Iterator) *Iterator {
	it.mustValid()
	it.settle()
	if it.kind >= len(it.keys) {
		panic("session: EraseIt called on finished conversations iterator")
	}
	key := it.keys[it.kind][it.idx]
	if d := c.dig(kindKeys[it.kind]); d != nil {
		if d.Delete(key) {
			c.dirty = true
		}
	}
	next := &Iterator{convos: c, keys: it.keys, kind: it.kind, idx: it.idx + 1}
	next.settle()
	it.invalid = true
	return next
}
