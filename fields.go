package session

import "github.com/Aerilym/libsession-util/internal/bt"

// Typed accessors over tree paths. Reads are pure; writes touch exactly
// one path and mark the object as needing a push. The sentinel policies
// (setFlag, setNonemptyStr, setNonzeroInt, setPositiveInt, setPairIf)
// encode "default value means absent": a field at its default is removed
// from the tree rather than stored, keeping blobs minimal and letting
// merge reason only about presence vs. absence for those fields.

// dig returns the sub-dict at the given path, or nil if any step is
// missing or not a dict.
func (c *config) dig(path ...string) *bt.Dict {
	cur := c.data
	for _, key := range path {
		val, ok := cur.Get(key)
		if !ok {
			return nil
		}
		cur, ok = val.(*bt.Dict)
		if !ok {
			return nil
		}
	}
	return cur
}

// digOrCreate returns the sub-dict at the given path, creating missing
// steps. A non-dict value in the way is replaced.
func (c *config) digOrCreate(path ...string) *bt.Dict {
	cur := c.data
	for _, key := range path {
		if val, ok := cur.Get(key); ok {
			if d, ok := val.(*bt.Dict); ok {
				cur = d
				continue
			}
		}
		d := bt.NewDict()
		cur.Set(key, d)
		c.dirty = true
		cur = d
	}
	return cur
}

func maybeInt(d *bt.Dict, key string) (int64, bool) {
	if d == nil {
		return 0, false
	}
	if val, ok := d.Get(key); ok {
		if n, ok := val.(bt.Int); ok {
			return int64(n), true
		}
	}
	return 0, false
}

func maybeStr(d *bt.Dict, key string) (string, bool) {
	if d == nil {
		return "", false
	}
	if val, ok := d.Get(key); ok {
		if s, ok := val.(bt.String); ok {
			return string(s), true
		}
	}
	return "", false
}

func maybeSet(d *bt.Dict, key string) (bt.Set, bool) {
	if d == nil {
		return nil, false
	}
	if val, ok := d.Get(key); ok {
		if s, ok := val.(bt.Set); ok {
			return s, true
		}
	}
	return nil, false
}

func (c *config) setInt(d *bt.Dict, key string, val int64) {
	if cur, ok := d.Get(key); ok {
		if n, ok := cur.(bt.Int); ok && int64(n) == val {
			return
		}
	}
	d.Set(key, bt.Int(val))
	c.dirty = true
}

func (c *config) setStr(d *bt.Dict, key string, val string) {
	if cur, ok := d.Get(key); ok {
		if s, ok := cur.(bt.String); ok && string(s) == val {
			return
		}
	}
	d.Set(key, bt.String(val))
	c.dirty = true
}

// eraseField removes a path leaf only if present, reporting whether it was.
func (c *config) eraseField(d *bt.Dict, key string) bool {
	if d == nil {
		return false
	}
	if d.Delete(key) {
		c.dirty = true
		return true
	}
	return false
}

// setFlag stores 1 for true and erases the field for false.
func (c *config) setFlag(d *bt.Dict, key string, val bool) {
	if val {
		c.setInt(d, key, 1)
	} else {
		c.eraseField(d, key)
	}
}

// setNonemptyStr stores the string if non-empty, erases it if empty.
func (c *config) setNonemptyStr(d *bt.Dict, key string, val string) {
	if val != "" {
		c.setStr(d, key, val)
	} else {
		c.eraseField(d, key)
	}
}

// setNonzeroInt stores the integer if non-zero, erases it if 0.
func (c *config) setNonzeroInt(d *bt.Dict, key string, val int64) {
	if val != 0 {
		c.setInt(d, key, val)
	} else {
		c.eraseField(d, key)
	}
}

// setPositiveInt stores the integer if positive, erases it if <= 0.
func (c *config) setPositiveInt(d *bt.Dict, key string, val int64) {
	if val > 0 {
		c.setInt(d, key, val)
	} else {
		c.eraseField(d, key)
	}
}

// setPairIf stores both fields when cond holds, otherwise erases both.
func (c *config) setPairIf(cond bool, d *bt.Dict, key1 string, val1 int64, key2 string, val2 int64) {
	if cond {
		c.setInt(d, key1, val1)
		c.setInt(d, key2, val2)
	} else {
		c.eraseField(d, key1)
		c.eraseField(d, key2)
	}
}
