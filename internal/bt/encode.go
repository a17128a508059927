package bt

import (
	"fmt"
	"strconv"
)

// Marshal returns the canonical encoding of v. Dict keys are emitted in
// byte-sorted order and sets in sorted element order, so any two values for
// which Equal holds produce identical bytes.
func Marshal(v Value) []byte {
	return appendValue(nil, v)
}

// Append appends the canonical encoding of v to buf.
func Append(buf []byte, v Value) []byte {
	return appendValue(buf, v)
}

func appendValue(buf []byte, v Value) []byte {
	switch val := v.(type) {
	case Int:
		buf = append(buf, 'i')
		buf = strconv.AppendInt(buf, int64(val), 10)
		return append(buf, 'e')
	case String:
		return appendString(buf, string(val))
	case Set:
		buf = append(buf, 'l')
		for _, e := range val {
			buf = appendString(buf, e)
		}
		return append(buf, 'e')
	case Raw:
		return append(buf, val...)
	case *Dict:
		buf = append(buf, 'd')
		for _, e := range val.entries {
			buf = appendString(buf, e.key)
			buf = appendValue(buf, e.val)
		}
		return append(buf, 'e')
	}
	panic(fmt.Sprintf("bt: cannot encode %T", v))
}

func appendString(buf []byte, s string) []byte {
	buf = strconv.AppendInt(buf, int64(len(s)), 10)
	buf = append(buf, ':')
	return append(buf, s...)
}
