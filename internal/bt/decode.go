package bt

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrTruncated is returned when the input ends mid-value.
var ErrTruncated = errors.New("bt: truncated input")

type decoder struct {
	data []byte
	pos  int
}

// Unmarshal decodes a single value and requires the input to be fully
// consumed.
func Unmarshal(data []byte) (Value, error) {
	d := &decoder{data: data}
	v, err := d.value()
	if err != nil {
		return nil, err
	}
	if d.pos != len(data) {
		return nil, fmt.Errorf("bt: %d trailing bytes after value", len(data)-d.pos)
	}
	return v, nil
}

// ParseDict decodes a top-level dict, invoking fn for each entry in order
// with the decoded value and the raw encoded bytes of that value. The raw
// slice aliases data. Keys must be unique and in sorted order.
func ParseDict(data []byte, fn func(key string, val Value, raw []byte) error) error {
	d := &decoder{data: data}
	if err := d.expect('d'); err != nil {
		return err
	}
	prev := ""
	first := true
	for {
		if d.pos >= len(d.data) {
			return ErrTruncated
		}
		if d.data[d.pos] == 'e' {
			d.pos++
			break
		}
		key, err := d.str()
		if err != nil {
			return err
		}
		if !first && key <= prev {
			return fmt.Errorf("bt: dict keys out of order (%q after %q)", key, prev)
		}
		first, prev = false, key
		start := d.pos
		val, err := d.value()
		if err != nil {
			return err
		}
		if err := fn(key, val, d.data[start:d.pos]); err != nil {
			return err
		}
	}
	if d.pos != len(d.data) {
		return fmt.Errorf("bt: %d trailing bytes after dict", len(d.data)-d.pos)
	}
	return nil
}

func (d *decoder) expect(c byte) error {
	if d.pos >= len(d.data) {
		return ErrTruncated
	}
	if d.data[d.pos] != c {
		return fmt.Errorf("bt: expected %q at offset %d, found %q", c, d.pos, d.data[d.pos])
	}
	d.pos++
	return nil
}

func (d *decoder) value() (Value, error) {
	if d.pos >= len(d.data) {
		return nil, ErrTruncated
	}
	switch c := d.data[d.pos]; {
	case c == 'i':
		return d.integer()
	case c >= '0' && c <= '9':
		s, err := d.str()
		if err != nil {
			return nil, err
		}
		return String(s), nil
	case c == 'l':
		return d.set()
	case c == 'd':
		return d.dict()
	default:
		return nil, fmt.Errorf("bt: invalid type byte %q at offset %d", c, d.pos)
	}
}

func (d *decoder) integer() (Int, error) {
	d.pos++ // 'i'
	start := d.pos
	for d.pos < len(d.data) && d.data[d.pos] != 'e' {
		d.pos++
	}
	if d.pos >= len(d.data) {
		return 0, ErrTruncated
	}
	body := string(d.data[start:d.pos])
	// leading zeros and negative zero have no canonical meaning
	if len(body) > 1 && (body[0] == '0' || (body[0] == '-' && body[1] == '0')) {
		return 0, fmt.Errorf("bt: non-canonical integer %q at offset %d", body, start)
	}
	n, err := strconv.ParseInt(body, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bt: invalid integer at offset %d: %w", start, err)
	}
	d.pos++ // 'e'
	return Int(n), nil
}

func (d *decoder) str() (string, error) {
	start := d.pos
	for d.pos < len(d.data) && d.data[d.pos] != ':' {
		if c := d.data[d.pos]; c < '0' || c > '9' {
			return "", fmt.Errorf("bt: invalid string length at offset %d", start)
		}
		d.pos++
	}
	if d.pos >= len(d.data) {
		return "", ErrTruncated
	}
	digits := string(d.data[start:d.pos])
	if len(digits) > 1 && digits[0] == '0' {
		return "", fmt.Errorf("bt: non-canonical string length %q at offset %d", digits, start)
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return "", fmt.Errorf("bt: invalid string length at offset %d: %w", start, err)
	}
	d.pos++ // ':'
	// compare against the remaining bytes; adding n to the position first
	// could overflow for a huge declared length
	if n > len(d.data)-d.pos {
		return "", ErrTruncated
	}
	s := string(d.data[d.pos : d.pos+n])
	d.pos += n
	return s, nil
}

// set decodes a list of strings as a Set; elements are normalized to sorted
// unique order so decoded sets are canonical even if the input was not.
func (d *decoder) set() (Set, error) {
	d.pos++ // 'l'
	var elems []string
	for {
		if d.pos >= len(d.data) {
			return nil, ErrTruncated
		}
		if d.data[d.pos] == 'e' {
			d.pos++
			return NewSet(elems...), nil
		}
		s, err := d.str()
		if err != nil {
			return nil, err
		}
		elems = append(elems, s)
	}
}

func (d *decoder) dict() (*Dict, error) {
	d.pos++ // 'd'
	out := NewDict()
	prev := ""
	first := true
	for {
		if d.pos >= len(d.data) {
			return nil, ErrTruncated
		}
		if d.data[d.pos] == 'e' {
			d.pos++
			return out, nil
		}
		key, err := d.str()
		if err != nil {
			return nil, err
		}
		if !first && key <= prev {
			return nil, fmt.Errorf("bt: dict keys out of order (%q after %q)", key, prev)
		}
		first, prev = false, key
		val, err := d.value()
		if err != nil {
			return nil, err
		}
		out.Set(key, val)
	}
}
