// Package rlp implements a strict decoder for the recursive length prefix
// encoding used by the Ethereum discovery protocols. It is decode-only:
// records received from the network are untrusted, so every length prefix is
// bounds-checked and a buffer is rejected unless it is consumed exactly.
package rlp

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// ErrMalformed is returned for any structural violation of the encoding:
// a truncated length prefix, a declared length extending past the end of the
// buffer, unconsumed bytes inside a list span, trailing bytes after the
// top-level item, or nesting beyond the configured depth budget.
var ErrMalformed = errors.New("malformed rlp encoding")

// DefaultMaxDepth bounds list nesting. Depth is attacker-controlled, so the
// decoder refuses to recurse past this budget instead of exhausting the
// call stack.
const DefaultMaxDepth = 1024

// Kind discriminates the two item variants of the encoding.
type Kind uint8

const (
	// String is an opaque byte string.
	String Kind = iota
	// List is an ordered sequence of items.
	List
)

// Item is a single node of the decoded tree: either a byte string or a list
// of further items. Items are immutable once produced and alias the input
// buffer rather than copying it.
type Item struct {
	kind Kind
	str  []byte
	list []*Item
}

// Kind reports which variant the item holds.
func (i *Item) Kind() Kind {
	return i.kind
}

// Bytes returns the payload of a String item. It returns nil for lists.
func (i *Item) Bytes() []byte {
	if i.kind != String {
		return nil
	}
	return i.str
}

// List returns the children of a List item. It returns nil for strings.
func (i *Item) List() []*Item {
	if i.kind != List {
		return nil
	}
	return i.list
}

// Uint64 interprets a String item as a big-endian unsigned integer.
// An empty payload decodes to 0.
func (i *Item) Uint64() (uint64, error) {
	if i.kind != String {
		return 0, errors.New("item is a list, not an integer")
	}
	if len(i.str) > 8 {
		return 0, errors.Errorf("integer payload of %d bytes overflows uint64", len(i.str))
	}
	var v uint64
	for _, b := range i.str {
		v = v<<8 | uint64(b)
	}
	return v, nil
}

// Option configures a decode call.
type Option func(*decoder)

// WithMaxDepth overrides the default nesting depth budget.
func WithMaxDepth(n int) Option {
	return func(d *decoder) {
		d.maxDepth = n
	}
}

// WithStrictLengths rejects long-form length prefixes that are not minimally
// encoded: a length with leading zero bytes, or a long form where the value
// fits the short form. The default is lax, accepting both.
func WithStrictLengths() Option {
	return func(d *decoder) {
		d.strict = true
	}
}

type decoder struct {
	data     []byte
	maxDepth int
	strict   bool
}

// Decode parses a single item from data. The buffer must be consumed
// exactly: trailing bytes after the top-level item are an error, as is any
// gap or overrun inside a list span.
func Decode(data []byte, opts ...Option) (*Item, error) {
	d := &decoder{data: data, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(d)
	}
	item, end, err := d.decodeAt(0, 1)
	if err != nil {
		return nil, err
	}
	if end != len(data) {
		return nil, errors.Wrapf(ErrMalformed, "%d trailing bytes after top-level item", len(data)-end)
	}
	return item, nil
}

// decodeAt decodes the item starting at pos and returns it together with the
// position one past its encoding.
func (d *decoder) decodeAt(pos, depth int) (*Item, int, error) {
	if depth > d.maxDepth {
		return nil, 0, errors.Wrapf(ErrMalformed, "nesting exceeds maximum depth of %d", d.maxDepth)
	}
	if pos >= len(d.data) {
		return nil, 0, errors.Wrap(ErrMalformed, "decode past end of buffer")
	}

	b0 := d.data[pos]
	switch {
	case b0 <= 0x7f:
		// Single byte literal, value is the byte itself.
		return &Item{kind: String, str: d.data[pos : pos+1]}, pos + 1, nil

	case b0 <= 0xb7:
		length := int(b0 - 0x80)
		start := pos + 1
		if start+length > len(d.data) {
			return nil, 0, errors.Wrapf(ErrMalformed, "string of %d bytes extends past end of buffer", length)
		}
		return &Item{kind: String, str: d.data[start : start+length]}, start + length, nil

	case b0 <= 0xbf:
		length, start, err := d.readLength(pos+1, int(b0-0xb7))
		if err != nil {
			return nil, 0, err
		}
		if start+length > len(d.data) {
			return nil, 0, errors.Wrapf(ErrMalformed, "string of %d bytes extends past end of buffer", length)
		}
		return &Item{kind: String, str: d.data[start : start+length]}, start + length, nil

	case b0 <= 0xf7:
		return d.decodeList(pos+1, int(b0-0xc0), depth)

	default:
		length, start, err := d.readLength(pos+1, int(b0-0xf7))
		if err != nil {
			return nil, 0, err
		}
		return d.decodeList(start, length, depth)
	}
}

// decodeList decodes the children occupying exactly length bytes from start.
func (d *decoder) decodeList(start, length, depth int) (*Item, int, error) {
	end := start + length
	if end > len(d.data) {
		return nil, 0, errors.Wrapf(ErrMalformed, "list of %d bytes extends past end of buffer", length)
	}
	item := &Item{kind: List, list: []*Item{}}
	for pos := start; pos < end; {
		child, next, err := d.decodeAt(pos, depth+1)
		if err != nil {
			return nil, 0, err
		}
		if next > end {
			return nil, 0, errors.Wrapf(ErrMalformed, "list child overruns declared span by %d bytes", next-end)
		}
		item.list = append(item.list, child)
		pos = next
	}
	return item, end, nil
}

// readLength reads a big-endian length field of width bytes at pos and
// returns the length together with the position of the payload.
func (d *decoder) readLength(pos, width int) (int, int, error) {
	if pos+width > len(d.data) {
		return 0, 0, errors.Wrap(ErrMalformed, "truncated length prefix")
	}
	if d.strict && d.data[pos] == 0 {
		return 0, 0, errors.Wrap(ErrMalformed, "length prefix has leading zero bytes")
	}
	var buf [8]byte
	copy(buf[8-width:], d.data[pos:pos+width])
	v := binary.BigEndian.Uint64(buf[:])
	if v > uint64(len(d.data)) {
		return 0, 0, errors.Wrapf(ErrMalformed, "declared length %d exceeds buffer size", v)
	}
	if d.strict && v <= 55 {
		return 0, 0, errors.Wrapf(ErrMalformed, "length %d must use the short form", v)
	}
	return int(v), pos + width, nil
}
