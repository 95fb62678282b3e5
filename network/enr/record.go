// Package enr decodes Ethereum Node Records: the self-describing,
// RLP-encoded values that discovery v5 nodes advertise their address,
// protocol capabilities, and identity with. Decoding is purely structural
// plus a semantic projection over well-known keys; signatures are extracted
// positionally and never verified, and nothing is re-encoded.
package enr

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"github.com/migalabs/eth-research/encoding/rlp"
	"github.com/pkg/errors"
)

// Prefix marks the textual form of a node record.
const Prefix = "enr:"

// ErrInvalidRecord is returned when a textual record does not carry the
// prefix, its payload is not valid base64 or RLP, or the decoded structure
// does not have the signature/sequence/pairs shape of a node record.
var ErrInvalidRecord = errors.New("invalid node record")

// ErrNoEntry is returned by typed accessors when the requested key is not
// present in the record.
var ErrNoEntry = errors.New("no such record entry")

// Well-known transport keys. Consensus-specific keys live in
// params.BeaconNetworkConfig so alternate networks can override them.
const (
	idKey        = "id"
	ipKey        = "ip"
	ip6Key       = "ip6"
	secp256k1Key = "secp256k1"
	udpKey       = "udp"
	tcpKey       = "tcp"
	quicKey      = "quic"
	udp6Key      = "udp6"
	tcp6Key      = "tcp6"
	quic6Key     = "quic6"
)

// Pair is one key/value entry of a record, in input order. Value holds the
// raw bytes of the entry; an empty-list value is normalized to empty bytes.
// The rare entry whose value is a non-empty RLP list (some execution clients
// encode their fork ID this way) keeps the decoded structure in Item and
// leaves Value nil.
type Pair struct {
	Key   string
	Value []byte
	Item  *rlp.Item
}

// Record is a decoded node record: the positional signature and sequence
// number followed by the advertised key/value pairs. The flattened map view
// keeps the last occurrence of a duplicated key. Records are immutable once
// parsed and independent between Parse calls.
type Record struct {
	Signature []byte
	Seq       uint64
	Pairs     []Pair

	kv map[string]Pair
}

// Parse decodes the textual form of a node record. Any rlp.Option is passed
// through to the generic decoder, so callers can tighten length strictness
// or the nesting depth budget for untrusted input.
func Parse(s string, opts ...rlp.Option) (*Record, error) {
	r, err := parse(s, opts...)
	if err != nil {
		recordsDecoded.WithLabelValues("error").Inc()
		return nil, err
	}
	recordsDecoded.WithLabelValues("ok").Inc()
	return r, nil
}

func parse(s string, opts ...rlp.Option) (*Record, error) {
	if !strings.HasPrefix(s, Prefix) {
		return nil, errors.Wrapf(ErrInvalidRecord, "missing %q prefix", Prefix)
	}

	// The textual payload is url-safe base64 without padding.
	payload := strings.TrimRight(s[len(Prefix):], "=")
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidRecord, "base64 payload: %v", err)
	}

	root, err := rlp.Decode(raw, opts...)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidRecord, "rlp payload: %v", err)
	}
	if root.Kind() != rlp.List {
		return nil, errors.Wrap(ErrInvalidRecord, "top-level item is not a list")
	}
	elems := root.List()
	if len(elems) < 2 {
		return nil, errors.Wrapf(ErrInvalidRecord, "want at least signature and sequence number, got %d elements", len(elems))
	}
	if (len(elems)-2)%2 != 0 {
		return nil, errors.Wrap(ErrInvalidRecord, "odd key/value element count")
	}

	r := &Record{
		Signature: []byte{},
		kv:        make(map[string]Pair, (len(elems)-2)/2),
	}
	// The signature is stored without interpretation. A non-string element
	// in its position degrades to an empty signature rather than an error.
	if elems[0].Kind() == rlp.String {
		r.Signature = elems[0].Bytes()
	}
	if elems[1].Kind() != rlp.String {
		return nil, errors.Wrap(ErrInvalidRecord, "sequence number is not a byte string")
	}
	seq, err := elems[1].Uint64()
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidRecord, "sequence number: %v", err)
	}
	r.Seq = seq

	for i := 2; i < len(elems); i += 2 {
		k, v := elems[i], elems[i+1]
		if k.Kind() != rlp.String {
			return nil, errors.Wrap(ErrInvalidRecord, "record key is not a byte string")
		}
		if !utf8.Valid(k.Bytes()) {
			return nil, errors.Wrap(ErrInvalidRecord, "record key is not valid utf-8")
		}
		p := Pair{Key: string(k.Bytes())}
		switch {
		case v.Kind() == rlp.String:
			p.Value = v.Bytes()
		case len(v.List()) == 0:
			// Some values (like snap's) are empty lists rather than
			// empty byte strings.
			p.Value = []byte{}
		default:
			p.Item = v
		}
		r.Pairs = append(r.Pairs, p)
		// Last occurrence wins for duplicated keys.
		r.kv[p.Key] = p
	}
	return r, nil
}

// Has reports whether the record advertises the given key, regardless of the
// shape of its value.
func (r *Record) Has(key string) bool {
	_, ok := r.kv[key]
	return ok
}

// Get returns the raw value bytes for a key. It reports false when the key
// is absent or its value is a structured (non-empty list) entry.
func (r *Record) Get(key string) ([]byte, bool) {
	p, ok := r.kv[key]
	if !ok || p.Item != nil {
		return nil, false
	}
	return p.Value, true
}

// Lookup returns the flattened pair for a key.
func (r *Record) Lookup(key string) (Pair, bool) {
	p, ok := r.kv[key]
	return p, ok
}

// Keys returns the distinct keys of the record in first-appearance order.
func (r *Record) Keys() []string {
	seen := make(map[string]bool, len(r.kv))
	keys := make([]string, 0, len(r.kv))
	for _, p := range r.Pairs {
		if seen[p.Key] {
			continue
		}
		seen[p.Key] = true
		keys = append(keys, p.Key)
	}
	return keys
}
