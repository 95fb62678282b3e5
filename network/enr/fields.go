package enr

import (
	"encoding/hex"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/migalabs/eth-research/config/params"
	"github.com/migalabs/eth-research/encoding/rlp"
)

// ForkID is the decoded eth2 entry: the current fork digest together with
// the next scheduled fork. When the raw value is not the expected 16 bytes
// it is reported as-is with LengthMismatch set instead of failing the
// record.
type ForkID struct {
	CurrentForkDigest string `json:"fork_digest,omitempty"`
	NextForkVersion   string `json:"next_fork_version,omitempty"`
	NextForkEpoch     uint64 `json:"next_fork_epoch,omitempty"`
	Raw               string `json:"raw,omitempty"`
	LengthMismatch    bool   `json:"length_mismatch,omitempty"`
}

// Extra renders a key outside the well-known set. Hex is always populated;
// UTF8 only when the bytes are valid text, Int only when the value fits in
// eight bytes, and List only for the rare structured value (leaf byte
// strings, depth-first).
type Extra struct {
	Hex  string   `json:"hex,omitempty"`
	UTF8 *string  `json:"utf8,omitempty"`
	Int  *uint64  `json:"int,omitempty"`
	List []string `json:"list,omitempty"`
}

// Summary is the semantic view over a record's pairs. It is a pure
// projection: building it never mutates the record and interpretation
// anomalies degrade to raw renderings rather than errors.
type Summary struct {
	Seq       uint64 `json:"seq"`
	Signature string `json:"signature"`

	ID  string `json:"id,omitempty"`
	IP  string `json:"ip,omitempty"`
	IP6 string `json:"ip6,omitempty"`

	UDP   *uint64 `json:"udp,omitempty"`
	TCP   *uint64 `json:"tcp,omitempty"`
	QUIC  *uint64 `json:"quic,omitempty"`
	UDP6  *uint64 `json:"udp6,omitempty"`
	TCP6  *uint64 `json:"tcp6,omitempty"`
	QUIC6 *uint64 `json:"quic6,omitempty"`

	Secp256k1         string  `json:"secp256k1,omitempty"`
	Eth2              *ForkID `json:"eth2,omitempty"`
	NextForkDigest    string  `json:"nfd,omitempty"`
	Attnets           string  `json:"attnets,omitempty"`
	Syncnets          string  `json:"syncnets,omitempty"`
	CustodyGroupCount *uint64 `json:"cgc,omitempty"`

	Extras map[string]Extra `json:"extras,omitempty"`

	Role Role `json:"role_guess"`
}

// Summarize interprets the well-known keys of a record into typed fields and
// classifies everything else as extras. The projection is derived only from
// the flattened map, so it can be recomputed freely.
func Summarize(r *Record) *Summary {
	cfg := params.BeaconNetworkConfig()
	s := &Summary{
		Seq:       r.Seq,
		Signature: hexutil.Encode(r.Signature),
		Role:      Classify(r),
	}

	known := map[string]bool{
		idKey: true, ipKey: true, ip6Key: true, secp256k1Key: true,
		cfg.ETH2Key: true, cfg.NextForkDigestKey: true,
		cfg.AttSubnetKey: true, cfg.SyncCommsSubnetKey: true,
		cfg.CustodyGroupCountKey: true,
	}

	if v, ok := r.Get(idKey); ok {
		if utf8.Valid(v) {
			s.ID = string(v)
		} else {
			s.ID = hexutil.Encode(v)
		}
	}
	if v, ok := r.Get(ipKey); ok {
		s.IP = formatIP(v)
	}
	if v, ok := r.Get(ip6Key); ok {
		s.IP6 = formatIP(v)
	}

	ports := []struct {
		key  string
		dest **uint64
	}{
		{udpKey, &s.UDP},
		{tcpKey, &s.TCP},
		{quicKey, &s.QUIC},
		{udp6Key, &s.UDP6},
		{tcp6Key, &s.TCP6},
		{quic6Key, &s.QUIC6},
	}
	for _, p := range ports {
		known[p.key] = true
		if v, ok := r.Get(p.key); ok {
			if n := uintValue(v); n != nil {
				*p.dest = n
			} else {
				s.setExtra(p.key, Extra{Hex: hexutil.Encode(v)})
			}
		}
	}

	if v, ok := r.Get(secp256k1Key); ok {
		s.Secp256k1 = hexutil.Encode(v)
	}
	if v, ok := r.Get(cfg.ETH2Key); ok {
		s.Eth2 = decodeForkID(v)
	}
	if v, ok := r.Get(cfg.NextForkDigestKey); ok {
		s.NextForkDigest = hexutil.Encode(v)
	}
	if v, ok := r.Get(cfg.AttSubnetKey); ok {
		s.Attnets = hexutil.Encode(v)
	}
	if v, ok := r.Get(cfg.SyncCommsSubnetKey); ok {
		s.Syncnets = hexutil.Encode(v)
	}
	if v, ok := r.Get(cfg.CustodyGroupCountKey); ok {
		if n := uintValue(v); n != nil {
			s.CustodyGroupCount = n
		} else {
			s.setExtra(cfg.CustodyGroupCountKey, Extra{Hex: hexutil.Encode(v)})
		}
	}

	for _, key := range r.Keys() {
		if known[key] {
			continue
		}
		p, _ := r.Lookup(key)
		s.setExtra(key, extraValue(p))
	}
	return s
}

func (s *Summary) setExtra(key string, e Extra) {
	if s.Extras == nil {
		s.Extras = make(map[string]Extra)
	}
	s.Extras[key] = e
}

// decodeForkID splits a 16 byte eth2 entry into fork_digest(4) ||
// next_fork_version(4) || next_fork_epoch(8). Other lengths degrade to the
// raw rendering.
func decodeForkID(v []byte) *ForkID {
	if len(v) != 16 {
		log.WithField("length", len(v)).Debug("Unexpected eth2 fork ID length, reporting raw value")
		return &ForkID{Raw: hexutil.Encode(v), LengthMismatch: true}
	}
	return &ForkID{
		CurrentForkDigest: hexutil.Encode(v[0:4]),
		NextForkVersion:   hexutil.Encode(v[4:8]),
		NextForkEpoch:     bytesToUint64(v[8:16]),
	}
}

func extraValue(p Pair) Extra {
	if p.Item != nil {
		return Extra{List: leafStrings(p.Item)}
	}
	e := Extra{Hex: hexutil.Encode(p.Value)}
	if utf8.Valid(p.Value) {
		text := string(p.Value)
		e.UTF8 = &text
	}
	if len(p.Value) <= 8 {
		n := bytesToUint64(p.Value)
		e.Int = &n
	}
	return e
}

// leafStrings flattens a structured value into the hex renderings of its
// leaf byte strings, depth-first.
func leafStrings(item *rlp.Item) []string {
	if item.Kind() == rlp.String {
		return []string{hexutil.Encode(item.Bytes())}
	}
	var out []string
	for _, child := range item.List() {
		out = append(out, leafStrings(child)...)
	}
	return out
}

// formatIP renders a 4 byte value as a dotted quad and a 16 byte value as
// eight colon-separated groups without zero compression. Other lengths fall
// back to hex.
func formatIP(v []byte) string {
	switch len(v) {
	case 4:
		parts := make([]string, 4)
		for i, b := range v {
			parts[i] = strconv.Itoa(int(b))
		}
		return strings.Join(parts, ".")
	case 16:
		parts := make([]string, 8)
		for i := 0; i < 8; i++ {
			parts[i] = hex.EncodeToString(v[2*i : 2*i+2])
		}
		return strings.Join(parts, ":")
	default:
		return hexutil.Encode(v)
	}
}

// bytesToUint64 decodes a big-endian unsigned integer. Empty bytes decode
// to 0; callers bound the width to eight bytes.
func bytesToUint64(v []byte) uint64 {
	var n uint64
	for _, b := range v {
		n = n<<8 | uint64(b)
	}
	return n
}

// uintValue returns nil for a value wider than eight bytes so that an
// oversized field degrades to its raw rendering instead of a truncated
// integer.
func uintValue(v []byte) *uint64 {
	if len(v) > 8 {
		log.WithField("length", len(v)).Debug("Integer field wider than 8 bytes, reporting raw value")
		return nil
	}
	n := bytesToUint64(v)
	return &n
}
