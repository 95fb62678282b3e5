package enr

import (
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/migalabs/eth-research/encoding/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A consensus-layer mainnet record and an execution-layer mainnet record,
// captured from the discovery network.
const (
	clRecord = "enr:-Ni4QKhc2sAPhDkXl5rVVIuAZnuJeXbGA4d0EYnj85voGWrOPnHZfloqz3xSDTg-wkpqFIij_X6V5rEZsk0EH_vfuk2GAZpyK7Jlh2F0dG5ldHOIAAYAAAAAAACDY2djBIRldGgykMsNGswGAAAAAGUGAAAAAACCaWSCdjSCaXCEW9JlLYNuZmSEjJ9i_oRxdWljgjLIiXNlY3AyNTZrMaED7bfniNwFhVLo9Kq2wTs4kAUBBPcV0sF4OWH3tgjDehqIc3luY25ldHMAg3RjcIIyyIN1ZHCCLuA"
	elRecord = "enr:-J24QG3pjTFObcDvTOTJr2qPOTDH3-YxDqS47Ylm-kgM5BUwb1oD5Id6fSRTfUzTahTa7y4TWx_HSV7wri7T6iYtyAQHg2V0aMfGhLjGKZ2AgmlkgnY0gmlwhJ1a19CJc2VjcDI1NmsxoQPlCNb7N__vcnsNC8YYkFkmNj8mibnR5NuvSowcRZsLU4RzbmFwwIN0Y3CCdl-DdWRwgnZf"
)

// Synthetic records built around a zero signature and sequence number 5.
const (
	dupKeyRecord    = "enr:-Fe4QAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAFgmlkgnY0g3VkcIIE0oN1ZHCCEOE"
	oddPairRecord   = "enr:-E24QAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAFgmlkgnY0g3VkcA"
	oneElemRecord   = "enr:-EK4QAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	emptyListRecord = "enr:-Em4QAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAFhHNuYXDA"
	badKeyRecord    = "enr:-Ee4QAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAFgv_-eA"
	listKeyRecord   = "enr:-Ea4QAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAFwWF4"
)

func TestParse_ConsensusRecord(t *testing.T) {
	r, err := Parse(clRecord)
	require.NoError(t, err)

	assert.Equal(t, uint64(1762852057701), r.Seq)
	assert.Equal(t,
		"0xa85cdac00f843917979ad5548b80667b897976c60387741189e3f39be8196ace3e71d97e5a2acf7c520d383ec24a6a1488a3fd7e95e6b119b24d041ffbdfba4d",
		hexutil.Encode(r.Signature),
	)

	id, ok := r.Get("id")
	require.True(t, ok)
	assert.Equal(t, []byte("v4"), id)

	ip, ok := r.Get("ip")
	require.True(t, ok)
	assert.Equal(t, []byte{0x5b, 0xd2, 0x65, 0x2d}, ip)

	attnets, ok := r.Get("attnets")
	require.True(t, ok)
	assert.Equal(t, 8, len(attnets))

	for _, key := range []string{"eth2", "nfd", "syncnets", "cgc", "udp", "tcp", "quic", "secp256k1"} {
		assert.True(t, r.Has(key), "missing %s", key)
	}
	assert.False(t, r.Has("eth"))
	assert.Equal(t, 11, len(r.Keys()))
}

func TestParse_ExecutionRecord(t *testing.T) {
	r, err := Parse(elRecord)
	require.NoError(t, err)

	assert.Equal(t, uint64(7), r.Seq)

	// The eth entry's value is a non-empty list, kept structurally.
	p, ok := r.Lookup("eth")
	require.True(t, ok)
	require.NotNil(t, p.Item)
	assert.Nil(t, p.Value)
	_, ok = r.Get("eth")
	assert.False(t, ok, "structured value must not be readable as bytes")

	// The snap entry's value is an empty list, normalized to empty bytes.
	snap, ok := r.Get("snap")
	require.True(t, ok)
	assert.Equal(t, []byte{}, snap)
}

func TestParse_Rejections(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{
			name:  "missing prefix",
			input: "enrx:-Ni4QKhc",
		},
		{
			name:  "bare payload without prefix",
			input: clRecord[len(Prefix):],
		},
		{
			name:  "invalid base64",
			input: "enr:!!!",
		},
		{
			name:  "payload is not a list",
			input: "enr:gmlk", // rlp for the 2 byte string "id"
		},
		{
			name:  "single element list",
			input: oneElemRecord,
		},
		{
			name:  "odd pair count",
			input: oddPairRecord,
		},
		{
			name:  "non-utf8 key",
			input: badKeyRecord,
		},
		{
			name:  "list key",
			input: listKeyRecord,
		},
		{
			name:  "empty payload",
			input: "enr:",
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.ErrorIs(t, err, ErrInvalidRecord)
		})
	}
}

func TestParse_DuplicateKeyKeepsLastValue(t *testing.T) {
	r, err := Parse(dupKeyRecord)
	require.NoError(t, err)

	// udp appears twice: 1234 then 4321. The flattened view keeps the
	// second, the ordered pairs keep both.
	v, ok := r.Get("udp")
	require.True(t, ok)
	assert.Equal(t, []byte{0x10, 0xe1}, v)

	var seen [][]byte
	for _, p := range r.Pairs {
		if p.Key == "udp" {
			seen = append(seen, p.Value)
		}
	}
	require.Equal(t, 2, len(seen))
	assert.Equal(t, []byte{0x04, 0xd2}, seen[0])
	assert.Equal(t, []byte{0x10, 0xe1}, seen[1])

	assert.Equal(t, []string{"id", "udp"}, r.Keys())
}

func TestParse_EmptyListValueNormalized(t *testing.T) {
	r, err := Parse(emptyListRecord)
	require.NoError(t, err)
	v, ok := r.Get("snap")
	require.True(t, ok)
	assert.Equal(t, []byte{}, v)
}

func TestParse_DecoderOptionsPassThrough(t *testing.T) {
	// A tight depth budget turns a structurally valid record into a
	// malformed payload, which surfaces as an invalid record.
	_, err := Parse(elRecord, rlp.WithMaxDepth(1))
	require.ErrorIs(t, err, ErrInvalidRecord)

	_, err = Parse(elRecord, rlp.WithMaxDepth(8))
	require.NoError(t, err)
}

func TestParse_IndependentRecords(t *testing.T) {
	a, err := Parse(clRecord)
	require.NoError(t, err)
	b, err := Parse(clRecord)
	require.NoError(t, err)
	require.NotSame(t, a, b)
	assert.Equal(t, a.Pairs, b.Pairs)
}
