package forkdigest

import (
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_MainnetSchedule(t *testing.T) {
	want := map[string]string{
		"phase0":    "0xb5303f2a",
		"altair":    "0xafcaaba0",
		"bellatrix": "0x4a26c58b",
		"capella":   "0xbba4da96",
		"deneb":     "0x6a95a1a9",
		"electra":   "0xad532ceb",
		"fulu":      "0x82fae541",
	}
	require.Equal(t, len(want), len(MainnetSchedule))
	for _, entry := range MainnetSchedule {
		digest := Compute(entry.Version, MainnetGenesisValidatorsRoot)
		assert.Equal(t, want[entry.Name], hexutil.Encode(digest[:]), "fork %s", entry.Name)
	}
}

func TestComputeHex(t *testing.T) {
	root := hexutil.Encode(MainnetGenesisValidatorsRoot[:])

	digest, err := ComputeHex("0x04000000", root)
	require.NoError(t, err)
	assert.Equal(t, "0x6a95a1a9", digest)

	cases := []struct {
		name    string
		version string
		root    string
	}{
		{name: "short version", version: "0x0400", root: root},
		{name: "long version", version: "0x0400000000", root: root},
		{name: "short root", version: "0x04000000", root: "0x1234"},
		{name: "bad hex", version: "0xzz000000", root: root},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeHex(tt.version, tt.root)
			assert.Error(t, err)
		})
	}
}
