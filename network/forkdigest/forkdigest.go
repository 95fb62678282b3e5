// Package forkdigest computes the 4 byte fork digest consensus-layer nodes
// advertise and gossip under: the first four bytes of the SSZ
// hash_tree_root of ForkData(current_version, genesis_validators_root).
// Digests produced here are the values that show up in the eth2 and nfd
// entries of node records.
package forkdigest

import (
	"crypto/sha256"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// Compute returns the fork digest for a fork version and genesis validators
// root. ForkData has two fixed-size fields, so its hash tree root is a
// single sha256 over the two 32 byte chunks: the version right-padded with
// zeros, then the root.
func Compute(version [4]byte, genesisValidatorsRoot [32]byte) [4]byte {
	var chunk [32]byte
	copy(chunk[:], version[:])

	h := sha256.New()
	h.Write(chunk[:])
	h.Write(genesisValidatorsRoot[:])
	sum := h.Sum(nil)

	var digest [4]byte
	copy(digest[:], sum[:4])
	return digest
}

// ComputeHex is Compute over 0x-prefixed hex inputs, for callers holding
// config values in textual form.
func ComputeHex(versionHex, genesisValidatorsRootHex string) (string, error) {
	v, err := hexutil.Decode(versionHex)
	if err != nil {
		return "", errors.Wrap(err, "fork version")
	}
	if len(v) != 4 {
		return "", errors.Errorf("fork version must be exactly 4 bytes, got %d", len(v))
	}
	g, err := hexutil.Decode(genesisValidatorsRootHex)
	if err != nil {
		return "", errors.Wrap(err, "genesis validators root")
	}
	if len(g) != 32 {
		return "", errors.Errorf("genesis validators root must be exactly 32 bytes, got %d", len(g))
	}

	var version [4]byte
	var root [32]byte
	copy(version[:], v)
	copy(root[:], g)
	digest := Compute(version, root)
	return hexutil.Encode(digest[:]), nil
}

// ScheduleEntry names one scheduled fork version.
type ScheduleEntry struct {
	Name    string
	Version [4]byte
}

// MainnetGenesisValidatorsRoot is the genesis validators root of the
// Ethereum mainnet beacon chain.
var MainnetGenesisValidatorsRoot = [32]byte{
	0x4b, 0x36, 0x3d, 0xb9, 0x4e, 0x28, 0x61, 0x20,
	0xd7, 0x6e, 0xb9, 0x05, 0x34, 0x0f, 0xdd, 0x4e,
	0x54, 0xbf, 0xe9, 0xf0, 0x6b, 0xf3, 0x3f, 0xf6,
	0xcf, 0x5a, 0xd2, 0x7f, 0x51, 0x1b, 0xfe, 0x95,
}

// MainnetSchedule lists the mainnet fork versions in activation order.
var MainnetSchedule = []ScheduleEntry{
	{Name: "phase0", Version: [4]byte{0x00, 0x00, 0x00, 0x00}},
	{Name: "altair", Version: [4]byte{0x01, 0x00, 0x00, 0x00}},
	{Name: "bellatrix", Version: [4]byte{0x02, 0x00, 0x00, 0x00}},
	{Name: "capella", Version: [4]byte{0x03, 0x00, 0x00, 0x00}},
	{Name: "deneb", Version: [4]byte{0x04, 0x00, 0x00, 0x00}},
	{Name: "electra", Version: [4]byte{0x05, 0x00, 0x00, 0x00}},
	{Name: "fulu", Version: [4]byte{0x06, 0x00, 0x00, 0x00}},
}
