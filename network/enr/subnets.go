package enr

import (
	"github.com/migalabs/eth-research/config/params"
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-bitfield"
)

const (
	attestationSubnetCount   = uint64(64)
	syncCommitteeSubnetCount = uint64(4)
)

// AttestationSubnets reads the attestation subnets entry from a record and
// determines the committee indices of the attestation subnets the node is
// subscribed to.
func AttestationSubnets(r *Record) (map[uint64]bool, error) {
	bitV, err := attBitvector(r)
	if err != nil {
		return nil, errors.Wrap(err, "att bit vector")
	}

	indices := make(map[uint64]bool, attestationSubnetCount)
	for i := uint64(0); i < attestationSubnetCount; i++ {
		if bitV.BitAt(i) {
			indices[i] = true
		}
	}
	return indices, nil
}

// SyncSubnets reads the sync committee subnets entry from a record and
// determines the committee indices of the sync subnets the node is
// subscribed to.
func SyncSubnets(r *Record) (map[uint64]bool, error) {
	bitS, err := syncBitvector(r)
	if err != nil {
		return nil, errors.Wrap(err, "sync bit vector")
	}

	indices := make(map[uint64]bool, syncCommitteeSubnetCount)
	for i := uint64(0); i < syncCommitteeSubnetCount; i++ {
		if bitS.BitAt(i) {
			indices[i] = true
		}
	}
	return indices, nil
}

// Parses the attestation subnets entry in a record and extracts its value
// as a bitvector for further manipulation.
func attBitvector(r *Record) (bitfield.Bitvector64, error) {
	key := params.BeaconNetworkConfig().AttSubnetKey
	raw, ok := r.Get(key)
	if !ok {
		return nil, errors.Wrap(ErrNoEntry, key)
	}
	// lint:ignore uintcast -- subnet count can be safely cast to int.
	if len(raw) != byteCount(int(attestationSubnetCount)) {
		return nil, errors.Errorf("invalid bitvector provided, it has a size of %d", len(raw))
	}
	return bitfield.Bitvector64(raw), nil
}

// Parses the sync committee subnets entry in a record and extracts its value
// as a bitvector for further manipulation.
func syncBitvector(r *Record) (bitfield.Bitvector4, error) {
	key := params.BeaconNetworkConfig().SyncCommsSubnetKey
	raw, ok := r.Get(key)
	if !ok {
		return nil, errors.Wrap(ErrNoEntry, key)
	}
	// lint:ignore uintcast -- subnet count can be safely cast to int.
	if len(raw) != byteCount(int(syncCommitteeSubnetCount)) {
		return nil, errors.Errorf("invalid bitvector provided, it has a size of %d", len(raw))
	}
	return bitfield.Bitvector4(raw), nil
}

// Determines the number of bytes a bitvector of the given length needs.
func byteCount(bitCount int) int {
	numOfBytes := bitCount / 8
	if bitCount%8 != 0 {
		numOfBytes++
	}
	return numOfBytes
}
