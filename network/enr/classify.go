package enr

import "github.com/migalabs/eth-research/config/params"

// Role is a best-effort classification of the node behind a record, derived
// only from which capability keys are present. It is advisory output and
// never a reason to reject a record.
type Role uint8

const (
	// RoleUnknown marks records advertising no recognized capability key.
	RoleUnknown Role = iota
	// RoleConsensusLayer marks records advertising consensus-layer keys.
	RoleConsensusLayer
	// RoleExecutionLayer marks records advertising execution-layer keys.
	RoleExecutionLayer
	// RoleMixed marks records advertising both.
	RoleMixed
)

// Execution-layer capability keys. Not exhaustive, but the common ones.
var executionLayerKeys = []string{"eth", "snap", "les"}

func consensusLayerKeys() []string {
	cfg := params.BeaconNetworkConfig()
	return []string{
		cfg.ETH2Key,
		cfg.AttSubnetKey,
		cfg.SyncCommsSubnetKey,
		cfg.CustodyGroupCountKey,
		cfg.NextForkDigestKey,
	}
}

// Classify inspects which capability keys a record advertises. Presence is
// all that matters; values are not interpreted.
func Classify(r *Record) Role {
	hasCL := hasAny(r, consensusLayerKeys())
	hasEL := hasAny(r, executionLayerKeys)

	switch {
	case hasCL && hasEL:
		return RoleMixed
	case hasCL:
		return RoleConsensusLayer
	case hasEL:
		return RoleExecutionLayer
	default:
		return RoleUnknown
	}
}

func hasAny(r *Record, keys []string) bool {
	for _, k := range keys {
		if r.Has(k) {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	switch r {
	case RoleConsensusLayer:
		return "consensus-layer (CL)"
	case RoleExecutionLayer:
		return "execution-layer (EL)"
	case RoleMixed:
		return "cl+el (mixed ENR)"
	default:
		return "unknown/transport-only"
	}
}

// MarshalText renders the role for JSON output.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}
