package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkConfig_CopyIsIndependent(t *testing.T) {
	cfg := BeaconNetworkConfig()
	cp := cfg.Copy()
	cp.ETH2Key = "other"
	assert.Equal(t, "eth2", cfg.ETH2Key)
}

func TestOverrideBeaconNetworkConfig(t *testing.T) {
	prev := BeaconNetworkConfig()
	defer OverrideBeaconNetworkConfig(prev)

	cp := prev.Copy()
	cp.AttSubnetKey = "testnets"
	OverrideBeaconNetworkConfig(cp)
	require.Equal(t, "testnets", BeaconNetworkConfig().AttSubnetKey)

	// The override stores a copy, not the caller's pointer.
	cp.AttSubnetKey = "mutated"
	assert.Equal(t, "testnets", BeaconNetworkConfig().AttSubnetKey)
}
