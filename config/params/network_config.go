package params

import (
	"github.com/mohae/deepcopy"
)

// NetworkConfig defines the discovery-related network parameters, chiefly
// the well-known keys under which consensus nodes advertise data in their
// node records.
type NetworkConfig struct {
	// DiscoveryV5 Config
	ETH2Key              string // ETH2Key is the ENR key of the Ethereum consensus object in an enr.
	AttSubnetKey         string // AttSubnetKey is the ENR key of the attestation subnet bitfield in the enr.
	SyncCommsSubnetKey   string // SyncCommsSubnetKey is the ENR key of the sync committee subnet bitfield in the enr.
	CustodyGroupCountKey string // CustodyGroupCountKey is the ENR key of the custody group count in the enr.
	NextForkDigestKey    string // NextForkDigestKey is the ENR key of the next fork digest in the enr.
}

var mainnetNetworkConfig = &NetworkConfig{
	ETH2Key:              "eth2",
	AttSubnetKey:         "attnets",
	SyncCommsSubnetKey:   "syncnets",
	CustodyGroupCountKey: "cgc",
	NextForkDigestKey:    "nfd",
}

var networkConfig = mainnetNetworkConfig

// BeaconNetworkConfig returns the current network config for
// the beacon chain.
func BeaconNetworkConfig() *NetworkConfig {
	return networkConfig
}

// OverrideBeaconNetworkConfig will override the network
// config with the added argument.
func OverrideBeaconNetworkConfig(cfg *NetworkConfig) {
	networkConfig = cfg.Copy()
}

// Copy returns Copy of the config object.
func (c *NetworkConfig) Copy() *NetworkConfig {
	config, ok := deepcopy.Copy(*c).(NetworkConfig)
	if !ok {
		config = *networkConfig
	}
	return &config
}
