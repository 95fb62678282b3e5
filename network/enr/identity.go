package enr

import (
	"fmt"

	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"
	"github.com/pkg/errors"
)

// PeerID derives the libp2p peer ID from the record's compressed secp256k1
// public key. Only the key bytes are interpreted; the record signature is
// never checked.
func (r *Record) PeerID() (peer.ID, error) {
	raw, ok := r.Get(secp256k1Key)
	if !ok {
		return "", errors.Wrap(ErrNoEntry, secp256k1Key)
	}
	pubkey, err := crypto.UnmarshalSecp256k1PublicKey(raw)
	if err != nil {
		return "", errors.Wrap(err, "could not get pubkey")
	}
	id, err := peer.IDFromPublicKey(pubkey)
	if err != nil {
		return "", errors.Wrap(err, "could not get peer id")
	}
	return id, nil
}

// Multiaddrs builds the dialable multiaddrs a record advertises. For each
// address family present, the QUIC address comes first when a QUIC port is
// set, followed by the TCP address.
func (r *Record) Multiaddrs() ([]ma.Multiaddr, error) {
	id, err := r.PeerID()
	if err != nil {
		return nil, err
	}

	families := []struct {
		ipKey   string
		proto   string
		quicKey string
		tcpKey  string
	}{
		{ipKey: ipKey, proto: "ip4", quicKey: quicKey, tcpKey: tcpKey},
		{ipKey: ip6Key, proto: "ip6", quicKey: quic6Key, tcpKey: tcp6Key},
	}

	multiaddrs := make([]ma.Multiaddr, 0, 2)
	for _, f := range families {
		rawIP, ok := r.Get(f.ipKey)
		if !ok {
			continue
		}
		host := formatIP(rawIP)

		if port, ok := r.Get(f.quicKey); ok {
			addr, err := ma.NewMultiaddr(fmt.Sprintf("/%s/%s/udp/%d/quic-v1/p2p/%s", f.proto, host, bytesToUint64(port), id))
			if err != nil {
				return nil, errors.Wrap(err, "could not build QUIC address")
			}
			multiaddrs = append(multiaddrs, addr)
		}
		if port, ok := r.Get(f.tcpKey); ok {
			addr, err := ma.NewMultiaddr(fmt.Sprintf("/%s/%s/tcp/%d/p2p/%s", f.proto, host, bytesToUint64(port), id))
			if err != nil {
				return nil, errors.Wrap(err, "could not build TCP address")
			}
			multiaddrs = append(multiaddrs, addr)
		}
	}
	return multiaddrs, nil
}
