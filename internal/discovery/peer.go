package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Peer is a commit-sink server found on the local network
type Peer struct {
	// Instance is the advertised instance name (e.g., "budget-office")
	Instance string

	// Hostname is the mDNS hostname (e.g., "office.local.")
	Hostname string

	// IP is the preferred address, IPv4 when available
	IP string

	// Port is the WebSocket port
	Port int

	// Metadata holds the TXT records, e.g. "path=/ws", "scheme=wss", "version=0.3.0"
	Metadata map[string]string

	// DiscoveredAt is when the peer was seen
	DiscoveredAt time.Time
}

// String returns a human-readable description of the peer
func (p *Peer) String() string {
	return fmt.Sprintf("%s (%s) at %s", p.Instance, p.Hostname, net.JoinHostPort(p.IP, strconv.Itoa(p.Port)))
}

// URL returns the WebSocket endpoint a sink client should dial
func (p *Peer) URL() string {
	path := p.GetMetadata("path")
	if path == "" {
		path = DefaultPath
	}
	scheme := p.GetMetadata("scheme")
	if scheme == "" {
		scheme = "ws"
	}
	return fmt.Sprintf("%s://%s%s", scheme, net.JoinHostPort(p.IP, strconv.Itoa(p.Port)), path)
}

// GetMetadata retrieves a TXT value by key, or "" when absent
func (p *Peer) GetMetadata(key string) string {
	if p.Metadata == nil {
		return ""
	}
	return p.Metadata[key]
}
