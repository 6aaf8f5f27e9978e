package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func entry(instance, host string, port int, v4, v6 []net.IP, txt ...string) *zeroconf.ServiceEntry {
	e := zeroconf.NewServiceEntry(instance, ServiceType, ServiceDomain)
	e.HostName = host
	e.Port = port
	e.AddrIPv4 = v4
	e.AddrIPv6 = v6
	e.Text = txt
	return e
}

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name         string
		entry        *zeroconf.ServiceEntry
		wantNil      bool
		wantInstance string
		wantIP       string
		wantPort     int
	}{
		{
			name:         "IPv4 server",
			entry:        entry("office", "office.local.", 8470, []net.IP{net.ParseIP("192.168.4.16")}, nil, "path=/ws"),
			wantInstance: "office",
			wantIP:       "192.168.4.16",
			wantPort:     8470,
		},
		{
			name:         "custom port",
			entry:        entry("lab", "lab.local.", 9000, []net.IP{net.ParseIP("10.0.0.5")}, nil),
			wantInstance: "lab",
			wantIP:       "10.0.0.5",
			wantPort:     9000,
		},
		{
			name:         "missing port defaults",
			entry:        entry("attic", "attic.local.", 0, []net.IP{net.ParseIP("172.16.0.1")}, nil),
			wantInstance: "attic",
			wantIP:       "172.16.0.1",
			wantPort:     DefaultPort,
		},
		{
			name:         "IPv6 only",
			entry:        entry("v6", "v6.local.", 8470, nil, []net.IP{net.ParseIP("fe80::1")}),
			wantInstance: "v6",
			wantIP:       "fe80::1",
			wantPort:     8470,
		},
		{
			name:         "prefers IPv4",
			entry:        entry("dual", "dual.local.", 8470, []net.IP{net.ParseIP("192.168.1.50")}, []net.IP{net.ParseIP("fe80::2")}),
			wantInstance: "dual",
			wantIP:       "192.168.1.50",
			wantPort:     8470,
		},
		{
			name:         "escaped instance name",
			entry:        entry(`budget\ office`, "office.local.", 8470, []net.IP{net.ParseIP("192.168.1.2")}, nil),
			wantInstance: "budget office",
			wantIP:       "192.168.1.2",
			wantPort:     8470,
		},
		{
			name:    "no address",
			entry:   entry("ghost", "ghost.local.", 8470, nil, nil),
			wantNil: true,
		},
		{
			name:    "no instance",
			entry:   entry("", "anon.local.", 8470, []net.IP{net.ParseIP("192.168.1.1")}, nil),
			wantNil: true,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			peer := parseServiceEntry(tt.entry)

			if tt.wantNil {
				if peer != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", peer)
				}
				return
			}
			if peer == nil {
				t.Fatal("parseServiceEntry() = nil, want peer")
			}
			if peer.Instance != tt.wantInstance {
				t.Errorf("peer.Instance = %v, want %v", peer.Instance, tt.wantInstance)
			}
			if peer.IP != tt.wantIP {
				t.Errorf("peer.IP = %v, want %v", peer.IP, tt.wantIP)
			}
			if peer.Port != tt.wantPort {
				t.Errorf("peer.Port = %v, want %v", peer.Port, tt.wantPort)
			}
			if peer.Hostname != tt.entry.HostName {
				t.Errorf("peer.Hostname = %v, want %v", peer.Hostname, tt.entry.HostName)
			}
			if time.Since(peer.DiscoveredAt) > time.Second {
				t.Errorf("peer.DiscoveredAt is not recent: %v", peer.DiscoveredAt)
			}
		})
	}
}

func TestParseServiceEntryMetadata(t *testing.T) {
	e := entry("office", "office.local.", 8470, []net.IP{net.ParseIP("192.168.4.16")}, nil,
		"path=/ws", "version=0.3.0", "readonly", "db=/var/lib/budget.db", "=junk")

	peer := parseServiceEntry(e)
	if peer == nil {
		t.Fatal("parseServiceEntry() = nil, want peer")
	}

	want := map[string]string{
		"path":     "/ws",
		"version":  "0.3.0",
		"readonly": "",
		"db":       "/var/lib/budget.db",
	}
	if len(peer.Metadata) != len(want) {
		t.Errorf("peer.Metadata has %d entries, want %d: %v", len(peer.Metadata), len(want), peer.Metadata)
	}
	for key, v := range want {
		if got, ok := peer.Metadata[key]; !ok {
			t.Errorf("peer.Metadata missing key %q", key)
		} else if got != v {
			t.Errorf("peer.Metadata[%q] = %q, want %q", key, got, v)
		}
	}
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()
	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("scanner.Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
}

// Live browse/advertise round trips need multicast and are not run here.
