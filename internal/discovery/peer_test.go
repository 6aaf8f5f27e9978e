package discovery

import "testing"

func TestPeerString(t *testing.T) {
	p := &Peer{Instance: "office", Hostname: "office.local.", IP: "192.168.4.16", Port: 8470}
	want := "office (office.local.) at 192.168.4.16:8470"
	if got := p.String(); got != want {
		t.Errorf("Peer.String() = %v, want %v", got, want)
	}
}

func TestPeerURL(t *testing.T) {
	tests := []struct {
		name string
		peer *Peer
		want string
	}{
		{
			name: "default path",
			peer: &Peer{IP: "192.168.4.16", Port: 8470},
			want: "ws://192.168.4.16:8470/ws",
		},
		{
			name: "advertised path",
			peer: &Peer{IP: "10.0.0.5", Port: 9000, Metadata: map[string]string{"path": "/sink"}},
			want: "ws://10.0.0.5:9000/sink",
		},
		{
			name: "IPv6 is bracketed",
			peer: &Peer{IP: "fe80::1", Port: 8470},
			want: "ws://[fe80::1]:8470/ws",
		},
		{
			name: "TLS sink",
			peer: &Peer{IP: "10.0.0.5", Port: 8470, Metadata: map[string]string{"scheme": "wss"}},
			want: "wss://10.0.0.5:8470/ws",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.peer.URL(); got != tt.want {
				t.Errorf("Peer.URL() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPeerGetMetadata(t *testing.T) {
	p := &Peer{Metadata: map[string]string{"version": "0.3.0"}}
	if got := p.GetMetadata("version"); got != "0.3.0" {
		t.Errorf("GetMetadata(version) = %q", got)
	}
	if got := p.GetMetadata("missing"); got != "" {
		t.Errorf("GetMetadata(missing) = %q, want empty", got)
	}
	if got := (&Peer{}).GetMetadata("anything"); got != "" {
		t.Errorf("GetMetadata() with nil map = %q, want empty", got)
	}
}
