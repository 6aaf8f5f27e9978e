package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/budgetgrid/internal/logging"
)

const (
	// ServiceType is the mDNS service type of commit-sink servers
	ServiceType = "_budgetgrid._tcp"

	// ServiceDomain is the mDNS domain
	ServiceDomain = "local."

	// DefaultScanTimeout is how long a scan listens for answers
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is the port budgetgrid-sink listens on
	DefaultPort = 8470

	// DefaultPath is the WebSocket path when the TXT record omits it
	DefaultPath = "/ws"
)

// Scanner browses for commit-sink servers
type Scanner struct {
	// Timeout is the maximum time to wait for answers
	Timeout time.Duration
}

// NewScanner creates a scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// Scan collects every peer that answers before the timeout
func (s *Scanner) Scan(ctx context.Context) ([]*Peer, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	var (
		mu    sync.Mutex
		peers []*Peer
		seen  = make(map[string]bool)
	)
	entries := make(chan *zeroconf.ServiceEntry)
	go func() {
		for entry := range entries {
			peer := parseServiceEntry(entry)
			if peer == nil {
				continue
			}
			mu.Lock()
			if !seen[peer.Instance] {
				seen[peer.Instance] = true
				peers = append(peers, peer)
				logging.Debug("Discovered sink server", zap.String("peer", peer.String()))
			}
			mu.Unlock()
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}
	<-ctx.Done()

	mu.Lock()
	defer mu.Unlock()
	return append([]*Peer(nil), peers...), nil
}

// Find waits for the named instance, or any instance when name is empty
func (s *Scanner) Find(ctx context.Context, instance string) (*Peer, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	found := make(chan *Peer, 1)
	go func() {
		for entry := range entries {
			peer := parseServiceEntry(entry)
			if peer == nil || (instance != "" && peer.Instance != instance) {
				continue
			}
			select {
			case found <- peer:
			default:
			}
			cancel()
			return
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case peer := <-found:
		return peer, nil
	case <-ctx.Done():
		// found may have been filled just before cancel
		select {
		case peer := <-found:
			return peer, nil
		default:
		}
		if instance == "" {
			return nil, fmt.Errorf("no sink server found within %s", s.Timeout)
		}
		return nil, fmt.Errorf("sink server %q not found within %s", instance, s.Timeout)
	}
}

// Advertise registers the service and keeps it published until ctx is done
func Advertise(ctx context.Context, instance string, port int, txt []string) error {
	srv, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, txt, nil)
	if err != nil {
		return fmt.Errorf("failed to register mDNS service: %w", err)
	}
	logging.Info("Advertising sink server",
		zap.String("instance", instance),
		zap.String("service", ServiceType),
		zap.Int("port", port),
	)
	<-ctx.Done()
	srv.Shutdown()
	logging.Debug("mDNS advertisement withdrawn", zap.String("instance", instance))
	return nil
}

// parseServiceEntry converts a zeroconf entry to a Peer.
// Returns nil when the entry has no instance name or no address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Peer {
	if entry == nil || entry.Instance == "" {
		return nil
	}

	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	}
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		key, value, _ := strings.Cut(txt, "=")
		if key != "" {
			metadata[key] = value
		}
	}

	return &Peer{
		Instance:     unescapeInstance(entry.Instance),
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// unescapeInstance drops the DNS escaping zeroconf leaves in instance names
func unescapeInstance(s string) string {
	return strings.ReplaceAll(s, `\`, "")
}

// QuickScan scans with a 2-second timeout
func QuickScan(ctx context.Context) ([]*Peer, error) {
	scanner := NewScanner()
	scanner.Timeout = 2 * time.Second
	return scanner.Scan(ctx)
}
