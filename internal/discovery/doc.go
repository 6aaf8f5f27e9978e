// Package discovery finds and announces budgetgrid commit-sink servers over
// multicast DNS.
//
// A budgetgrid-sink server registers itself as a "_budgetgrid._tcp" service in
// the "local." domain. Its TXT records carry the WebSocket path and the
// server version:
//
//	path=/ws
//	version=0.3.0
//
// The editor's scan command browses for that service type and prints the URL
// to pass as --sink-url, or dials the first server found with --discover.
//
// # Usage Example
//
//	// Publish until ctx is cancelled
//	go discovery.Advertise(ctx, "office", 8470, []string{"path=/ws"})
//
//	// Browse for two seconds
//	peers, err := discovery.QuickScan(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, p := range peers {
//	    fmt.Println(p.Instance, p.URL())
//	}
//
// # Network Requirements
//
//   - Multicast must be enabled on the interface
//   - Editor and server must share a network segment
//   - Firewalls must allow UDP port 5353
package discovery
