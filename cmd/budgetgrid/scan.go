package main

import (
	"net"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/muurk/budgetgrid/internal/discovery"
	"github.com/muurk/budgetgrid/internal/ui"
)

var (
	scanTimeout time.Duration
	scanJSON    bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Find commit sinks on the local network",
	Long: `Browse mDNS for budgetgrid-sink servers advertising ` + discovery.ServiceType + `.

Each sink is listed with its address and the URL to pass to --url.`,
	Example: `  budgetgrid scan
  budgetgrid scan --timeout 10s --json`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", discovery.DefaultScanTimeout, "How long to wait for answers")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Print peers as JSON")
}

type peerJSON struct {
	Instance string `json:"instance"`
	Address  string `json:"address"`
	URL      string `json:"url"`
	Version  string `json:"version,omitempty"`
}

func runScan(cmd *cobra.Command, args []string) error {
	scanner := discovery.NewScanner()
	scanner.Timeout = scanTimeout

	peers, err := scanner.Scan(cmd.Context())
	if err != nil {
		return err
	}

	if scanJSON {
		out := make([]peerJSON, 0, len(peers))
		for _, peer := range peers {
			out = append(out, peerJSON{
				Instance: peer.Instance,
				Address:  peerAddress(peer),
				URL:      peer.URL(),
				Version:  peer.GetMetadata("version"),
			})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	p := ui.NewPrinter(os.Stdout)
	if len(peers) == 0 {
		p.PrintWarning("No commit sinks found", []ui.Param{
			{Key: "Service", Value: discovery.ServiceType},
			{Key: "Waited", Value: scanTimeout.String()},
		})
		return nil
	}
	rows := make([][]string, 0, len(peers))
	for _, peer := range peers {
		rows = append(rows, []string{peer.Instance, peerAddress(peer), peer.URL(), peer.GetMetadata("version")})
	}
	p.PrintTable([]string{"Instance", "Address", "URL", "Version"}, rows)
	return nil
}

func peerAddress(p *discovery.Peer) string {
	return net.JoinHostPort(p.IP, strconv.Itoa(p.Port))
}
