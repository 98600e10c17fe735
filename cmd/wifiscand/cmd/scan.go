package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	wifiscand "github.com/dogeorg/wifiscand/pkg"
	"github.com/dogeorg/wifiscand/pkg/system/network"
	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

var (
	scanServer  string
	scanJSON    bool
	scanVerbose bool
	scanConfig  = wifiscand.DefaultServerConfig()
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a single scan and print the networks found",
	Long: `Run a single scan on this machine and print the result. With --server
the scan is requested from a running wifiscand instead, which also
returns its accumulated signal history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var networks []wifiscand.NetworkObservation
		outcome := wifiscand.OutcomeOK

		if scanServer != "" {
			resp, err := fetchRemoteScan(scanServer)
			if err != nil {
				return err
			}
			networks = resp.Networks
		} else {
			if err := scanConfig.Validate(); err != nil {
				return err
			}
			res, err := localScan(cmd.Context(), scanConfig, scanVerbose)
			if err != nil {
				return err
			}
			networks = res.Networks
			outcome = res.Outcome
		}

		if scanJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(wifiscand.ScanResponse{Networks: networks})
		}
		printNetworks(cmd.OutOrStdout(), networks, outcome)
		return nil
	},
}

func init() {
	f := scanCmd.Flags()
	f.StringVar(&scanServer, "server", "", "Ask a running wifiscand at this URL instead of scanning locally")
	f.BoolVar(&scanJSON, "json", false, "Print the same JSON body as GET /scan")
	f.BoolVarP(&scanVerbose, "verbose", "v", false, "Be verbose")
	addScanFlags(f, &scanConfig)

	rootCmd.AddCommand(scanCmd)
}

func localScan(ctx context.Context, config wifiscand.ServerConfig, verbose bool) (wifiscand.ScanResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	log := wifiscand.NewLogger(verbose)
	adapter, err := network.NewAdapter(config, log)
	if err != nil {
		return wifiscand.ScanResult{}, err
	}
	scanner := wifiscand.NewScanner(adapter, wifiscand.NewHistoryStore(config.HistoryLimit), wifiscand.ScannerOptions{
		Interface: config.Interface,
		Delay:     config.ScanDelay,
		Logger:    log,
	})
	return scanner.Scan(ctx), nil
}

func fetchRemoteScan(server string) (wifiscand.ScanResponse, error) {
	var out wifiscand.ScanResponse

	client := resty.New()
	client.SetBaseURL(strings.TrimRight(server, "/"))
	client.SetHeader("Accept", "application/json")

	resp, err := client.R().
		SetResult(&out).
		Get("/scan")
	if err != nil {
		return out, fmt.Errorf("failed to reach %s: %w", server, err)
	}
	if resp.IsError() {
		return out, fmt.Errorf("scan request failed: %s", resp.Status())
	}
	return out, nil
}

func printNetworks(w io.Writer, networks []wifiscand.NetworkObservation, outcome wifiscand.Outcome) {
	if len(networks) == 0 {
		if outcome != wifiscand.OutcomeOK {
			fmt.Fprintf(w, "No networks (%s)\n", outcome)
		} else {
			fmt.Fprintln(w, "No networks found")
		}
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SSID\tBSSID\tSIGNAL\tSECURITY\tCONNECTED\tRISK")
	for _, n := range networks {
		connected := ""
		if n.Connected {
			connected = "*"
		}
		// risk is the last column so colour codes don't upset alignment
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n", n.SSID, n.BSSID, n.Signal, n.Security, connected, riskStyle(n.Risk).Render(string(n.Risk)))
	}
	tw.Flush()
}

var (
	riskHighStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	riskSafeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D4AA"))
)

func riskStyle(r wifiscand.RiskLevel) lipgloss.Style {
	if r == wifiscand.RiskHigh {
		return riskHighStyle
	}
	return riskSafeStyle
}
