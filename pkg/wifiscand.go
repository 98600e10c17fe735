/*
wifiscand internal architecture:

 A scan is requested externally via the REST API (or the CLI). Requests are
 submitted to the ScanPool, which hands them to a bounded set of workers and
 returns a future for each one.

 Each worker runs the Scanner: it asks the Adapter to start a scan, waits the
 configured delay, reads the results, classifies every network and appends
 its signal to the HistoryStore.

 Completed ScanResults flow back through the future to the caller and are
 also published on the Changes channel for websocket subscribers.

                                  ┌──────────────────┐
                                  │    ScanPool{}    │
 REST API  ─────┐                 │  ┌────────────┐  │
                │   Submit        │  │  worker 1  │  │
                ├───────────────► │  │  worker N  │  │ ======= Changes ───► WebSocket
 CLI  ──────────┘   future        │  └─────┬──────┘  │
                  ◄────────────── │        │         │
                                  └────────┼─────────┘
                                           ▼
                                    Scanner{} ──► HistoryStore
                                           │
                                           ▼
                                    Adapter (nl80211, iw, iwlist)
*/

package wifiscand

import (
	"context"
	"time"
)

const (
	// HiddenSSID is shown for networks that do not broadcast a name.
	HiddenSSID = "Hidden SSID"

	DefaultHistoryLimit = 20
	DefaultScanDelay    = 3 * time.Second
)

type SecurityClass string

const (
	SecurityOpen    SecurityClass = "Open"
	SecuritySecured SecurityClass = "Secured"
	SecurityUnknown SecurityClass = "Unknown"
)

type RiskLevel string

const (
	RiskHigh RiskLevel = "High"
	RiskSafe RiskLevel = "Safe"
)

// RiskFor maps a security class to its risk level. Only open
// networks are considered high risk.
func RiskFor(s SecurityClass) RiskLevel {
	if s == SecurityOpen {
		return RiskHigh
	}
	return RiskSafe
}

// AKM is an authentication and key management suite advertised by
// an access point. Only the first suite advertised is used for
// classification.
type AKM string

const (
	AKMNone    AKM = "NONE"
	AKMWPA     AKM = "WPA"
	AKMWPAPSK  AKM = "WPA-PSK"
	AKMWPA2    AKM = "WPA2"
	AKMWPA2PSK AKM = "WPA2-PSK"
	AKMSAE     AKM = "SAE"
	AKMOWE     AKM = "OWE"
	AKMWEP     AKM = "WEP"
	AKMOther   AKM = "OTHER"
)

// RawNetwork is a single entry as reported by the adapter, before
// deduplication and classification.
type RawNetwork struct {
	SSID   string
	BSSID  string
	Signal int
	AKMs   []AKM
	// AKMErr is set when the adapter output could not be read well
	// enough to know which suites the network advertises.
	AKMErr error
}

// NetworkObservation is what we report for every network seen in a scan.
type NetworkObservation struct {
	SSID          string        `json:"ssid"`
	BSSID         string        `json:"bssid"`
	Signal        int           `json:"signal"`
	Security      SecurityClass `json:"security"`
	Risk          RiskLevel     `json:"risk"`
	Connected     bool          `json:"connected"`
	SignalHistory []int         `json:"signal_history"`
}

// Adapter is the host wireless hardware. Implementations live in
// pkg/system/network.
type Adapter interface {
	// Interfaces lists wireless interface names, in discovery order.
	Interfaces(ctx context.Context) ([]string, error)
	// ConnectedBSSID returns the address of the network the interface
	// is associated with, or "" if there is none.
	ConnectedBSSID(ctx context.Context, iface string) (string, error)
	TriggerScan(ctx context.Context, iface string) error
	ScanResults(ctx context.Context, iface string) ([]RawNetwork, error)
}

// ProcessMonitor reports resource usage of the running daemon.
type ProcessMonitor interface {
	GetProcessStats() (ProcessStats, error)
}

type ProcessStats struct {
	PID        int32   `json:"pid"`
	CPUPercent float64 `json:"cpu_percent"`
	MEMPercent float64 `json:"mem_percent"`
	MEMMb      float64 `json:"mem_mb"`
	Uptime     string  `json:"uptime"`
}
