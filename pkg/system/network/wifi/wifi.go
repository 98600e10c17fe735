package network_wifi

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Suite names reported in ScannedWifiNetwork.Suites.
const (
	SuiteNone    = "NONE"
	SuiteWPA     = "WPA"
	SuiteWPAPSK  = "WPA-PSK"
	SuiteWPA2    = "WPA2"
	SuiteWPA2PSK = "WPA2-PSK"
	SuiteSAE     = "SAE"
	SuiteOWE     = "OWE"
	SuiteWEP     = "WEP"
	SuiteOther   = "OTHER"
)

type ScannedWifiNetwork struct {
	SSID       string
	BSSID      string
	Encryption string
	Signal     int
	// Suites lists authentication suites in the order the tool printed
	// them. Open networks report a single SuiteNone.
	Suites []string
	// Incomplete is set when the output did not say whether the
	// network is protected at all.
	Incomplete bool
}

type WifiScanner interface {
	// Trigger asks the interface to start a fresh scan.
	Trigger(ctx context.Context, networkInterface string) error
	// Results reads whatever the interface collected since the last trigger.
	Results(ctx context.Context, networkInterface string) ([]ScannedWifiNetwork, error)
}

// Runner executes an external command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func NewWifiScanner(backend string) (WifiScanner, error) {
	switch backend {
	case "", "iw":
		return IWScanner{run: ExecRunner}, nil
	case "iwlist":
		return IWListScanner{run: ExecRunner}, nil
	}
	return nil, fmt.Errorf("unknown wifi scan backend %q", backend)
}

func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, msg)
		}
		return nil, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return out.Bytes(), nil
}

// encryptionFromSuites produces the human readable label the old
// iwlist parser used to report.
func encryptionFromSuites(suites []string) string {
	if len(suites) == 0 {
		return ""
	}
	switch suites[0] {
	case SuiteNone:
		return ""
	case SuiteWPA2, SuiteWPA2PSK:
		return "WPA2"
	case SuiteSAE, SuiteOWE:
		return "WPA3"
	case SuiteWPA, SuiteWPAPSK:
		return "WPA"
	case SuiteWEP:
		return "WEP"
	}
	return "Unknown"
}

// suiteName maps an authentication suite token (as printed by iw or
// iwlist) to one of our suite names. rsn selects WPA2 naming.
func suiteName(token string, rsn bool) string {
	t := strings.ToUpper(token)
	t = strings.TrimPrefix(t, "FT/")
	switch {
	case strings.HasPrefix(t, "PSK"):
		if rsn {
			return SuiteWPA2PSK
		}
		return SuiteWPAPSK
	case strings.HasPrefix(t, "802.1X"), strings.HasPrefix(t, "IEEE802.1X"):
		if rsn {
			return SuiteWPA2
		}
		return SuiteWPA
	case strings.HasPrefix(t, "SAE"):
		return SuiteSAE
	case strings.HasPrefix(t, "OWE"):
		return SuiteOWE
	}
	return SuiteOther
}

func parseSuites(list string, rsn bool) []string {
	list = strings.ReplaceAll(list, "IEEE 802.1X", "802.1X")
	suites := []string{}
	for _, tok := range strings.Fields(list) {
		suites = append(suites, suiteName(tok, rsn))
	}
	return suites
}
