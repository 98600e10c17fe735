package network_wifi

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var _ WifiScanner = &IWScanner{}

// IWScanner drives the nl80211 `iw` command: `scan trigger` starts a
// scan and returns immediately, `scan dump` prints the cached BSS list.
type IWScanner struct {
	run Runner
}

func NewIWScanner(run Runner) IWScanner {
	return IWScanner{run: run}
}

func (s IWScanner) Trigger(ctx context.Context, interfaceName string) error {
	_, err := s.run(ctx, "iw", "dev", interfaceName, "scan", "trigger")
	return err
}

func (s IWScanner) Results(ctx context.Context, interfaceName string) ([]ScannedWifiNetwork, error) {
	out, err := s.run(ctx, "iw", "dev", interfaceName, "scan", "dump")
	if err != nil {
		return nil, err
	}
	return parseIWScanDump(string(out)), nil
}

var (
	iwBSSStartRegex   = regexp.MustCompile(`(?m)^BSS `)
	iwBSSIDRegex      = regexp.MustCompile(`^([0-9A-Fa-f]{2}(?::[0-9A-Fa-f]{2}){5})`)
	iwSSIDRegex       = regexp.MustCompile(`(?m)^\s+SSID: ?(.*)$`)
	iwSignalRegex     = regexp.MustCompile(`(?m)^\s+signal: (-?\d+(?:\.\d+)?) dBm`)
	iwCapabilityRegex = regexp.MustCompile(`(?m)^\s+capability: (.*)$`)
	iwSuitesRegex     = regexp.MustCompile(`Authentication suites: (.*)`)
	iwIEStartRegex    = regexp.MustCompile(`(?m)^\s+(RSN|WPA):`)
)

func parseIWScanDump(output string) []ScannedWifiNetwork {
	var networks []ScannedWifiNetwork

	for _, block := range iwBSSStartRegex.Split(output, -1) {
		address := iwBSSIDRegex.FindStringSubmatch(block)
		if len(address) < 2 {
			continue
		}

		network := ScannedWifiNetwork{
			BSSID:  address[1],
			Suites: []string{},
		}

		if ssid := iwSSIDRegex.FindStringSubmatch(block); len(ssid) > 1 {
			network.SSID = cleanIWSSID(ssid[1])
		}

		if signal := iwSignalRegex.FindStringSubmatch(block); len(signal) > 1 {
			if f, err := strconv.ParseFloat(signal[1], 64); err == nil {
				network.Signal = int(math.Round(f))
			}
		}

		capability := iwCapabilityRegex.FindStringSubmatch(block)
		suites, sawIE := iwIESuites(block)
		switch {
		case sawIE:
			network.Suites = suites
		case len(capability) < 2:
			network.Incomplete = true
		case strings.Contains(capability[1], "Privacy"):
			network.Suites = []string{SuiteWEP}
		default:
			network.Suites = []string{SuiteNone}
		}
		network.Encryption = encryptionFromSuites(network.Suites)

		networks = append(networks, network)
	}

	return networks
}

// iwIESuites collects suites from the RSN and WPA elements, in the
// order iw printed them.
func iwIESuites(block string) (suites []string, sawIE bool) {
	suites = []string{}
	starts := iwIEStartRegex.FindAllStringSubmatchIndex(block, -1)
	for i, m := range starts {
		sawIE = true
		end := len(block)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		element := block[m[0]:end]
		rsn := block[m[2]:m[3]] == "RSN"
		if s := iwSuitesRegex.FindStringSubmatch(element); len(s) > 1 {
			suites = append(suites, parseSuites(s[1], rsn)...)
		}
	}
	return suites, sawIE
}

// iw escapes non printable bytes as \xNN. Hidden networks often
// broadcast a run of NUL bytes instead of an empty name.
func cleanIWSSID(ssid string) string {
	if strings.ReplaceAll(ssid, `\x00`, "") == "" {
		return ""
	}
	return ssid
}
