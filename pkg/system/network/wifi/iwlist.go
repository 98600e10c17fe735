package network_wifi

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

var _ WifiScanner = &IWListScanner{}

// IWListScanner drives the wireless-tools `iwlist` command. A plain
// `scan` triggers and waits for a scan, `scan last` reads the cached
// results without starting another.
type IWListScanner struct {
	run Runner
}

func NewIWListScanner(run Runner) IWListScanner {
	return IWListScanner{run: run}
}

func (s IWListScanner) Trigger(ctx context.Context, interfaceName string) error {
	_, err := s.run(ctx, "iwlist", interfaceName, "scan")
	return err
}

func (s IWListScanner) Results(ctx context.Context, interfaceName string) ([]ScannedWifiNetwork, error) {
	out, err := s.run(ctx, "iwlist", interfaceName, "scan", "last")
	if err != nil {
		return nil, err
	}
	return parseIWListOutput(string(out)), nil
}

var (
	iwlistSSIDRegex       = regexp.MustCompile(`ESSID:"(.*?)"`)
	iwlistAddressRegex    = regexp.MustCompile(`Address: ([0-9A-Fa-f:]+)`)
	iwlistEncryptionRegex = regexp.MustCompile(`Encryption key:(on|off)`)
	iwlistSignalRegex     = regexp.MustCompile(`Signal level[=:](-?\d+) dBm`)
	iwlistSuitesRegex     = regexp.MustCompile(`Authentication Suites \(\d+\) : (.*)`)
)

func parseIWListOutput(output string) []ScannedWifiNetwork {
	var networks []ScannedWifiNetwork
	cells := strings.Split(output, "Cell ")

	for _, cell := range cells {
		address := iwlistAddressRegex.FindStringSubmatch(cell)
		if len(address) < 2 {
			continue
		}

		network := ScannedWifiNetwork{
			BSSID:  address[1],
			Suites: []string{},
		}

		if ssid := iwlistSSIDRegex.FindStringSubmatch(cell); len(ssid) > 1 {
			network.SSID = ssid[1]
		}

		if signal := iwlistSignalRegex.FindStringSubmatch(cell); len(signal) > 1 {
			network.Signal, _ = strconv.Atoi(signal[1])
		}

		encryption := iwlistEncryptionRegex.FindStringSubmatch(cell)
		switch {
		case len(encryption) < 2:
			network.Incomplete = true
		case encryption[1] == "off":
			network.Suites = []string{SuiteNone}
		default:
			suites, sawIE := iwlistIESuites(cell)
			network.Suites = suites
			if !sawIE {
				// key on without a WPA/RSN element
				network.Suites = []string{SuiteWEP}
			}
		}
		network.Encryption = encryptionFromSuites(network.Suites)

		networks = append(networks, network)
	}

	return networks
}

func iwlistIESuites(cell string) (suites []string, sawIE bool) {
	suites = []string{}
	for _, ie := range strings.Split(cell, "IE: ")[1:] {
		var rsn bool
		switch {
		case strings.HasPrefix(ie, "IEEE 802.11i/WPA2 Version"):
			rsn = true
		case strings.HasPrefix(ie, "WPA Version 1"):
			rsn = false
		default:
			continue
		}
		sawIE = true
		if m := iwlistSuitesRegex.FindStringSubmatch(ie); len(m) > 1 {
			suites = append(suites, parseSuites(m[1], rsn)...)
		}
	}
	return suites, sawIE
}
