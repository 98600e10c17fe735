package network

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	wifiscand "github.com/dogeorg/wifiscand/pkg"
	network_wifi "github.com/dogeorg/wifiscand/pkg/system/network/wifi"
	"github.com/mdlayher/wifi"
	"github.com/sirupsen/logrus"
)

var _ wifiscand.Adapter = &AdapterLinux{}

var errSuitesUnreadable = errors.New("security information missing from scan output")

// wirelessInterface is the part of an nl80211 interface we care about.
type wirelessInterface struct {
	Name          string
	ConnectedSSID string
	ConnectedBSS  string
	// BSSErr is set when the association state could not be read.
	BSSErr error
}

// interfaceLister is satisfied by nl80211Client and by test fakes.
type interfaceLister interface {
	List() ([]wirelessInterface, error)
}

type AdapterLinux struct {
	WifiScanner network_wifi.WifiScanner

	nl  interfaceLister
	log logrus.FieldLogger
}

func (t *AdapterLinux) Interfaces(ctx context.Context) ([]string, error) {
	ifaces, err := t.nl.List()
	if err != nil {
		return nil, err
	}
	names := []string{}
	for _, i := range ifaces {
		names = append(names, i.Name)
	}
	return names, nil
}

func (t *AdapterLinux) ConnectedBSSID(ctx context.Context, iface string) (string, error) {
	ifaces, err := t.nl.List()
	if err != nil {
		return "", err
	}
	for _, i := range ifaces {
		if i.Name == iface {
			return i.ConnectedBSS, i.BSSErr
		}
	}
	return "", fmt.Errorf("interface %s not found", iface)
}

func (t *AdapterLinux) TriggerScan(ctx context.Context, iface string) error {
	return t.WifiScanner.Trigger(ctx, iface)
}

func (t *AdapterLinux) ScanResults(ctx context.Context, iface string) ([]wifiscand.RawNetwork, error) {
	scanned, err := t.WifiScanner.Results(ctx, iface)
	if err != nil {
		return nil, err
	}

	out := []wifiscand.RawNetwork{}
	for _, n := range scanned {
		raw := wifiscand.RawNetwork{
			SSID:   n.SSID,
			BSSID:  n.BSSID,
			Signal: n.Signal,
			AKMs:   []wifiscand.AKM{},
		}
		for _, s := range n.Suites {
			raw.AKMs = append(raw.AKMs, wifiscand.AKM(s))
		}
		if n.Incomplete {
			raw.AKMErr = errSuitesUnreadable
		}
		out = append(out, raw)
	}
	t.log.WithFields(logrus.Fields{"interface": iface, "results": len(out)}).Debug("Read scan results")
	return out, nil
}

// nl80211Client talks to the kernel through generic netlink. A new
// client is opened per call so a removed adapter doesn't leave us
// holding a stale socket.
type nl80211Client struct{}

func (nl80211Client) List() ([]wirelessInterface, error) {
	c, err := wifi.New()
	if err != nil {
		return nil, fmt.Errorf("could not init a wifi interface client: %w", err)
	}
	defer c.Close()

	ifaces, err := c.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("could not list wifi interfaces: %w", err)
	}

	out := []wirelessInterface{}
	for _, ifi := range ifaces {
		// P2P devices and the like have no netdev name
		if ifi.Name == "" || ifi.Type != wifi.InterfaceTypeStation {
			continue
		}
		w := wirelessInterface{Name: ifi.Name}

		bss, err := c.BSS(ifi)
		switch {
		case err == nil && bss.Status == wifi.BSSStatusAssociated:
			w.ConnectedSSID = bss.SSID
			w.ConnectedBSS = strings.ToLower(bss.BSSID.String())
		case err != nil && !errors.Is(err, os.ErrNotExist):
			// not being associated is reported as ErrNotExist
			w.BSSErr = fmt.Errorf("could not read BSS for %s: %w", ifi.Name, err)
		}
		out = append(out, w)
	}
	return out, nil
}
