package network

import (
	wifiscand "github.com/dogeorg/wifiscand/pkg"
	network_wifi "github.com/dogeorg/wifiscand/pkg/system/network/wifi"
	"github.com/sirupsen/logrus"
)

func NewAdapter(config wifiscand.ServerConfig, logger logrus.FieldLogger) (wifiscand.Adapter, error) {
	scanner, err := network_wifi.NewWifiScanner(config.Backend)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AdapterLinux{
		WifiScanner: scanner,
		nl:          nl80211Client{},
		log:         logger.WithField("component", "adapter"),
	}, nil
}
