package cmd

import (
	"fmt"

	wifiscand "github.com/dogeorg/wifiscand/pkg"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var configFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve scan results and the web frontend over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := resolveConfig(cmd.Flags())
		if err != nil {
			return err
		}
		Server(config).Start()
		return nil
	},
}

// flagConfig holds flag values, applied over the config file only
// when the flag was set on the command line.
var flagConfig = wifiscand.DefaultServerConfig()

func init() {
	f := serveCmd.Flags()
	f.StringVar(&configFile, "config", "", "YAML config file")
	f.StringVar(&flagConfig.Bind, "addr", flagConfig.Bind, "Address to bind to")
	f.IntVar(&flagConfig.Port, "port", flagConfig.Port, "HTTP port")
	f.StringVar(&flagConfig.UiDir, "ui", flagConfig.UiDir, "Directory holding the built frontend")
	addScanFlags(f, &flagConfig)
	f.IntVar(&flagConfig.Workers, "workers", flagConfig.Workers, "Scans that may run at the same time")
	f.BoolVar(&flagConfig.Metrics, "metrics", flagConfig.Metrics, "Expose Prometheus metrics on /metrics")
	f.BoolVarP(&flagConfig.Verbose, "verbose", "v", flagConfig.Verbose, "Be verbose")

	rootCmd.AddCommand(serveCmd)
}

// addScanFlags registers the flags shared by serve and scan.
func addScanFlags(f *pflag.FlagSet, c *wifiscand.ServerConfig) {
	f.StringVar(&c.Interface, "interface", c.Interface, "Wireless interface to scan (default: first found)")
	f.StringVar(&c.Backend, "backend", c.Backend, "Scan tool to use: iw or iwlist")
	f.DurationVar(&c.ScanDelay, "scan-delay", c.ScanDelay, "Wait between starting a scan and reading results")
	f.IntVar(&c.HistoryLimit, "history", c.HistoryLimit, "Signal readings kept per network")
}

func resolveConfig(flags *pflag.FlagSet) (wifiscand.ServerConfig, error) {
	config := wifiscand.DefaultServerConfig()
	if configFile != "" {
		c, err := wifiscand.LoadConfigFile(configFile)
		if err != nil {
			return config, err
		}
		config = c
	}

	overrides := map[string]func(){
		"addr":       func() { config.Bind = flagConfig.Bind },
		"port":       func() { config.Port = flagConfig.Port },
		"ui":         func() { config.UiDir = flagConfig.UiDir },
		"interface":  func() { config.Interface = flagConfig.Interface },
		"backend":    func() { config.Backend = flagConfig.Backend },
		"scan-delay": func() { config.ScanDelay = flagConfig.ScanDelay },
		"history":    func() { config.HistoryLimit = flagConfig.HistoryLimit },
		"workers":    func() { config.Workers = flagConfig.Workers },
		"metrics":    func() { config.Metrics = flagConfig.Metrics },
		"verbose":    func() { config.Verbose = flagConfig.Verbose },
	}
	flags.Visit(func(f *pflag.Flag) {
		if apply, ok := overrides[f.Name]; ok {
			apply()
		}
	})

	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}
