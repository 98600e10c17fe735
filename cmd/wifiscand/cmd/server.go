package cmd

import (
	wifiscand "github.com/dogeorg/wifiscand/pkg"
	"github.com/dogeorg/wifiscand/pkg/conductor"
	"github.com/dogeorg/wifiscand/pkg/system"
	"github.com/dogeorg/wifiscand/pkg/system/network"
	"github.com/dogeorg/wifiscand/pkg/web"
)

type server struct {
	config wifiscand.ServerConfig
}

func Server(config wifiscand.ServerConfig) server {
	return server{config}
}

func (t server) Start() {
	log := wifiscand.NewLogger(t.config.Verbose)

	/* ----------------------------------------------------------------------- */
	// Set up our system interfaces so we can talk to the wireless hardware

	adapter, err := network.NewAdapter(t.config, log)
	if err != nil {
		log.Fatalf("Couldn't set up wireless adapter: %v", err)
	}
	monitor := system.NewProcessMonitor()

	/* ----------------------------------------------------------------------- */
	// The scanner and the pool of workers that run it

	history := wifiscand.NewHistoryStore(t.config.HistoryLimit)
	scanner := wifiscand.NewScanner(adapter, history, wifiscand.ScannerOptions{
		Interface: t.config.Interface,
		Delay:     t.config.ScanDelay,
		Logger:    log,
	})
	pool := wifiscand.NewScanPool(scanner, t.config.Workers, log)

	/* ----------------------------------------------------------------------- */
	// Setup our external APIs. REST, Websockets

	wsh := wifiscand.NewWSRelay(pool.Changes, log)
	var metrics *web.ScanMetrics
	if t.config.Metrics {
		metrics = web.NewScanMetrics(history)
	}
	rest := web.RESTAPI(t.config, pool, wsh, monitor, metrics, log)

	/* ----------------------------------------------------------------------- */
	// Create a conductor to manage all the above services startup/shutdown

	opts := []conductor.Option{
		conductor.HookSignals(),
		conductor.WithLogger(log),
	}
	if t.config.Verbose {
		opts = append(opts, conductor.Noisy())
	}
	c := conductor.NewConductor(opts...)
	c.Service("Scan Pool", pool)
	c.Service("WSock Relay", wsh)
	c.Service("REST API", rest)
	c.Service("Systemd", system.NewSystemdNotifier(log))
	<-c.Start()
}
