package web

import (
	"context"
	"net/http"
	"time"

	wifiscand "github.com/dogeorg/wifiscand/pkg"
	"github.com/dogeorg/wifiscand/pkg/conductor"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

type api struct {
	mux     *http.ServeMux
	config  wifiscand.ServerConfig
	pool    *wifiscand.ScanPool
	ws      *wifiscand.WSRelay
	monitor wifiscand.ProcessMonitor
	metrics *ScanMetrics
	log     logrus.FieldLogger
}

func RESTAPI(
	config wifiscand.ServerConfig,
	pool *wifiscand.ScanPool,
	ws *wifiscand.WSRelay,
	monitor wifiscand.ProcessMonitor,
	metrics *ScanMetrics,
	logger logrus.FieldLogger,
) conductor.Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	a := api{
		mux:     http.NewServeMux(),
		config:  config,
		pool:    pool,
		ws:      ws,
		monitor: monitor,
		metrics: metrics,
		log:     logger.WithField("component", "rest"),
	}

	routes := map[string]http.Handler{
		"GET /scan":    http.HandlerFunc(a.getScan),
		"GET /status":  http.HandlerFunc(a.getStatus),
		"GET /ws/scan": http.HandlerFunc(a.getScanSocket),
		"GET /static/": http.StripPrefix("/static/", wifiscand.ServeStatic(config.UiDir)),

		// everything else is the single page app
		"GET /": wifiscand.ServeSPA(config.UiDir),
	}

	if config.Metrics && metrics != nil {
		routes["GET /metrics"] = metrics.Handler()
	}

	for p, h := range routes {
		a.mux.Handle(p, h)
	}
	a.log.Debugf("Loaded %d API routes", len(routes))

	return a
}

// Handler is the full HTTP stack: routes wrapped in the CORS policy.
// Any origin, method and header is accepted, this API is meant to be
// bound to localhost.
func (t api) Handler() http.Handler {
	return cors.AllowAll().Handler(t.mux)
}

func (t api) Run(started, stopped chan bool, stop chan context.Context) error {
	go func() {
		srv := &http.Server{
			Addr:              t.config.Addr(),
			Handler:           t.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != http.ErrServerClosed {
				t.log.Fatalf("HTTP server ListenAndServe: %v", err)
			}
		}()
		t.log.Infof("Listening on http://%s", t.config.Addr())

		started <- true
		ctx := <-stop
		srv.Shutdown(ctx)
		stopped <- true
	}()
	return nil
}
