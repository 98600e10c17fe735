package web

import (
	"context"
	"net/http"
	"time"

	wifiscand "github.com/dogeorg/wifiscand/pkg"
	"github.com/dogeorg/wifiscand/pkg/version"
	"github.com/sirupsen/logrus"
)

// getScan runs a fresh scan and always answers 200. Whatever went
// wrong inside the scan, clients just see an empty list.
func (t api) getScan(w http.ResponseWriter, r *http.Request) {
	// A client giving up must not abort a scan that is already
	// sleeping on the adapter, history is still recorded.
	ctx := context.WithoutCancel(r.Context())

	res := t.pool.ScanNow(ctx)
	if t.metrics != nil {
		t.metrics.Observe(res)
	}

	l := t.log.WithFields(logrus.Fields{
		"scan_id":  res.ID,
		"outcome":  res.Outcome,
		"networks": len(res.Networks),
	})
	if res.Failed() {
		l.WithError(res.Err).Info("Scan returned no networks")
	} else {
		l.Debug("Scan served")
	}

	sendResponse(w, wifiscand.NewScanResponse(res))
}

type lastScanStatus struct {
	ID         string            `json:"id"`
	Interface  string            `json:"interface"`
	Outcome    wifiscand.Outcome `json:"outcome"`
	Error      string            `json:"error,omitempty"`
	Networks   int               `json:"networks"`
	Started    string            `json:"started"`
	DurationMs int64             `json:"duration_ms"`
}

func (t api) getStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"success":           true,
		"version":           version.GetRelease(),
		"history_addresses": t.pool.History().Len(),
		"history_limit":     t.pool.History().Limit(),
	}

	if last, ok := t.pool.LastResult(); ok {
		s := lastScanStatus{
			ID:         last.ID,
			Interface:  last.Interface,
			Outcome:    last.Outcome,
			Networks:   len(last.Networks),
			Started:    last.Started.UTC().Format(time.RFC3339),
			DurationMs: last.Duration.Milliseconds(),
		}
		if last.Err != nil {
			s.Error = last.Err.Error()
		}
		resp["last_scan"] = s
	}

	if t.monitor != nil {
		stats, err := t.monitor.GetProcessStats()
		if err != nil {
			t.log.WithError(err).Debug("Could not read process stats")
		}
		resp["process"] = stats
	}

	sendResponse(w, resp)
}
