package web

import (
	"net/http"

	wifiscand "github.com/dogeorg/wifiscand/pkg"
)

// Handle incomming websocket connections for scan results. New
// subscribers get the last completed scan straight away.
func (t api) getScanSocket(w http.ResponseWriter, r *http.Request) {
	if t.ws == nil {
		sendErrorResponse(w, http.StatusServiceUnavailable, "Live updates are disabled")
		return
	}
	initialPayload := func() any {
		last, ok := t.pool.LastResult()
		if !ok {
			return nil
		}
		return wifiscand.NewScanChange(last)
	}
	t.ws.GetWSHandler(wifiscand.WS_SCAN_CHANNEL, initialPayload).ServeHTTP(w, r)
}
