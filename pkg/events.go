package wifiscand

import "time"

// Outcome records why a scan produced the networks it did. The
// /scan endpoint never exposes it, an empty list looks the same to
// HTTP clients whatever the cause.
type Outcome string

const (
	OutcomeOK                Outcome = "ok"
	OutcomeNoAdapter         Outcome = "no_adapter"
	OutcomeScanStartFailed   Outcome = "scan_start_failed"
	OutcomeScanResultsFailed Outcome = "scan_results_failed"
	OutcomeCancelled         Outcome = "cancelled"
)

// A ScanResult is produced for every scan request, successful or not.
type ScanResult struct {
	ID        string               `json:"id"`
	Interface string               `json:"interface"`
	Outcome   Outcome              `json:"outcome"`
	Networks  []NetworkObservation `json:"networks"`
	Started   time.Time            `json:"started"`
	Duration  time.Duration        `json:"duration"`
	Err       error                `json:"-"`
}

// Failed reports whether the adapter could not be used for this scan.
func (r ScanResult) Failed() bool {
	return r.Outcome != OutcomeOK
}

// ScanResponse is the body of GET /scan.
type ScanResponse struct {
	Networks []NetworkObservation `json:"networks"`
}

// NewScanResponse never returns a nil slice so the body always
// carries "networks": [].
func NewScanResponse(r ScanResult) ScanResponse {
	networks := r.Networks
	if networks == nil {
		networks = []NetworkObservation{}
	}
	return ScanResponse{Networks: networks}
}

// A Change is pushed to websocket subscribers whenever a scan
// completes.
type Change struct {
	ID     string `json:"id"`
	Error  string `json:"error"`
	Type   string `json:"type"`
	Update any    `json:"update"`
}

func NewScanChange(r ScanResult) Change {
	errMsg := ""
	if r.Err != nil {
		errMsg = r.Err.Error()
	}
	return Change{
		ID:     r.ID,
		Error:  errMsg,
		Type:   "scan",
		Update: NewScanResponse(r),
	}
}
