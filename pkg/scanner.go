package wifiscand

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ScannerOptions struct {
	// Interface pins scanning to one adapter, otherwise the first
	// adapter reported by the host is used.
	Interface string
	Delay     time.Duration
	// Sleep waits between starting a scan and reading its results.
	// Defaults to a context aware time.Sleep.
	Sleep  func(ctx context.Context, d time.Duration) error
	Logger logrus.FieldLogger
}

type Scanner struct {
	adapter Adapter
	history *HistoryStore
	opts    ScannerOptions
	log     logrus.FieldLogger
}

func NewScanner(adapter Adapter, history *HistoryStore, opts ScannerOptions) *Scanner {
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	l := opts.Logger
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &Scanner{
		adapter: adapter,
		history: history,
		opts:    opts,
		log:     l.WithField("component", "scanner"),
	}
}

func (s *Scanner) History() *HistoryStore {
	return s.history
}

// Scan asks the adapter for a fresh scan and classifies what it finds.
// Adapter failures never escape as errors: they produce a ScanResult
// with no networks and an Outcome naming the cause.
func (s *Scanner) Scan(ctx context.Context) (res ScanResult) {
	res = ScanResult{
		ID:       uuid.NewString(),
		Outcome:  OutcomeOK,
		Networks: []NetworkObservation{},
		Started:  time.Now(),
	}
	defer func() { res.Duration = time.Since(res.Started) }()

	l := s.log.WithField("scan_id", res.ID)

	iface, err := s.pickInterface(ctx)
	if err != nil {
		l.WithError(err).Warn("No wireless adapter available")
		return s.fail(res, OutcomeNoAdapter, err)
	}
	res.Interface = iface
	l = l.WithField("interface", iface)

	connected, err := s.adapter.ConnectedBSSID(ctx, iface)
	if err != nil {
		l.WithError(err).Debug("Could not determine connected network")
		connected = ""
	}
	connected = normalizeBSSID(connected)

	if err := s.adapter.TriggerScan(ctx, iface); err != nil {
		l.WithError(err).Warn("Scan initiation failed")
		return s.fail(res, OutcomeScanStartFailed, fmt.Errorf("%w: %w", ErrScanStart, err))
	}

	if err := s.opts.Sleep(ctx, s.opts.Delay); err != nil {
		l.WithError(err).Info("Scan cancelled while waiting for results")
		return s.fail(res, OutcomeCancelled, err)
	}

	raw, err := s.adapter.ScanResults(ctx, iface)
	if err != nil {
		l.WithError(err).Warn("Scan results retrieval failed")
		return s.fail(res, OutcomeScanResultsFailed, fmt.Errorf("%w: %w", ErrScanResults, err))
	}

	seen := map[string]bool{}
	for _, n := range raw {
		bssid := normalizeBSSID(n.BSSID)
		if seen[bssid] {
			continue
		}
		seen[bssid] = true

		ssid := n.SSID
		if strings.TrimSpace(ssid) == "" {
			ssid = HiddenSSID
		}
		security := Classify(n)

		res.Networks = append(res.Networks, NetworkObservation{
			SSID:          ssid,
			BSSID:         bssid,
			Signal:        n.Signal,
			Security:      security,
			Risk:          RiskFor(security),
			Connected:     connected != "" && bssid == connected,
			SignalHistory: s.history.Append(bssid, n.Signal),
		})
	}

	l.WithField("networks", len(res.Networks)).Debug("Scan complete")
	return res
}

func (s *Scanner) pickInterface(ctx context.Context) (string, error) {
	ifaces, err := s.adapter.Interfaces(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAdapterAbsent, err)
	}
	if len(ifaces) == 0 {
		return "", ErrAdapterAbsent
	}
	if s.opts.Interface == "" {
		return ifaces[0], nil
	}
	for _, i := range ifaces {
		if i == s.opts.Interface {
			return i, nil
		}
	}
	return "", fmt.Errorf("%w: interface %s not present", ErrAdapterAbsent, s.opts.Interface)
}

func (s *Scanner) fail(res ScanResult, o Outcome, err error) ScanResult {
	res.Outcome = o
	res.Err = err
	res.Networks = []NetworkObservation{}
	return res
}

// Classify decides the security class from the first advertised
// suite. A list that is missing or could not be read is Unknown.
func Classify(n RawNetwork) SecurityClass {
	if n.AKMErr != nil || len(n.AKMs) == 0 {
		return SecurityUnknown
	}
	if n.AKMs[0] == AKMNone {
		return SecurityOpen
	}
	return SecuritySecured
}

func normalizeBSSID(b string) string {
	return strings.ToLower(strings.TrimSpace(b))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
