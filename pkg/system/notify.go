package system

import (
	"context"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/sirupsen/logrus"
)

// SystemdNotifier tells systemd when we are ready and when we are
// stopping. Outside of a Type=notify unit the calls are no-ops.
type SystemdNotifier struct {
	log logrus.FieldLogger
}

func NewSystemdNotifier(logger logrus.FieldLogger) SystemdNotifier {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return SystemdNotifier{log: logger.WithField("component", "systemd")}
}

// Run is registered last with the conductor, so READY is only sent
// once every other service has started.
func (t SystemdNotifier) Run(started, stopped chan bool, stop chan context.Context) error {
	go func() {
		t.notify(daemon.SdNotifyReady)
		started <- true
		<-stop
		t.notify(daemon.SdNotifyStopping)
		stopped <- true
	}()
	return nil
}

func (t SystemdNotifier) notify(state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		t.log.WithError(err).Warn("Failed to notify systemd")
		return
	}
	if sent {
		t.log.Debugf("Notified systemd: %s", state)
	}
}
