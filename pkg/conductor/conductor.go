package conductor

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// A Service is anything the Conductor can start and stop. Run must
// return quickly, send on started once the service is up, then wait
// for a context on stop and send on stopped once it has shut down.
type Service interface {
	Run(started, stopped chan bool, stop chan context.Context) error
}

type Option func(*Conductor)

// HookSignals stops all services on SIGINT or SIGTERM.
func HookSignals() Option {
	return func(c *Conductor) { c.hookSignals = true }
}

// Noisy logs every service start and stop.
func Noisy() Option {
	return func(c *Conductor) { c.noisy = true }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Conductor) { c.log = l }
}

func ShutdownTimeout(d time.Duration) Option {
	return func(c *Conductor) { c.shutdownTimeout = d }
}

type managed struct {
	name    string
	svc     Service
	started chan bool
	stopped chan bool
	stop    chan context.Context
}

/* Conductor
 *
 * Starts services in the order they were registered and stops
 * them in reverse order. Start returns a channel which is closed
 * once everything has stopped.
 */
type Conductor struct {
	services        []*managed
	hookSignals     bool
	noisy           bool
	shutdownTimeout time.Duration
	log             logrus.FieldLogger
	halt            chan struct{}
}

func NewConductor(opts ...Option) *Conductor {
	c := &Conductor{
		shutdownTimeout: 10 * time.Second,
		log:             logrus.StandardLogger(),
		halt:            make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Conductor) Service(name string, s Service) {
	c.services = append(c.services, &managed{
		name:    name,
		svc:     s,
		started: make(chan bool, 1),
		stopped: make(chan bool, 1),
		stop:    make(chan context.Context, 1),
	})
}

// Stop asks a running Conductor to shut everything down.
func (c *Conductor) Stop() {
	select {
	case c.halt <- struct{}{}:
	default:
	}
}

func (c *Conductor) Start() chan bool {
	done := make(chan bool)

	var running []*managed
	for _, m := range c.services {
		if err := m.svc.Run(m.started, m.stopped, m.stop); err != nil {
			c.log.WithError(err).Errorf("Service %s failed to start", m.name)
			c.stopAll(running)
			close(done)
			return done
		}
		<-m.started
		running = append(running, m)
		if c.noisy {
			c.log.Infof("Started service: %s", m.name)
		}
	}

	go func() {
		sig := make(chan os.Signal, 1)
		if c.hookSignals {
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sig)
		}

		select {
		case s := <-sig:
			c.log.Infof("Received %s, shutting down", s)
		case <-c.halt:
		}

		c.stopAll(running)
		close(done)
	}()

	return done
}

func (c *Conductor) stopAll(running []*managed) {
	ctx, cancel := context.WithTimeout(context.Background(), c.shutdownTimeout)
	defer cancel()

	for i := len(running) - 1; i >= 0; i-- {
		m := running[i]
		m.stop <- ctx
		select {
		case <-m.stopped:
			if c.noisy {
				c.log.Infof("Stopped service: %s", m.name)
			}
		case <-ctx.Done():
			c.log.Warn(fmt.Sprintf("Service %s did not stop in time", m.name))
		}
	}
}
