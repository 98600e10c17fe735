package wifiscand

import (
	"context"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/websocket"
)

const WS_SCAN_CHANNEL string = "scan"

// WSRelay fans scan Changes out to every connected websocket.
type WSRelay struct {
	socks []*WSCONN
	relay chan Change
	newWs chan *WSCONN
	quit  chan struct{}
	log   logrus.FieldLogger
}

func NewWSRelay(relay chan Change, logger logrus.FieldLogger) *WSRelay {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &WSRelay{
		socks: []*WSCONN{},
		relay: relay,
		newWs: make(chan *WSCONN),
		quit:  make(chan struct{}),
		log:   logger.WithField("component", "wsrelay"),
	}
}

func (t *WSRelay) Run(started, stopped chan bool, stop chan context.Context) error {
	go func() {
		done := make(chan struct{})
		go func() {
			defer close(done)
		mainloop:
			for {
				select {
				case <-t.quit:
					break mainloop
				case ws := <-t.newWs:
					t.AddSock(ws)
				case v, ok := <-t.relay:
					if !ok {
						break mainloop
					}
					t.Broadcast(WS_SCAN_CHANNEL, v)
				}
			}
			for _, sock := range t.socks {
				sock.Close()
			}
		}()

		started <- true
		<-stop
		close(t.quit)
		<-done
		stopped <- true
	}()
	return nil
}

func (t *WSRelay) Broadcast(channel string, v any) {
	alive := t.socks[:0]
	for _, ws := range t.socks {
		if ws.channel != channel {
			alive = append(alive, ws)
			continue
		}
		if err := websocket.JSON.Send(ws.WS, v); err != nil {
			t.log.WithError(err).Debug("Dropping websocket")
			ws.Close()
			continue
		}
		alive = append(alive, ws)
	}
	t.socks = alive
}

func (t *WSRelay) AddSock(ws *WSCONN) {
	t.socks = append(t.socks, ws)
	t.log.WithField("sockets", len(t.socks)).Debug("Accepted websocket")
}

// GetWSHandler returns a handler that registers each connection on
// channel. initialPayloader may return nil to send nothing on connect.
func (t *WSRelay) GetWSHandler(channel string, initialPayloader func() any) *websocket.Server {
	config := &websocket.Config{
		Origin: nil,
	}
	h := websocket.Server{
		Handler: func(ws *websocket.Conn) {
			conn := &WSCONN{WS: ws, Stop: make(chan bool), channel: channel}
			select {
			case t.newWs <- conn:
			case <-t.quit:
				return
			}
			if p := initialPayloader(); p != nil {
				if err := websocket.JSON.Send(ws, p); err != nil {
					t.log.WithError(err).Debug("Failed to send initial payload")
					conn.Close()
					return
				}
			}
			go conn.drain()
			<-conn.Stop // hold the connection until stopper closes
		},
		Config: *config,
		// any origin, same as the CORS policy on the REST API
		Handshake: func(*websocket.Config, *http.Request) error { return nil },
	}
	return &h
}

// Represents a websocket connection from a client
type WSCONN struct {
	WS      *websocket.Conn
	Stop    chan bool
	once    sync.Once
	channel string
}

func (t *WSCONN) Close() {
	t.once.Do(func() {
		close(t.Stop)
	})
}

// drain reads (and ignores) client frames so a closed socket is
// noticed without waiting for the next broadcast.
func (t *WSCONN) drain() {
	var discard string
	for {
		if err := websocket.Message.Receive(t.WS, &discard); err != nil {
			t.Close()
			return
		}
	}
}
