// Package inspector streams the output pass of a world to websocket viewers.
package inspector

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/substrate/internal/core/behavior"
	"github.com/zeusync/substrate/internal/core/identity"
	"github.com/zeusync/substrate/internal/core/observability/log"
	"github.com/zeusync/substrate/internal/core/params"
)

const (
	sendQueue    = 16
	writeTimeout = 5 * time.Second
)

var (
	_ behavior.Sink    = (*Inspector)(nil)
	_ behavior.Flusher = (*Inspector)(nil)
	_ http.Handler     = (*Inspector)(nil)
)

// Submission is one bundle sent by an output unit.
type Submission struct {
	Owner   identity.ID   `json:"owner"`
	Channel string        `json:"channel"`
	Params  params.Bundle `json:"params"`
}

// Frame is the message broadcast once per tick.
type Frame struct {
	Frame       uint64       `json:"frame"`
	Submissions []Submission `json:"submissions"`
}

type wireFrame struct {
	Frame       uint64            `json:"frame"`
	Submissions []json.RawMessage `json:"submissions"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Inspector is a behavior.Sink that buffers the submissions of a tick and
// broadcasts them as one JSON frame on Flush. Slow viewers miss frames
// instead of stalling the tick.
type Inspector struct {
	log      log.Log
	upgrader websocket.Upgrader

	mu      sync.Mutex
	pending []Submission
	clients map[*client]struct{}
	dropped uint64
}

func New(logger log.Log) *Inspector {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Inspector{
		log: logger.With(log.String("component", "inspector")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

func (i *Inspector) Submit(owner identity.ID, channel string, bundle params.Bundle) {
	i.mu.Lock()
	i.pending = append(i.pending, Submission{Owner: owner, Channel: channel, Params: bundle.Clone()})
	i.mu.Unlock()
}

// Flush broadcasts the buffered submissions. Frames without submissions are
// not sent. A submission that cannot be encoded is logged and left out of
// the frame.
func (i *Inspector) Flush(frame uint64) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if len(i.pending) == 0 {
		return nil
	}
	out := wireFrame{Frame: frame, Submissions: make([]json.RawMessage, 0, len(i.pending))}
	for _, sub := range i.pending {
		raw, err := json.Marshal(sub)
		if err != nil {
			i.log.Warn("submission dropped",
				log.Uint64("frame", frame),
				log.Uint32("owner", uint32(sub.Owner)),
				log.String("channel", sub.Channel),
				log.Error(err),
			)
			continue
		}
		out.Submissions = append(out.Submissions, raw)
	}
	clear(i.pending)
	i.pending = i.pending[:0]
	if len(out.Submissions) == 0 {
		return nil
	}

	msg, err := json.Marshal(out)
	if err != nil {
		return err
	}

	for c := range i.clients {
		select {
		case c.send <- msg:
		default:
			i.dropped++
		}
	}
	return nil
}

// Clients is the number of connected viewers.
func (i *Inspector) Clients() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.clients)
}

// Dropped counts frames skipped for slow viewers.
func (i *Inspector) Dropped() uint64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.dropped
}

// ServeHTTP upgrades the request and streams frames until the viewer leaves.
func (i *Inspector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := i.upgrader.Upgrade(w, r, nil)
	if err != nil {
		i.log.Warn("websocket upgrade failed", log.String("remote", r.RemoteAddr), log.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendQueue)}
	i.mu.Lock()
	i.clients[c] = struct{}{}
	i.mu.Unlock()
	i.log.Info("viewer connected", log.String("remote", r.RemoteAddr))

	go i.writeLoop(c)

	// Viewers only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	i.mu.Lock()
	delete(i.clients, c)
	close(c.send)
	i.mu.Unlock()
	i.log.Info("viewer disconnected", log.String("remote", r.RemoteAddr))
}

func (i *Inspector) writeLoop(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			i.log.Debug("viewer write failed", log.Error(err))
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Close disconnects every viewer.
func (i *Inspector) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	for c := range i.clients {
		_ = c.conn.Close()
	}
	return nil
}
