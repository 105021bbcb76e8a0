// Package gateway owns the persistent real-time connection: it dials the
// backend, keeps the link alive with a fixed-interval heartbeat and feeds
// every decoded event frame to the reducer, in delivery order.
package gateway

import (
	"context"
	"net/http"
	"time"

	"chatapp-client/internal/events"
	"chatapp-client/internal/reducer"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const DefaultHeartbeatInterval = 10 * time.Second

type Gateway struct {
	sugar     *zap.SugaredLogger
	conn      *websocket.Conn
	reducer   *reducer.Reducer
	heartbeat time.Duration
	effects   chan reducer.Effect
}

// Dial opens the connection and authenticates it with the session token.
func Dial(ctx context.Context, sugar *zap.SugaredLogger, red *reducer.Reducer, url string, token string, heartbeat time.Duration) (*Gateway, error) {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeatInterval
	}

	dialer := websocket.Dialer{
		ReadBufferSize:   4096,
		WriteBufferSize:  4096,
		HandshakeTimeout: 10 * time.Second,
	}

	header := http.Header{}
	header.Set("Cookie", "session="+token)

	conn, res, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		if res != nil {
			return nil, errors.Wrapf(err, "dialing gateway, status %d", res.StatusCode)
		}
		return nil, errors.Wrap(err, "dialing gateway")
	}

	return &Gateway{
		sugar:     sugar,
		conn:      conn,
		reducer:   red,
		heartbeat: heartbeat,
		effects:   make(chan reducer.Effect, 16),
	}, nil
}

// Effects exposes the reducer's side effects (redirects, restriction
// modals) to the embedding UI.
func (g *Gateway) Effects() <-chan reducer.Effect {
	return g.effects
}

// Run reads frames until the context ends or the connection drops. Events
// are applied serially, one at a time, so cache mutations never interleave.
func (g *Gateway) Run(ctx context.Context) error {
	defer g.conn.Close()
	defer close(g.effects)

	// heartbeat writer
	writerCtx, cancelWriter := context.WithCancel(ctx)
	defer cancelWriter()

	go func() {
		ticker := time.NewTicker(g.heartbeat)
		defer ticker.Stop()

		for {
			select {
			case <-writerCtx.Done():
				return
			case <-ticker.C:
				err := g.conn.WriteMessage(websocket.TextMessage, []byte(events.HeartbeatToken))
				if err != nil {
					g.sugar.Errorf("Failed to send heartbeat: %v", err)
					return
				}
			}
		}
	}()

	go func() {
		<-ctx.Done()
		g.conn.Close()
	}()

	for {
		_, frame, err := g.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, "reading gateway frame")
		}

		if events.IsHeartbeat(frame) {
			continue
		}

		event, err := events.Decode(frame)
		if err != nil {
			if errors.Is(err, events.ErrUnknownKind) {
				g.sugar.Debugf("Skipping frame: %v", err)
			} else {
				g.sugar.Warnf("Dropping undecodable frame: %v", err)
			}
			continue
		}

		for _, effect := range g.reducer.Apply(event) {
			select {
			case g.effects <- effect:
			default:
				g.sugar.Warn("Effect channel is full, dropping effect")
			}
		}
	}
}
