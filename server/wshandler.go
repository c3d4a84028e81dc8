package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/juju/errors"
	"github.com/sigrelay/sigrelay/server/identifiers"
	"github.com/sigrelay/sigrelay/server/logger"
	"github.com/sigrelay/sigrelay/server/multierr"
	"github.com/sigrelay/sigrelay/server/uuid"
	"nhooyr.io/websocket"
)

type WSHandlerParams struct {
	Log      logger.Logger
	Channels *ChannelManager
	Config   RelayConfig
}

// NewWSHandler returns the handler that upgrades requests to websockets and
// relays their frames within the channel named by the {channel} URL
// parameter.
func NewWSHandler(params WSHandlerParams) http.Handler {
	log := params.Log.WithNamespaceAppended("ws")
	config := params.Config

	fn := func(w http.ResponseWriter, r *http.Request) {
		channel := identifiers.NewChannelID(chi.URLParam(r, "channel"))
		label := identifiers.Label(r.URL.Query().Get("label"))

		ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: len(config.AllowedOrigins) == 0,
			OriginPatterns:     config.AllowedOrigins,
			CompressionMode:    websocket.CompressionDisabled,
		})
		if err != nil {
			prometheusWSConnErrTotal.Inc()
			log.Error("Accept websocket", errors.Trace(err), nil)

			return
		}

		if config.ReadLimit > 0 {
			ws.SetReadLimit(config.ReadLimit)
		}

		connID := identifiers.ConnID(uuid.New())

		log := log.WithCtx(logger.Ctx{
			"conn_id": connID,
			"channel": channel,
		})

		relay, _ := params.Channels.Enter(channel)
		defer params.Channels.Exit(channel)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		var conn *Conn

		conn = NewConn(ws, ConnParams{
			ID:           connID,
			Label:        label,
			Channel:      channel,
			QueueSize:    config.SendQueueSize,
			WriteTimeout: config.WriteTimeout,
			Log:          log,
			OnClose: func() {
				relay.Leave(conn)
			},
		})

		prometheusWSConnTotal.Inc()
		prometheusWSConnActive.Inc()

		defer func() {
			prometheusWSConnActive.Dec()
			prometheusWSConnDuration.Observe(conn.Duration().Seconds())
		}()

		if err := relay.Join(conn); err != nil {
			if multierr.Is(err, ErrCapacity) {
				prometheusRelayRejectedTotal.Inc()
				log.Info("Channel full, rejecting connection", nil)
				conn.Close(websocket.StatusTryAgainLater, "channel is full")
			} else {
				log.Error("Join channel", errors.Trace(err), nil)
				conn.Close(websocket.StatusInternalError, "")
			}

			<-conn.Done()

			return
		}

		log.Debug("Connection open", logger.Ctx{
			"label": label,
		})

		if config.PingInterval > 0 {
			NewPinger(ctx, PingerParams{
				Interval: config.PingInterval,
				Timeout:  config.PingTimeout,
				Ping:     conn.Ping,
				OnFailure: func(err error) {
					log.Debug("Ping failed, closing connection", logger.Ctx{
						"error": err.Error(),
					})
					conn.Close(websocket.StatusPolicyViolation, "ping timeout")
				},
			})
		}

		for frame := range conn.Subscribe(ctx) {
			count := relay.Relay(conn, frame)

			log.Trace("Relayed frame", logger.Ctx{
				"size":       len(frame.Data),
				"recipients": count,
			})
		}

		conn.Close(websocket.StatusNormalClosure, "")
		cancel()
		<-conn.Done()
		relay.Leave(conn)

		logDisconnect(log, config, conn)
	}

	return http.HandlerFunc(fn)
}

func logDisconnect(log logger.Logger, config RelayConfig, conn *Conn) {
	ctx := logger.Ctx{
		"label":    conn.Label(),
		"duration": conn.Duration(),
	}

	err := conn.Err()
	cause := errors.Cause(err)

	switch {
	case err == nil,
		multierr.Is(err, context.Canceled),
		websocket.CloseStatus(cause) == websocket.StatusNormalClosure,
		websocket.CloseStatus(cause) == websocket.StatusGoingAway:
	default:
		// Resets and other transport errors are ordinary disconnects, not
		// relay failures.
		ctx["error"] = err.Error()
	}

	if config.LogDisconnects {
		log.Info("Connection closed", ctx)
	} else {
		log.Debug("Connection closed", ctx)
	}
}
