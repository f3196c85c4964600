package api

import (
	"context"
	"net/http"
	"time"

	"FinLiquidity/internal/domain/models"
	xhttp "FinLiquidity/pkg/http"
	xlogger "FinLiquidity/pkg/logger"

	"cloud.google.com/go/civil"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	HandshakeTimeout: writeWait,
	ReadBufferSize:   1024,
	WriteBufferSize:  4096,
	CheckOrigin:      func(*http.Request) bool { return true },
}

type streamMessage struct {
	Type    string          `json:"type"`
	Summary *models.Summary `json:"summary,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Stream upgrades to a websocket and pushes the dashboard summary on every tick.
// Failed computations are sent as error frames and the stream keeps going.
func (h *LiquidityEchoHandler) Stream(c echo.Context) error {
	req := &models.FrameRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	start, err := h.dash.ResolveStart(req.Start)
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(err))
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("stream upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	// read pump: only control frames are expected; any error ends the stream
	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.logger.Info("stream opened", xlogger.String("remote", c.RealIP()), xlogger.String("start", start.String()))
	defer h.logger.Info("stream closed", xlogger.String("remote", c.RealIP()))

	push := time.NewTicker(h.interval)
	defer push.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	if err := h.pushSummary(ctx, conn, start); err != nil {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-push.C:
			if err := h.pushSummary(ctx, conn, start); err != nil {
				return nil
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}

func (h *LiquidityEchoHandler) pushSummary(ctx context.Context, conn *websocket.Conn, start civil.Date) error {
	msg := streamMessage{Type: "summary"}
	s, err := h.dash.Summary(ctx, start)
	if err != nil {
		msg = streamMessage{Type: "error", Error: toAppError(err).Message}
	} else {
		msg.Summary = &s
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Debug("stream write failed", xlogger.Error(err))
		return err
	}
	return nil
}
