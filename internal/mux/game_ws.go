package mux

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"hpblackjack-server/pkg/engine"
)

const writeWait = time.Second * 10
const pongWait = time.Second * 60
const pingPeriod = pongWait * 9 / 10
const maxMessageSize = 1024

// wsMessage is sent to websocket clients
// Exactly one of Response or Error is set.
type wsMessage struct {
	Response *engine.Response `json:"response,omitempty"`
	Error    *errorResponse   `json:"error,omitempty"`
}

func newWSError(err error) wsMessage {
	statusCode, clientErr := statusFor(err)
	if statusCode >= 500 {
		logrus.WithField("statusCode", statusCode).Error(err)
	}

	errResp := newErrorResponse(statusCode, clientErr)
	return wsMessage{Error: &errResp}
}

func (m *Mux) getGameWS() http.HandlerFunc {
	upgrader := &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromContext(r.Context())

		// fail before upgrading if there is no profile
		state, err := m.engine.State(r.Context(), identity)
		if err != nil {
			writeError(w, err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logrus.WithError(err).Error("could not upgrade connection")
			return
		}

		conn.SetReadLimit(maxMessageSize)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})

		send := make(chan wsMessage, 4)
		send <- wsMessage{Response: &engine.Response{Success: true, GameState: state, Message: state.Message}}

		ctx, cancel := context.WithCancel(r.Context())
		writeDone := make(chan struct{})
		defer func() {
			cancel()
			close(send)
			<-writeDone
			_ = conn.Close()
		}()

		go func() {
			defer close(writeDone)
			m.webSocketWriteLoop(conn, send)
		}()

		m.webSocketReadLoop(ctx, conn, identity, send)
	}
}

func (m *Mux) webSocketWriteLoop(conn *websocket.Conn, send <-chan wsMessage) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = conn.Close()
				drain(send)
				return
			}
		case msg, ok := <-send:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				logrus.WithError(err).Error("could not write message")
				// closing the connection stops the read loop
				_ = conn.Close()
				drain(send)
				return
			}
		}
	}
}

// drain discards messages until send is closed so the read loop never blocks
func drain(send <-chan wsMessage) {
	for range send {
	}
}

func (m *Mux) webSocketReadLoop(ctx context.Context, conn *websocket.Conn, identity string, send chan<- wsMessage) {
	for {
		var ap actionPayload
		if err := conn.ReadJSON(&ap); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.WithError(err).WithField("identity", identity).Error("could not read message")
			}

			return
		}

		req, err := ap.request()
		if err != nil {
			send <- newWSError(err)
			continue
		}

		resp, err := m.engine.Perform(ctx, identity, req)
		if err != nil {
			send <- newWSError(err)
			continue
		}

		send <- wsMessage{Response: resp}
	}
}
