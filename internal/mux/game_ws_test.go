package mux

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hpblackjack-server/pkg/blackjack"
	"hpblackjack-server/pkg/ledger"
)

func dialGame(t *testing.T, ts *httptest.Server, token string) *websocket.Conn {
	t.Helper()

	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/game/ws?access_token=" + url.QueryEscape(token)
	conn, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()

	t.Cleanup(func() {
		_ = conn.Close()
	})

	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestGameWS(t *testing.T) {
	a := assert.New(t)
	ts := newTestServer(t, "1s,9h,13c,8d")
	token := playerWithProfile(t, ts)
	conn := dialGame(t, ts, token)

	msg := readMessage(t, conn)
	if a.NotNil(msg.Response) {
		a.Equal(blackjack.GamePhaseBetting, msg.Response.GameState.GamePhase)
		a.Equal(int64(0), msg.Response.GameState.Version)
	}

	a.NoError(conn.WriteJSON(actionPayload{Action: "placeBet", Amount: 10}))
	msg = readMessage(t, conn)
	if a.NotNil(msg.Response) {
		a.True(msg.Response.Success)
		a.Equal(15, msg.Response.HPChange)
		a.Equal(115, msg.Response.GameState.HP)
		if a.NotNil(msg.Response.GameState.RoundResult) {
			a.Equal(ledger.OutcomeBlackjack, *msg.Response.GameState.RoundResult)
		}
	}

	// same version again
	a.NoError(conn.WriteJSON(actionPayload{Action: "nextRound"}))
	msg = readMessage(t, conn)
	if a.NotNil(msg.Error) {
		a.Equal(http.StatusConflict, msg.Error.StatusCode)
	}

	a.NoError(conn.WriteJSON(actionPayload{Action: "split", Version: 1}))
	msg = readMessage(t, conn)
	if a.NotNil(msg.Error) {
		a.Equal(http.StatusBadRequest, msg.Error.StatusCode)
		a.Equal("split is not supported", msg.Error.Message)
	}

	a.NoError(conn.WriteJSON(actionPayload{Action: "nextRound", Version: 1}))
	msg = readMessage(t, conn)
	if a.NotNil(msg.Response) {
		a.True(msg.Response.Success)
		a.Equal(2, msg.Response.GameState.Round)
	}
}

func TestGameWS_noProfile(t *testing.T) {
	ts := newTestServer(t, "1s,9h,13c,8d")

	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/game/ws?access_token=" + url.QueryEscape(player(t))
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	assert.ErrorIs(t, err, websocket.ErrBadHandshake)
	if assert.NotNil(t, resp) {
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		_ = resp.Body.Close()
	}
}
