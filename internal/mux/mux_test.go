package mux

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hpblackjack-server/internal/jwt"
	"hpblackjack-server/internal/rng"
	"hpblackjack-server/internal/util"
	"hpblackjack-server/pkg/blackjack"
	"hpblackjack-server/pkg/deck"
	"hpblackjack-server/pkg/engine"
	"hpblackjack-server/pkg/session"
)

var setupKeysOnce sync.Once

func setupJWT(t *testing.T) {
	t.Helper()

	setupKeysOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		jwt.SetKeys(&key.PublicKey, key)
	})
}

// newTestServer returns a server whose shoes always deal cards in order
func newTestServer(t *testing.T, cards string) *httptest.Server {
	t.Helper()
	setupJWT(t)

	e, err := engine.New(session.NewMemoryStore(quartz.NewMock(t)), engine.Options{
		Rules:      blackjack.DefaultRules(),
		StartingHP: 100,
		Generator:  rng.NewSeeded(1),
		Clock:      quartz.NewMock(t),
		NewShoe: func() *deck.Shoe {
			return deck.NewStackedShoe(deck.CardsFromString(cards))
		},
	})
	require.NoError(t, err)

	ts := httptest.NewServer(NewMux("v1.2.3", e))
	t.Cleanup(ts.Close)
	return ts
}

func player(t *testing.T) string {
	t.Helper()

	token, err := jwt.Sign(util.RandomIdentity())
	require.NoError(t, err)
	return token
}

// playerWithProfile returns a token for a player that already created a profile
func playerWithProfile(t *testing.T, ts *httptest.Server) string {
	t.Helper()

	token := player(t)
	assertPost(t, ts, "/profile", profilePayload{Username: "Lucky Ace"}, nil, http.StatusCreated, token)
	return token
}

func Test_authRouter(t *testing.T) {
	setupJWT(t)
	m := NewMux("", nil)

	m.authRouter.Path("/test").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, identityFromContext(r.Context()))
	})

	ts := httptest.NewServer(m)
	defer ts.Close()

	var errObj errorResponse
	assertGet(t, ts, "/test", &errObj, 401)
	assert.Equal(t, "Unauthorized", errObj.Message)

	assertGet(t, ts, "/test", &errObj, 401, "not-a-jwt")

	token, err := jwt.Sign("player-7")
	require.NoError(t, err)

	// test using auth header
	var str string
	assertGet(t, ts, "/test", &str, 200, token)
	assert.Equal(t, "player-7", str)

	// test using query parameter
	assertGet(t, ts, "/test?access_token="+url.QueryEscape(token), &str, 200)
	assert.Equal(t, "player-7", str)
}
