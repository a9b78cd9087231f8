package mux

import (
	"net/http"

	"hpblackjack-server/pkg/blackjack"
	"hpblackjack-server/pkg/engine"
)

// actionPayload is a single action as sent by clients
// Version must be the version of the last snapshot the client received.
type actionPayload struct {
	Action  string `json:"action"`
	Amount  int    `json:"amount"`
	Version int64  `json:"version"`
}

func (a actionPayload) request() (engine.Request, error) {
	action, err := blackjack.ParseAction(a.Action, a.Amount)
	if err != nil {
		return engine.Request{}, err
	}

	return engine.Request{Action: action, Version: a.Version}, nil
}

func (m *Mux) getGame() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := m.engine.State(r.Context(), identityFromContext(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, state)
	}
}

func (m *Mux) postGame() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := m.engine.NewGame(r.Context(), identityFromContext(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, state)
	}
}

func (m *Mux) postGameAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ap actionPayload
		if !decodeRequest(w, r, &ap) {
			return
		}

		req, err := ap.request()
		if err != nil {
			writeError(w, err)
			return
		}

		resp, err := m.engine.Perform(r.Context(), identityFromContext(r.Context()), req)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
