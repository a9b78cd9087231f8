package mux

import (
	"net/http"
)

type profilePayload struct {
	Username string  `json:"username"`
	Avatar   *string `json:"avatar"`
}

func (m *Mux) getProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := m.engine.Profile(r.Context(), identityFromContext(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, profile)
	}
}

func (m *Mux) postProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp profilePayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		profile, err := m.engine.CreateProfile(r.Context(), identityFromContext(r.Context()), pp.Username, pp.Avatar)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, profile)
	}
}

func (m *Mux) putProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp profilePayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		profile, err := m.engine.UpdateProfile(r.Context(), identityFromContext(r.Context()), pp.Username, pp.Avatar)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, profile)
	}
}

func (m *Mux) getLedger() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := parseRows(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		entries, err := m.engine.History(r.Context(), identityFromContext(r.Context()), rows)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, entries)
	}
}
