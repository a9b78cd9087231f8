package mux

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"hpblackjack-server/pkg/blackjack"
	"hpblackjack-server/pkg/engine"
	"hpblackjack-server/pkg/session"
)

func Test_parseRows(t *testing.T) {
	req := func(queryString string) *http.Request {
		req, _ := http.NewRequest(http.MethodGet, "https://example.domain/"+queryString, nil)
		return req
	}

	rows, err := parseRows(req(""))
	assert.NoError(t, err)
	assert.Equal(t, defaultRows, rows)

	rows, err = parseRows(req("?rows=25"))
	assert.NoError(t, err)
	assert.Equal(t, 25, rows)

	_, err = parseRows(req("?rows=0"))
	assert.EqualError(t, err, "rows must be greater than zero")

	_, err = parseRows(req(fmt.Sprintf("?rows=%d", maxRows+1)))
	assert.EqualError(t, err, fmt.Sprintf("rows cannot be greater than %d", maxRows))

	_, err = parseRows(req("?rows=abc"))
	assert.Error(t, err)
}

func Test_statusFor(t *testing.T) {
	a := assert.New(t)

	status, err := statusFor(blackjack.ErrSplitNotSupported)
	a.Equal(http.StatusBadRequest, status)
	a.Equal(blackjack.ErrSplitNotSupported, err)

	status, err = statusFor(fmt.Errorf("load: %w", session.ErrNotFound))
	a.Equal(http.StatusNotFound, status)
	a.Equal(errNoProfile, err)

	status, _ = statusFor(session.ErrDuplicateKey)
	a.Equal(http.StatusConflict, status)

	status, err = statusFor(session.ErrConcurrencyConflict)
	a.Equal(http.StatusConflict, status)
	a.Equal(errConflict, err)

	status, err = statusFor(fmt.Errorf("%w: %v", engine.ErrPersistence, "connection reset"))
	a.Equal(http.StatusServiceUnavailable, status)
	a.Equal(engine.ErrPersistence, err)
	a.Equal(engine.ErrPersistence.Error(), newErrorResponse(status, err).Message)

	status, err = statusFor(errors.New("secret detail"))
	a.Equal(http.StatusInternalServerError, status)
	a.Equal("Internal Server Error", newErrorResponse(status, err).Message)
}

func assertDo(t *testing.T, req *http.Request, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()

	if len(signedJWT) > 0 {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", signedJWT[0]))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Error(err)
		return nil
	}
	defer resp.Body.Close()

	if statusCode != resp.StatusCode {
		b, _ := io.ReadAll(resp.Body)
		t.Log(string(b))
		assert.Equal(t, statusCode, resp.StatusCode)
		return nil
	}

	if respObj != nil {
		if err := json.NewDecoder(resp.Body).Decode(respObj); err != nil {
			t.Error(err)
			return nil
		}
	}

	return resp
}

func assertGet(t *testing.T, ts *httptest.Server, path string, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	if err != nil {
		t.Error(err)
		return nil
	}

	return assertDo(t, req, respObj, statusCode, signedJWT...)
}

func assertSend(t *testing.T, ts *httptest.Server, method, path string, payload interface{}, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()

	var body io.Reader
	switch val := payload.(type) {
	case string:
		body = strings.NewReader(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			t.Error(err)
			return nil
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Error(err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	return assertDo(t, req, respObj, statusCode, signedJWT...)
}

func assertPost(t *testing.T, ts *httptest.Server, path string, payload interface{}, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()
	return assertSend(t, ts, http.MethodPost, path, payload, respObj, statusCode, signedJWT...)
}

func assertPut(t *testing.T, ts *httptest.Server, path string, payload interface{}, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()
	return assertSend(t, ts, http.MethodPut, path, payload, respObj, statusCode, signedJWT...)
}
