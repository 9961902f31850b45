// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package api

import (
	"bytes"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/eatwhat/internal/config"
	"github.com/tomtom215/eatwhat/internal/database"
	"github.com/tomtom215/eatwhat/internal/recommend"
	"github.com/tomtom215/eatwhat/internal/session"
	"github.com/tomtom215/eatwhat/internal/stats"
	"github.com/tomtom215/eatwhat/internal/testinfra"
	ws "github.com/tomtom215/eatwhat/internal/websocket"
)

// testAPIConfig returns a configuration with the response cache disabled so
// every read hits the database.
func testAPIConfig() *config.Config {
	return &config.Config{
		API: config.APIConfig{
			DefaultPageSize:  50,
			MaxPageSize:      200,
			DefaultRankLimit: 10,
			MaxRankLimit:     100,
		},
		Security: config.SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitDisabled: true,
		},
		Catalog: config.CatalogConfig{
			CacheTTL:      time.Minute,
			BatchMaxItems: 50,
		},
		Session: config.SessionConfig{Timeout: 5 * time.Minute},
	}
}

type testEnv struct {
	t       *testing.T
	db      *database.DB
	handler *Handler
	router  http.Handler
}

// newTestEnv wires a Handler over a fresh in-memory database. Usage writes
// are applied synchronously because no dispatcher is configured.
func newTestEnv(t *testing.T, hub *ws.Hub) *testEnv {
	t.Helper()

	db := testinfra.NewDB(t)
	cfg := testAPIConfig()

	eligible := recommend.NewEligibleCache(db, cfg.Catalog.CacheTTL)
	handler := NewHandler(Deps{
		DB:       db,
		Eligible: eligible,
		Selector: recommend.NewSelector(eligible, db, rand.New(rand.NewSource(42))), //nolint:gosec // deterministic test picks
		Sessions: session.NewService(db, nil, cfg.Session.Timeout),
		Stats:    stats.NewAggregator(db, nil),
		Hub:      hub,
		Config:   cfg,
	})
	t.Cleanup(handler.Close)

	mc := MiddlewareConfigFrom(cfg.Security)
	return &testEnv{
		t:       t,
		db:      db,
		handler: handler,
		router:  NewRouter(handler, mc).SetupChi(),
	}
}

// do sends a request through the full router. body is JSON encoded unless it
// is a string, which is sent verbatim.
func (e *testEnv) do(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	e.t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			e.t.Fatalf("encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// envelope is APIResponse with Data left raw for per-test decoding.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, w.Body.String())
	}
	return env
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data: %v (data %s)", err, env.Data)
	}
}

// expectError asserts a failed envelope with the given status, code and
// message. An empty code or message is not checked.
func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code, message string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, status, w.Body.String())
	}
	env := decodeEnvelope(t, w)
	if env.Success {
		t.Fatal("success = true, want false")
	}
	if env.Error == nil {
		t.Fatal("error is nil")
	}
	if code != "" && env.Error.Code != code {
		t.Errorf("error code = %q, want %q", env.Error.Code, code)
	}
	if message != "" && env.Error.Message != message {
		t.Errorf("error message = %q, want %q", env.Error.Message, message)
	}
}

// expectOK asserts a successful envelope with the given status.
func expectOK(t *testing.T, w *httptest.ResponseRecorder, status int) envelope {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, status, w.Body.String())
	}
	env := decodeEnvelope(t, w)
	if !env.Success {
		t.Fatalf("success = false: %+v", env.Error)
	}
	return env
}
