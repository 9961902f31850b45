// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/eatwhat/internal/models"
	ws "github.com/tomtom215/eatwhat/internal/websocket"
)

func TestWebSocketUsageUpdates(t *testing.T) {
	t.Parallel()

	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hub.RunWithContext(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	env := newTestEnv(t, hub)
	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"

	t.Run("rejects missing origin", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)
		if err == nil {
			t.Fatal("dial without Origin succeeded")
		}
		if resp != nil {
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusForbidden {
				t.Errorf("status = %d, want 403", resp.StatusCode)
			}
		}
	})

	t.Run("receives broadcast", func(t *testing.T) {
		conn, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://localhost:3000"}})
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		defer conn.Close()
		if resp != nil {
			resp.Body.Close()
		}

		deadline := time.Now().Add(2 * time.Second)
		for hub.ClientCount() == 0 {
			if time.Now().After(deadline) {
				t.Fatal("client never registered")
			}
			time.Sleep(10 * time.Millisecond)
		}

		hub.BroadcastUsage(models.SimpleUsage{TotalHelped: 7, TotalUsers: 3})

		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}

		var msg struct {
			Type string             `json:"type"`
			Data models.SimpleUsage `json:"data"`
		}
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
		if msg.Type != ws.MessageTypeUsageUpdate {
			t.Errorf("type = %q, want %q", msg.Type, ws.MessageTypeUsageUpdate)
		}
		if msg.Data.TotalHelped != 7 || msg.Data.TotalUsers != 3 {
			t.Errorf("data = %+v", msg.Data)
		}

		got := expectOK(t, env.do(http.MethodGet, "/api/health", nil, nil), http.StatusOK)
		var h HealthStatus
		decodeData(t, got, &h)
		if h.WebSocketClients != 1 {
			t.Errorf("websocketClients = %d, want 1", h.WebSocketClients)
		}
	})
}
