// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSlogHandlerWritesThroughZerolog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	slogger := slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf)))

	slogger.With("service", "http-server").
		WithGroup("restart").
		Warn("service restarted", "attempt", 2, "backoff", 15*time.Second)

	out := buf.String()
	for _, want := range []string{
		`"level":"warn"`,
		`"service":"http-server"`,
		`"restart.attempt":2`,
		"service restarted",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestSlogHandlerGroupKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		log     func(l *slog.Logger)
		want    []string
		notWant []string
	}{
		{
			name: "attr before group keeps its key",
			log: func(l *slog.Logger) {
				l.With("service", "api").WithGroup("restart").Info("m", "attempt", 1)
			},
			want:    []string{`"service":"api"`, `"restart.attempt":1`},
			notWant: []string{`"restart.service"`},
		},
		{
			name: "attr after group is prefixed",
			log: func(l *slog.Logger) {
				l.WithGroup("restart").With("service", "api").Info("m")
			},
			want: []string{`"restart.service":"api"`},
		},
		{
			name: "each attr keeps the groups open when bound",
			log: func(l *slog.Logger) {
				l.WithGroup("a").With("x", 1).WithGroup("b").With("y", 2).Info("m", "z", 3)
			},
			want:    []string{`"a.x":1`, `"a.b.y":2`, `"a.b.z":3`},
			notWant: []string{`"a.b.x"`},
		},
		{
			name: "inline group under open group",
			log: func(l *slog.Logger) {
				l.WithGroup("req").Info("m", slog.Group("user", "id", "u1"))
			},
			want: []string{`"req.user.id":"u1"`},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			tt.log(slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf))))
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %s: %s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output has %s: %s", w, out)
				}
			}
		})
	}
}

func TestSlogToZerologLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   slog.Level
		want zerolog.Level
	}{
		{slog.LevelDebug - 4, zerolog.TraceLevel},
		{slog.LevelDebug, zerolog.DebugLevel},
		{slog.LevelInfo, zerolog.InfoLevel},
		{slog.LevelWarn, zerolog.WarnLevel},
		{slog.LevelError, zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		if got := slogToZerologLevel(tt.in); got != tt.want {
			t.Errorf("slogToZerologLevel(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
