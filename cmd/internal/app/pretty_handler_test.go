package app

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestPrettyHandlerPlainOutput(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newPrettyHandler(&buf, nil, false))

	log.Info("http.request", "method", "GET", "path", "/api/health", "status", 200, "duration_ms", 3)

	out := buf.String()
	for _, want := range []string{"[INFO]", "http.request", "method=GET", "path=/api/health", "status=200", "duration_ms=3ms"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("no ANSI escapes expected without color: %q", out)
	}
}

func TestPrettyHandlerColorAndLevels(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}, true))

	log.Error("boom", "status", 500)
	out := buf.String()
	if !strings.Contains(out, "[ERROR]") || !strings.Contains(out, ansiRed) {
		t.Fatalf("expected red error tag: %q", out)
	}
}

func TestPrettyHandlerRespectsLevel(t *testing.T) {
	h := newPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn}, false)
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info should be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("error should be enabled at warn level")
	}
}

func TestPrettyHandlerWithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	base := newPrettyHandler(&buf, nil, false)
	log := slog.New(base).With("svc", "atrium").WithGroup("db")

	log.Info("query", "table", "sessions")

	out := buf.String()
	if !strings.Contains(out, "svc=atrium") {
		t.Fatalf("missing bound attr: %q", out)
	}
	if !strings.Contains(out, "db.table=sessions") {
		t.Fatalf("missing grouped attr: %q", out)
	}
}

func TestQuoteIfNeeded(t *testing.T) {
	if got := quoteIfNeeded("plain"); got != "plain" {
		t.Fatalf("got %q", got)
	}
	if got := quoteIfNeeded("two words"); got != `"two words"` {
		t.Fatalf("got %q", got)
	}
	if got := quoteIfNeeded(""); got != `""` {
		t.Fatalf("got %q", got)
	}
}
