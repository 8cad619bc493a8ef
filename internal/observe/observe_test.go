package observe

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	buf := &bytes.Buffer{}
	obs := New(buf, true)

	if obs == nil {
		t.Fatal("expected non-nil Observer")
	}
	if obs.log == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	obs := NewJSON(buf, true)

	if obs == nil {
		t.Fatal("expected non-nil Observer")
	}
	if obs.log == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestObserver_Log(t *testing.T) {
	buf := &bytes.Buffer{}
	obs := New(buf, true)

	obs.Log().Info().Msg("test message")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("expected output to contain 'test message', got %q", output)
	}
}

func TestObserver_AuditDefaultsToLog(t *testing.T) {
	buf := &bytes.Buffer{}
	obs := New(buf, true)

	obs.Audit().Info().Str("sql", "SELECT 1").Msg("executed")

	if !strings.Contains(buf.String(), "SELECT 1") {
		t.Errorf("expected audit entry in console output, got %q", buf.String())
	}
}

func TestObserver_EnableAudit(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "logs", "queries.log")

	buf := &bytes.Buffer{}
	obs := New(buf, false)

	if err := obs.EnableAudit(path); err != nil {
		t.Fatalf("EnableAudit failed: %v", err)
	}

	obs.Audit().Info().Str("sql", "SELECT count(*) FROM orders").Msg("executed")

	if err := obs.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read audit log: %v", err)
	}
	if !strings.Contains(string(data), "SELECT count(*) FROM orders") {
		t.Errorf("expected audit file to contain the SQL, got %q", string(data))
	}
	// Audit entries must not leak into the console handler.
	if strings.Contains(buf.String(), "SELECT count(*)") {
		t.Errorf("audit entry leaked into console output: %q", buf.String())
	}
}

func TestObserver_StartSpan(t *testing.T) {
	buf := &bytes.Buffer{}
	obs := New(buf, true)

	ctx := context.Background()
	spanCtx, span := obs.StartSpan(ctx, "test-span")

	if spanCtx == nil {
		t.Fatal("expected non-nil context from StartSpan")
	}
	if span == nil {
		t.Fatal("expected non-nil span from StartSpan")
	}

	span.End()
}

func TestObserver_Close(t *testing.T) {
	buf := &bytes.Buffer{}
	obs := New(buf, true)

	if err := obs.Close(); err != nil {
		t.Errorf("expected nil error from Close, got %v", err)
	}
}
