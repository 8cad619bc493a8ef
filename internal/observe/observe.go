package observe

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/bolt/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("text2sql")

// Observer handles logging and tracing for the query pipeline.
type Observer struct {
	log       *bolt.Logger
	audit     *bolt.Logger
	auditFile *os.File
}

// New creates a new Observer with console output.
// If verbose is false, only warnings and errors are shown.
func New(out io.Writer, verbose bool) *Observer {
	handler := bolt.NewConsoleHandler(out)
	l := bolt.New(handler)

	if !verbose {
		l.SetLevel(bolt.WARN)
	}

	return &Observer{
		log:   l,
		audit: l,
	}
}

// NewJSON creates a new Observer with JSON output.
// If verbose is false, only warnings and errors are shown.
func NewJSON(out io.Writer, verbose bool) *Observer {
	handler := bolt.NewJSONHandler(out)
	l := bolt.New(handler)

	if !verbose {
		l.SetLevel(bolt.WARN)
	}

	return &Observer{
		log:   l,
		audit: l,
	}
}

// Log returns the underlying logger
func (o *Observer) Log() *bolt.Logger {
	return o.log
}

// Audit returns the query audit logger. It records generated, extracted,
// and executed SQL regardless of the console level.
func (o *Observer) Audit() *bolt.Logger {
	return o.audit
}

// EnableAudit routes the audit logger to a JSON file at path, appending
// across runs. The parent directory is created if absent.
func (o *Observer) EnableAudit(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create audit log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	o.auditFile = f
	o.audit = bolt.New(bolt.NewJSONHandler(f))
	return nil
}

// StartSpan starts a new OTel span
func (o *Observer) StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}

// Close releases the audit sink if one was opened.
func (o *Observer) Close() error {
	if o.auditFile != nil {
		return o.auditFile.Close()
	}
	return nil
}
