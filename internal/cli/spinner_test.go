package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestRenderSpinnerMessage(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var buf bytes.Buffer
	s := renderSpinner(context.Background(), &buf, "svg", "embedded")
	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Rendering svg with embedded...") {
		t.Errorf("spinner output %q should name the format and engine", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("spinner should clear its line on Stop, got %q", out)
	}
}

func TestSpinnerStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var buf bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	s := renderSpinner(ctx, &buf, "png", "dot")
	s.Start()
	cancel()

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked after the context was cancelled")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var buf bytes.Buffer
	s := renderSpinner(context.Background(), &buf, "pdf", "dot")
	s.Start()
	s.Stop()
	n := buf.Len()

	s.Stop()
	s.Stop()
	if buf.Len() != n {
		t.Errorf("repeated Stop wrote %q", buf.String()[n:])
	}
}

func TestSpinnerWithoutStart(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var buf bytes.Buffer
	s := renderSpinner(context.Background(), &buf, "jpg", "dot")
	s.Stop()
	n := buf.Len()

	// A render that failed before the spinner started must not hang or
	// leave a stale frame.
	s.Start()
	time.Sleep(3 * spinnerInterval)
	if strings.Contains(buf.String()[n:], "Rendering") {
		t.Errorf("Start after Stop drew a frame: %q", buf.String())
	}
}

func TestSpinnerStopWithError(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var buf bytes.Buffer
	s := renderSpinner(context.Background(), &buf, "png", "dot")
	s.Start()
	s.StopWithError("Render failed")
	if !strings.HasSuffix(buf.String(), iconError+" Render failed\n") {
		t.Errorf("spinner output = %q, want the failure line last", buf.String())
	}
}
