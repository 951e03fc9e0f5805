package bootlog

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewWritesTextLines(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, nil)
	logger.Info("flash:op-failed", "state", 3)

	out := buf.String()
	if !strings.Contains(out, "flash:op-failed") {
		t.Fatalf("output missing message: %q", out)
	}
	if !strings.Contains(out, "state=3") {
		t.Fatalf("output missing attr: %q", out)
	}
}

func TestDiscardProducesNoOutput(t *testing.T) {
	logger := Discard()
	logger.Error("should not panic or write anywhere")
}

func TestWithAttrsCarriesThrough(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, nil).With("component", "engine")
	logger.Info("hello")

	if !strings.Contains(buf.String(), "component=engine") {
		t.Fatalf("missing carried attr: %q", buf.String())
	}
}
