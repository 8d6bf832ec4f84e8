package logger

import (
	"bytes"
	"os"
	"testing"
	"time"
)

func reset() {
	SetLevel(LevelWarn)
	SetOutput(os.Stderr)
	now = time.Now
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false")
	}
	if GetLevel() != LevelWarn {
		t.Errorf("expected LevelWarn, got %d", GetLevel())
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}
	if GetLevel() != LevelDebug {
		t.Errorf("expected LevelDebug, got %d", GetLevel())
	}
}

func TestDebug_WhenVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("test message %s", "arg")

	if buf.String() != "[DEBUG] test message arg\n" {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("test message")
	Info("info")
	Section("Ingest")

	if buf.Len() > 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestSection(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelInfo)

	Section("Embed")

	if buf.String() != "\n=== Embed ===\n" {
		t.Errorf("unexpected section output: %q", buf.String())
	}
}

func TestInfo(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelInfo)

	Info("info message %d", 42)
	Debug("hidden")

	if buf.String() != "[INFO] info message 42\n" {
		t.Errorf("unexpected info output: %q", buf.String())
	}
}

func TestWarn_PrintsByDefault(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Warn("skipping %s", "notes.txt")

	if buf.String() != "[WARN] skipping notes.txt\n" {
		t.Errorf("unexpected warn output: %q", buf.String())
	}
}

func TestSilent(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelSilent)

	Warn("warning")

	if buf.Len() > 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestElapsed(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelInfo)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now = func() time.Time { return start }
	done := Elapsed("embed")
	now = func() time.Time { return start.Add(1500 * time.Millisecond) }
	done()

	if buf.String() != "[INFO] embed took 1.5s\n" {
		t.Errorf("unexpected elapsed output: %q", buf.String())
	}
}
