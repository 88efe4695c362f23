package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/user/ainspire/pkg/ports"
)

func TestConsoleLogger_LevelsAndStreams(t *testing.T) {
	var stdout, stderr bytes.Buffer
	log := NewConsoleWithWriters(ports.LevelInfo, &stdout, &stderr, nil)

	log.Debug("hidden %d", 1)
	log.Info("Finished extracting %s", "a.mp4")
	log.Warn("Skipping frame %s", "j1")
	log.Error("fatal")

	if strings.Contains(stdout.String(), "hidden") {
		t.Error("debug message should be filtered at info level")
	}
	if stdout.String() != "Finished extracting a.mp4\n" {
		t.Errorf("unexpected stdout %q", stdout.String())
	}
	if stderr.String() != "Skipping frame j1\nfatal\n" {
		t.Errorf("unexpected stderr %q", stderr.String())
	}
}

func TestConsoleLogger_Component(t *testing.T) {
	var stdout bytes.Buffer
	log := NewConsoleWithWriters(ports.LevelDebug, &stdout, &stdout, nil).WithComponent("video-queue")
	log.Debug("Dropped %d queued video(s)", 2)

	if stdout.String() != "[video-queue] Dropped 2 queued video(s)\n" {
		t.Errorf("unexpected output %q", stdout.String())
	}
}

func TestConsoleLogger_Translator(t *testing.T) {
	var stdout bytes.Buffer
	upper := func(msg string, args ...interface{}) string { return strings.ToUpper(msg) }
	log := NewConsoleWithWriters(ports.LevelInfo, &stdout, &stdout, nil).WithTranslator(upper)

	log.WithComponent("x").Info("hello")
	if stdout.String() != "[x] HELLO\n" {
		t.Errorf("translator not applied through WithComponent: %q", stdout.String())
	}
}

func TestConsoleLogger_Quiet(t *testing.T) {
	var out bytes.Buffer
	log := NewConsoleWithWriters(ports.LevelQuiet, &out, &out, nil)
	log.Error("nothing")
	if out.Len() != 0 {
		t.Errorf("quiet logger wrote %q", out.String())
	}
}
