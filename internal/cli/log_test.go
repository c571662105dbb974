package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("render finished") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("configured character") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("configured character") }, true},
		{"warn at error level", log.ErrorLevel, func(l *log.Logger) { l.Warn("retrying render") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

// fakeClock returns a progress that started at a fixed time and reports
// the given run time.
func fakeClock(l *log.Logger, run time.Duration) *progress {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &progress{logger: l, start: start, now: func() time.Time { return start.Add(run) }}
}

func TestProgressElapsed(t *testing.T) {
	tests := []struct {
		run  time.Duration
		want time.Duration
	}{
		{0, 0},
		{1234567 * time.Microsecond, 1235 * time.Millisecond},
		{400 * time.Microsecond, 0},
		{90 * time.Second, 90 * time.Second},
	}
	for _, tt := range tests {
		if got := fakeClock(log.Default(), tt.run).elapsed(); got != tt.want {
			t.Errorf("elapsed after %v = %v, want %v", tt.run, got, tt.want)
		}
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	p := fakeClock(newLogger(&buf, log.InfoLevel), 2500*time.Millisecond)
	p.done("generated dna set", "vectors", 5, "file", "dna.json")

	out := buf.String()
	for _, want := range []string{"generated dna set", "vectors=5", "file=dna.json", "elapsed=2.5s"} {
		if !strings.Contains(out, want) {
			t.Errorf("done output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "file=") > strings.Index(out, "elapsed=") {
		t.Errorf("elapsed should follow the caller's fields:\n%s", out)
	}
}

func TestProgressDoneFiltered(t *testing.T) {
	var buf bytes.Buffer
	fakeClock(newLogger(&buf, log.WarnLevel), time.Second).done("generated dna set")
	if buf.Len() != 0 {
		t.Errorf("done should log at info level, got output at warn level:\n%s", buf.String())
	}
}
