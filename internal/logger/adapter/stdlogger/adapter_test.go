package stdlogger_test

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/GoAccess-Admin/GoAccess-Admin/internal/logger"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/logger/adapter/stdlogger"
)

func TestAdapter(t *testing.T) {
	testCases := []struct {
		name         string
		cfg          logger.Log
		expectOutput bool
	}{
		{
			name: "nothing enabled",
			cfg: logger.Log{
				LogLevel:    "",
				ServiceName: "test",
				AppName:     "test",
			},
			expectOutput: false,
		},
		{
			name: "console at info",
			cfg: logger.Log{
				LogLevel:    "info",
				ServiceName: "test",
				AppName:     "test",
				Console:     logger.Console{Enabled: true},
			},
			expectOutput: true,
		},
		{
			name: "console writer at info",
			cfg: logger.Log{
				LogLevel:    "info",
				ServiceName: "test",
				AppName:     "test",
				Console:     logger.Console{Enabled: true, UseConsoleWriter: true},
			},
			expectOutput: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := captureAdapterOutput(t, tc.cfg)
			t.Logf("out: %s", out)

			if out == "" && tc.expectOutput {
				t.Error("expected console output but got none")
			}
		})
	}
}

func TestAdapter_LevelFiltering(t *testing.T) {
	out := captureAdapterOutput(t, logger.Log{
		LogLevel:    "info",
		ServiceName: "test",
		AppName:     "test",
		Console:     logger.Console{Enabled: true},
	})

	// info and up pass the level gate, debug does not
	for _, want := range []string{"adapter info", "adapter warning", "adapter error"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got: %s", want, out)
		}
	}

	if strings.Contains(out, "adapter debug") {
		t.Errorf("debug output should be filtered at info level, got: %s", out)
	}
}

// captureAdapterOutput initializes the logger with cfg, emits one message per
// adapter method, and returns whatever reached stdout and stderr.
func captureAdapterOutput(t *testing.T, cfg logger.Log) string {
	t.Helper()

	stdout := os.Stdout
	stderr := os.Stderr

	r, w, _ := os.Pipe()
	os.Stdout = w
	os.Stderr = w

	if err := logger.Init(cfg); err != nil {
		t.Error(err)
	}

	l := stdlogger.New()

	l.Debugf("adapter %s", "debug")
	l.Printf("adapter %s", "printf")
	l.Infof("adapter %s", "info")
	l.Warningf("adapter %s", "warning")
	l.Errorf("adapter %s", "error")

	outC := make(chan string)

	// drain in a goroutine so a full pipe can't block the writes above
	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, r); err != nil {
			t.Error(err)
		}
		outC <- buf.String()
	}()

	_ = w.Close()
	os.Stdout = stdout
	os.Stderr = stderr

	return <-outC
}
