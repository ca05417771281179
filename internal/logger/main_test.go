package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog/log"

	"github.com/GoAccess-Admin/GoAccess-Admin/internal/logger"
)

func TestInit(t *testing.T) {
	testCases := []struct {
		name         string
		cfg          logger.Log
		expectOutput bool
		expectJSON   bool
	}{
		{
			name: "no writer enabled and no level set",
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
		{
			name: "console writer at trace",
			cfg: logger.Log{
				LogLevel:    "trace",
				ServiceName: "test",
				AppName:     "test",
				Console:     logger.Console{Enabled: true, UseConsoleWriter: true},
			},
			expectOutput: true,
		},
		{
			name: "plain console at info emits json",
			cfg: logger.Log{
				LogLevel:    "info",
				ServiceName: "test",
				AppName:     "test",
				Console:     logger.Console{Enabled: true, UseConsoleWriter: false},
			},
			expectOutput: true,
			expectJSON:   true,
		},
		{
			name: "plain console at trace with caller emits json",
			cfg: logger.Log{
				LogLevel:     "trace",
				ServiceName:  "test",
				AppName:      "test",
				ReportCaller: true,
				Console:      logger.Console{Enabled: true, UseConsoleWriter: false},
			},
			expectOutput: true,
			expectJSON:   true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := captureLogOutput(t, tc.cfg)
			t.Logf("out: %s", out)

			switch {
			case out == "" && tc.expectOutput:
				t.Errorf("expected console output but got none")
			case tc.expectJSON:
				type logLine struct {
					Level   string
					Message string
				}

				for _, line := range strings.Split(out, "\n") {
					if line == "" {
						continue
					}

					var parsed logLine
					if err := json.Unmarshal([]byte(line), &parsed); err != nil {
						t.Errorf("expected json output but got: %s", line)
					}
				}
			}
		})
	}
}

func alwaysErrFunc() error {
	return errors.New("a test error") //nolint:goerr113
}

// captureLogOutput runs Init with cfg, emits one message per level band,
// and returns whatever reached stdout and stderr.
func captureLogOutput(t *testing.T, cfg logger.Log) string {
	t.Helper()

	stdout := os.Stdout
	stderr := os.Stderr

	r, w, _ := os.Pipe()
	os.Stdout = w
	os.Stderr = w

	if err := logger.Init(cfg); err != nil {
		t.Error(err)
	}

	log.Info().Msg("this info message should be seen...")
	log.Error().Err(alwaysErrFunc()).Msg("this err message should be seen...")
	log.Trace().Err(alwaysErrFunc()).Msg("this trace message should be seen...")

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
