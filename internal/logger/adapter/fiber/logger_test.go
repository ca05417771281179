package fiber_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	adapter "github.com/GoAccess-Admin/GoAccess-Admin/internal/logger/adapter/fiber"

	"github.com/GoAccess-Admin/GoAccess-Admin/internal/logger"
)

// accessLogLine mirrors the json fields the middleware emits.
type accessLogLine struct {
	IP            net.IP    `json:"IP"`
	Status        int       `json:"status"`
	XPerformance  float32   `json:"X-Performance"`
	URI           string    `json:"URI"`
	Method        string    `json:"method"`
	Host          string    `json:"host"`
	XForwardedFor string    `json:"X-Forwarded-For"`
	UserAgent     string    `json:"User-Agent"`
	Time          time.Time `json:"time"`
}

func consoleConfig() adapter.Config {
	return adapter.Config{
		Config: logger.Log{
			EnableAccessLogToConsole: true,
			Console:                  logger.Console{Enabled: true},
		},
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		targetPath string
		config     adapter.Config
		want       *accessLogLine // nil means no output expected
	}{
		{
			name:       "zero config logs nothing",
			targetPath: "/admin/invitation",
		},
		{
			name:       "registered route",
			targetPath: "/admin/invitation",
			config:     consoleConfig(),
			want: &accessLogLine{
				IP:     net.ParseIP("0.0.0.0"),
				Status: 200,
				URI:    "/admin/invitation",
				Method: fiber.MethodGet,
				Host:   "example.com",
			},
		},
		{
			name:       "query string is preserved",
			targetPath: "/admin/invitation?page=2&search=alice",
			config:     consoleConfig(),
			want: &accessLogLine{
				IP:     net.ParseIP("0.0.0.0"),
				Status: 200,
				URI:    "/admin/invitation?page=2&search=alice",
				Method: fiber.MethodGet,
				Host:   "example.com",
			},
		},
		{
			name:       "multi slash path is logged unnormalized",
			targetPath: "//admin//invitation",
			config:     consoleConfig(),
			want: &accessLogLine{
				IP:     net.ParseIP("0.0.0.0"),
				Status: 404,
				URI:    "//admin//invitation",
				Method: fiber.MethodGet,
				Host:   "example.com",
			},
		},
		{
			name:       "unknown route logged with 404",
			targetPath: "/no-such-page?token=abc",
			config:     consoleConfig(),
			want: &accessLogLine{
				IP:     net.ParseIP("0.0.0.0"),
				Status: 404,
				URI:    "/no-such-page?token=abc",
				Method: fiber.MethodGet,
				Host:   "example.com",
			},
		},
		{
			name:       "check alive calls are suppressed",
			targetPath: "/checkalive",
			config: adapter.Config{
				Config: logger.Log{
					EnableAccessLogToConsole: true,
					DisableCheckAlive:        true,
					Console:                  logger.Console{Enabled: true},
				},
				CheckAliveURI: "/checkalive",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := runWithMiddleware(t, tt.targetPath, tt.config)
			assert.NoError(t, err)

			if tt.want == nil {
				assert.Empty(t, output)
				return
			}

			if !assert.NotEmpty(t, output) {
				return
			}

			var line accessLogLine
			if err := json.Unmarshal([]byte(output), &line); err != nil {
				t.Fatalf("expected a json access log line, got %q: %v", output, err)
			}

			assert.Equal(t, tt.want.Host, line.Host)
			assert.Equal(t, tt.want.Method, line.Method)
			assert.Equal(t, tt.want.Status, line.Status)
			assert.Equal(t, tt.want.IP, line.IP)
			assert.Equal(t, tt.want.URI, line.URI)
		})
	}
}

// runWithMiddleware serves one request through a fiber app wrapped in the
// access log middleware and returns whatever was written to the console.
func runWithMiddleware(t *testing.T, targetPath string, cfg adapter.Config) (string, error) {
	t.Helper()

	stdout := os.Stdout
	stderr := os.Stderr

	r, w, _ := os.Pipe()
	os.Stdout = w
	os.Stderr = w

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		Immutable:     true,
	})

	app.Use(adapter.New(cfg))

	app.Get("/admin/invitation", func(ctx *fiber.Ctx) error {
		return ctx.SendString("ok")
	})
	app.Get("/checkalive", func(ctx *fiber.Ctx) error {
		return ctx.SendString("ok")
	})

	_, err := app.Test(httptest.NewRequest(fiber.MethodGet, targetPath, nil), 100000)
	if err != nil {
		_ = w.Close()
		return "", err
	}

	outC := make(chan string)

	// drain in a goroutine so a full pipe can't block the handler
	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, r); err != nil {
			return
		}

		outC <- buf.String()
	}()

	_ = w.Close()
	os.Stdout = stdout
	os.Stderr = stderr

	return <-outC, err
}
