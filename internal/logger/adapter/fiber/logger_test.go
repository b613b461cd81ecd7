package fiber_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapter "github.com/pharmadesk/pharmadesk/internal/logger/adapter/fiber"
)

// accessLine is the json format of one access log line.
type accessLine struct {
	IP        string `json:"ip"`
	Status    int    `json:"status"`
	URI       string `json:"uri"`
	Method    string `json:"method"`
	Host      string `json:"host"`
	RequestID string `json:"request_id"`
	UserID    uint64 `json:"user_id"`
	Error     string `json:"error"`
}

func serve(t *testing.T, cfg adapter.Config, target string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	cfg.Output = &buf

	app := fiber.New(fiber.Config{CaseSensitive: true, Immutable: true})
	app.Use(requestid.New())
	app.Use(adapter.New(cfg))

	app.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.SendString("hello test")
	})
	app.Get("/healthz", func(ctx *fiber.Ctx) error {
		return ctx.SendStatus(fiber.StatusOK)
	})
	app.Get("/boom", func(*fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, target, nil))
	require.NoError(t, err)

	return &buf, resp.Header.Get(fiber.HeaderXRequestID)
}

func decode(t *testing.T, buf *bytes.Buffer) accessLine {
	t.Helper()

	var line accessLine
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))

	return line
}

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		target string
		uri    string
		status int
	}{
		{"root", "/", "/", 200},
		{"leading double slash is kept", "//test", "//test", 404},
		{"query string is kept", "/?test=123", "/?test=123", 200},
		{"trailing double slash is collapsed", "/no_path//?test=123", "/no_path/?test=123", 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, reqID := serve(t, adapter.Config{}, tt.target)
			line := decode(t, buf)

			assert.Equal(t, tt.status, line.Status)
			assert.Equal(t, tt.uri, line.URI)
			assert.Equal(t, fiber.MethodGet, line.Method)
			assert.Equal(t, "example.com", line.Host)
			assert.Equal(t, "0.0.0.0", line.IP)
			assert.NotEmpty(t, reqID)
			assert.Equal(t, reqID, line.RequestID)
		})
	}
}

func TestNewChainError(t *testing.T) {
	buf, _ := serve(t, adapter.Config{}, "/boom")
	line := decode(t, buf)

	assert.Equal(t, fiber.StatusTeapot, line.Status)
	assert.Equal(t, "short and stout", line.Error)
}

func TestNewUserID(t *testing.T) {
	cfg := adapter.Config{
		UserID: func(*fiber.Ctx) (uint64, bool) { return 7, true },
	}

	buf, _ := serve(t, cfg, "/")
	assert.Equal(t, uint64(7), decode(t, buf).UserID)
}

func TestNewSkipsCheckAlive(t *testing.T) {
	cfg := adapter.Config{CheckAliveURI: "/healthz"}
	cfg.Config.DisableCheckAlive = true

	buf, _ := serve(t, cfg, "/healthz")
	assert.Empty(t, strings.TrimSpace(buf.String()))

	buf, _ = serve(t, cfg, "/")
	assert.NotEmpty(t, buf.String())
}

func TestNewNext(t *testing.T) {
	cfg := adapter.Config{Next: func(*fiber.Ctx) bool { return true }}

	buf, _ := serve(t, cfg, "/")
	assert.Empty(t, buf.String())
}
