// Package handlertest holds helpers for testing web handlers with fiber's app.Test.
package handlertest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/pharmadesk/pharmadesk/internal/auth"
	"github.com/pharmadesk/pharmadesk/internal/db/models"
)

// PrincipalHeader carries the username of the user a test request acts as.
const PrincipalHeader = "X-Test-User"

// NewApp returns a fiber app whose requests act as the users registered in users,
// selected by username through the PrincipalHeader. Requests without the header are anonymous.
func NewApp(users ...*models.User) *fiber.App {
	byName := make(map[string]*models.User, len(users))
	for _, u := range users {
		byName[u.Username] = u
	}

	app := fiber.New(fiber.Config{CaseSensitive: true, Immutable: true})
	app.Use(func(c *fiber.Ctx) error {
		if u, ok := byName[c.Get(PrincipalHeader)]; ok {
			auth.SetPrincipal(c, auth.PrincipalFromUser(u))
		}

		return c.Next()
	})

	return app
}

// Response is a decoded test response.
type Response struct {
	Status int
	Body   []byte
}

// Decode unmarshals the response body into dst.
func (r Response) Decode(t *testing.T, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, dst), "body: %s", r.Body)
}

// Map returns the response body as a JSON object.
func (r Response) Map(t *testing.T) map[string]any {
	t.Helper()

	m := map[string]any{}
	r.Decode(t, &m)

	return m
}

// Do sends a request as the user named as (anonymous when empty) with body encoded as JSON.
func Do(t *testing.T, app *fiber.App, as, method, target string, body any) Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	if as != "" {
		req.Header.Set(PrincipalHeader, as)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return Response{Status: resp.StatusCode, Body: raw}
}
