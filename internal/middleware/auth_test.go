package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"organizer-api/internal/config"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"-----BEGIN KEY-----\\nabc\\n-----END KEY-----", "-----BEGIN KEY-----\nabc\n-----END KEY-----"},
		{"line1%0Aline2%0a", "line1\nline2"},
		{"  plain  ", "plain"},
	}
	for _, tt := range tests {
		if got := normalizeKey(tt.in); got != tt.want {
			t.Errorf("normalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAuth_UserContext(t *testing.T) {
	cfg := config.Default()
	cfg.Server.APIKey = "k"
	config.AppConfig = cfg

	var got *UserContext
	app := fiber.New()
	app.Use(Auth())
	app.Get("/", func(c *fiber.Ctx) error {
		got = GetUserContext(c)
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "k")
	if _, err := app.Test(req); err != nil {
		t.Fatal(err)
	}
	if got == nil || got.IsRemote {
		t.Fatalf("local request: %+v", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "k")
	req.Header.Set("X-Ssh-Host", "files.example.com")
	req.Header.Set("X-Ssh-Key", "key\\ndata")
	if _, err := app.Test(req); err != nil {
		t.Fatal(err)
	}
	if !got.IsRemote || got.SSHConfig.Port != "22" || got.SSHConfig.Username != "root" || got.SSHConfig.PrivateKey != "key\ndata" {
		t.Errorf("remote request: %+v", got.SSHConfig)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("no key: status = %d", resp.StatusCode)
	}
}
