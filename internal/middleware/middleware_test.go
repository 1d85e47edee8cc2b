package middleware

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

func testApp(cfg Config) (*fiber.App, Middleware) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	m := New(logger, cfg)

	app := fiber.New()
	app.Use(m.NewRequestIDMiddleware())
	app.Use(m.NewLoggingMiddleware())
	app.Get("/limited", m.NewRateLimiter, func(c *fiber.Ctx) error {
		return c.SendString(m.GetRequestID(c))
	})
	return app, m
}

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	app, _ := testApp(Config{RatePerSecond: 100, Burst: 100})

	resp, err := app.Test(httptest.NewRequest("GET", "/limited", nil))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	if _, err := ulid.Parse(string(body)); err != nil {
		t.Fatalf("request id %q is not a ULID: %v", body, err)
	}
	if resp.Header.Get(RequestIDKey) != string(body) {
		t.Fatal("request id header does not match locals")
	}

	req := httptest.NewRequest("GET", "/limited", nil)
	req.Header.Set(RequestIDKey, "client-id")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	body, _ = io.ReadAll(resp.Body)
	if string(body) != "client-id" {
		t.Fatalf("request id = %q, want client-id", body)
	}
}

func TestRateLimiterRejectsBurstOverflow(t *testing.T) {
	app, _ := testApp(Config{RatePerSecond: 0.001, Burst: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/limited", nil))
		if err != nil {
			t.Fatal(err)
		}
		codes = append(codes, resp.StatusCode)
	}
	if codes[0] != fiber.StatusOK || codes[1] != fiber.StatusOK || codes[2] != fiber.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
}

func TestLimiterPerIP(t *testing.T) {
	r := newRateLimiter(1, 1)
	a := r.GetLimiterFrom("10.0.0.1")
	if r.GetLimiterFrom("10.0.0.1") != a {
		t.Fatal("same ip must reuse its limiter")
	}
	if r.GetLimiterFrom("10.0.0.2") == a {
		t.Fatal("different ips must not share a limiter")
	}
}

func TestDescribeBody(t *testing.T) {
	got := describeBody("multipart/form-data; boundary=xyz", 42)
	if got != "[multipart/form-data body: 42 bytes]" {
		t.Fatalf("describeBody = %q", got)
	}
}
