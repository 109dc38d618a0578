package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"gemora/internal/models"
	"gemora/internal/security"
	"gemora/internal/services"

	"github.com/gofiber/fiber/v2"
)

type stubGenerator struct {
	response string
	err      error
}

func (g *stubGenerator) Generate(context.Context, string, models.GenerateOptions) (string, error) {
	return g.response, g.err
}

func newTestApp(gen services.Generator) *fiber.App {
	advisor := services.NewAdvisorService(
		services.NewMemoryQuotaStore(15, time.Hour),
		services.NewSessionGate(0),
		services.NewResponseCache(10*time.Minute, 100),
		services.NewExtractor(nil),
		services.NewCatalogMatcher(services.NewMemoryCatalog(nil)),
		gen,
		security.NewContentFilter(),
		nil,
		100,
		time.Second,
	)
	handler := NewAdvisorHandler(advisor)

	app := fiber.New()
	app.Post("/api/advisor/chat", handler.Chat)
	app.Get("/api/advisor/status", handler.Status)
	return app
}

func postChat(t *testing.T, app *fiber.App, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/advisor/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("Response is not JSON: %s", raw)
	}
	return resp.StatusCode, parsed
}

func TestChatEndpoint_Success(t *testing.T) {
	app := newTestApp(&stubGenerator{response: "The Ceylon Sapphire would suit a wedding beautifully."})

	status, body := postChat(t, app, `{"message":"blue sapphire for a wedding","topic":"gemstone_recommendation"}`)
	if status != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d (%v)", status, body)
	}
	if body["response"] == "" {
		t.Error("Expected a non-empty response")
	}
	if body["served_from_cache"] != false {
		t.Error("First call must not be marked as cached")
	}
}

func TestChatEndpoint_MalformedBody(t *testing.T) {
	app := newTestApp(&stubGenerator{response: "ok"})

	status, body := postChat(t, app, `{"message": not-json`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", status)
	}
	if body["code"] != services.CodeValidationFailed {
		t.Errorf("Expected %s, got %v", services.CodeValidationFailed, body["code"])
	}
}

func TestChatEndpoint_ErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		gen        *stubGenerator
		wantStatus int
		wantCode   string
	}{
		{
			name:       "validation failure",
			body:       `{"message":"","topic":"gemstone_recommendation"}`,
			gen:        &stubGenerator{response: "ok"},
			wantStatus: fiber.StatusBadRequest,
			wantCode:   services.CodeValidationFailed,
		},
		{
			name:       "content rejected",
			body:       `{"message":"hack the catalog","topic":"gemstone_recommendation"}`,
			gen:        &stubGenerator{response: "ok"},
			wantStatus: fiber.StatusUnprocessableEntity,
			wantCode:   services.CodeContentRejected,
		},
		{
			name:       "empty upstream response",
			body:       `{"message":"any good rubies?","topic":"gemstone_recommendation"}`,
			gen:        &stubGenerator{response: ""},
			wantStatus: fiber.StatusBadGateway,
			wantCode:   services.CodeUpstreamEmptyResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(tt.gen)
			status, body := postChat(t, app, tt.body)
			if status != tt.wantStatus {
				t.Errorf("Expected %d, got %d", tt.wantStatus, status)
			}
			if body["code"] != tt.wantCode {
				t.Errorf("Expected code %s, got %v", tt.wantCode, body["code"])
			}
			if body["error"] == "" {
				t.Error("Error responses must carry a user-facing message")
			}
		})
	}
}

func TestChatEndpoint_ThrottledCarriesRetryAfter(t *testing.T) {
	advisor := services.NewAdvisorService(
		services.NewMemoryQuotaStore(15, time.Hour),
		services.NewSessionGate(10*time.Second),
		services.NewResponseCache(10*time.Minute, 100),
		services.NewExtractor(nil),
		services.NewCatalogMatcher(services.NewMemoryCatalog(nil)),
		&stubGenerator{response: "ok"},
		security.NewContentFilter(),
		nil,
		100,
		time.Second,
	)
	app := fiber.New()
	app.Post("/api/advisor/chat", NewAdvisorHandler(advisor).Chat)

	if status, _ := postChat(t, app, `{"message":"first ruby","topic":"gemstone_recommendation"}`); status != fiber.StatusOK {
		t.Fatalf("First call should pass, got %d", status)
	}

	status, body := postChat(t, app, `{"message":"second ruby","topic":"gemstone_recommendation"}`)
	if status != fiber.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %d", status)
	}
	if body["code"] != services.CodeThrottled {
		t.Errorf("Expected throttled, got %v", body["code"])
	}
	if _, ok := body["retry_after"]; !ok {
		t.Error("Throttled responses must include retry_after")
	}
}

func TestStatusEndpoint(t *testing.T) {
	app := newTestApp(&stubGenerator{response: "ok"})

	req := httptest.NewRequest("GET", "/api/advisor/status", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var status services.AdvisorStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	if status.QuotaLimit != 15 {
		t.Errorf("Expected quota limit 15, got %d", status.QuotaLimit)
	}
	if status.QuotaUsed != 0 {
		t.Errorf("Fresh identity should have zero usage, got %d", status.QuotaUsed)
	}
}
