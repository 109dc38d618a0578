package handlers

import (
	"gemora/internal/logging"
	"gemora/internal/models"
	"gemora/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AdvisorHandler exposes the advisor gateway over HTTP.
type AdvisorHandler struct {
	advisor *services.AdvisorService
}

// NewAdvisorHandler creates a new advisor handler
func NewAdvisorHandler(advisor *services.AdvisorService) *AdvisorHandler {
	return &AdvisorHandler{advisor: advisor}
}

// Chat handles POST /api/advisor/chat
func (h *AdvisorHandler) Chat(c *fiber.Ctx) error {
	var req models.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
			"code":  services.CodeValidationFailed,
		})
	}

	reqLog := logging.WithRequest(c.IP(), req.Topic)

	result, err := h.advisor.Chat(c.UserContext(), c.IP(), req)
	if err != nil {
		if advErr, ok := services.AsAdvisorError(err); ok {
			reqLog.Warn("advisor chat rejected", "code", advErr.Code)
		}
		return writeAdvisorError(c, err)
	}

	reqLog.Info("advisor chat served",
		"cached", result.ServedFromCache,
		"candidates", len(result.Candidates),
	)
	return c.JSON(result)
}

// Status handles GET /api/advisor/status — read-only quota introspection.
func (h *AdvisorHandler) Status(c *fiber.Ctx) error {
	return c.JSON(h.advisor.Status(c.UserContext(), c.IP()))
}

// writeAdvisorError maps each advisor error kind to its own HTTP status.
// Internal details never reach the response body.
func writeAdvisorError(c *fiber.Ctx, err error) error {
	advErr, ok := services.AsAdvisorError(err)
	if !ok {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "The advisor is unavailable right now. Please try again.",
			"code":  "upstream_error",
		})
	}

	body := fiber.Map{
		"error": advErr.Message,
		"code":  advErr.Code,
	}
	if advErr.RetryAfter > 0 {
		body["retry_after"] = int(advErr.RetryAfter.Seconds())
	}

	return c.Status(statusForCode(advErr.Code)).JSON(body)
}

func statusForCode(code string) int {
	switch code {
	case services.CodeValidationFailed:
		return fiber.StatusBadRequest
	case services.CodeContentRejected:
		return fiber.StatusUnprocessableEntity
	case services.CodeRateLimitExceeded, services.CodeThrottled:
		return fiber.StatusTooManyRequests
	case services.CodeUpstreamConfigError:
		return fiber.StatusInternalServerError
	case services.CodeUpstreamQuotaExceeded:
		return fiber.StatusServiceUnavailable
	case services.CodeUpstreamTimeout:
		return fiber.StatusGatewayTimeout
	case services.CodeUpstreamEmptyResponse:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
