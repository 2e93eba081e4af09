package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"account-orchestrator/internal/flow"
	identitydomain "account-orchestrator/internal/identity/domain"
	sessiondomain "account-orchestrator/internal/session/domain"
)

// errorPayload is the structured error surface of the navigation contract.
// RemainingSeconds is set only for rate-limit rejections so countdowns render
// from authoritative server state.
type errorPayload struct {
	Kind             string `json:"kind"`
	Message          string `json:"message"`
	RemainingSeconds int    `json:"remaining_seconds,omitempty"`
}

type successBody struct {
	Next    string                 `json:"next,omitempty"`
	Message string                 `json:"message,omitempty"`
	Session *sessiondomain.Session `json:"session,omitempty"`
}

func writeOutcome(c *fiber.Ctx, o flow.Outcome) error {
	return c.JSON(successBody{Next: string(o.Next), Message: o.Message})
}

func writeSession(c *fiber.Ctx, sess *sessiondomain.Session, next flow.Step) error {
	return c.JSON(successBody{Next: string(next), Session: sess})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": errorPayload{Kind: "validation", Message: msg},
	})
}

// writeError maps a domain error to a status code and structured error body.
// Missing-challenge lookups surface as the generic invalid-code rejection so
// verification responses never reveal whether an email is registered.
func writeError(c *fiber.Ctx, err error) error {
	var (
		ve  *identitydomain.ValidationError
		pe  *identitydomain.ProviderError
		rle *identitydomain.RateLimitError
	)
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": errorPayload{Kind: "validation", Message: ve.Error()},
		})
	case errors.As(err, &rle):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": errorPayload{
				Kind:             "rate_limited",
				Message:          rle.Error(),
				RemainingSeconds: rle.RemainingSeconds,
			},
		})
	case errors.Is(err, identitydomain.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": errorPayload{Kind: "invalid_credentials", Message: err.Error()},
		})
	case errors.Is(err, identitydomain.ErrInvalidCode), errors.Is(err, identitydomain.ErrNoChallenge):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": errorPayload{Kind: "invalid_code", Message: identitydomain.ErrInvalidCode.Error()},
		})
	case errors.Is(err, identitydomain.ErrCodeExpired):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": errorPayload{Kind: "code_expired", Message: err.Error()},
		})
	case errors.Is(err, identitydomain.ErrChallengeComplete):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": errorPayload{Kind: "already_verified", Message: err.Error()},
		})
	case errors.Is(err, identitydomain.ErrNotAuthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": errorPayload{Kind: "not_authenticated", Message: err.Error()},
		})
	case errors.Is(err, identitydomain.ErrProviderTimeout):
		return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{
			"error": errorPayload{Kind: "provider_timeout", Message: err.Error()},
		})
	case errors.As(err, &pe):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": errorPayload{Kind: "provider", Message: pe.Msg},
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": errorPayload{Kind: "internal", Message: "internal error"},
		})
	}
}
