// Package server wires the Fiber app: routes, middleware, and the mapping
// from domain errors to HTTP responses and navigation outcomes.
package server

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	accountservice "account-orchestrator/internal/account/service"
	"account-orchestrator/internal/audit"
	"account-orchestrator/internal/config"
	otpservice "account-orchestrator/internal/otp/service"
	profileservice "account-orchestrator/internal/profile/service"
	sessionservice "account-orchestrator/internal/session/service"
	"account-orchestrator/internal/telemetry"
	"account-orchestrator/internal/throttle"
)

// sessionHeader carries the session ID on authenticated requests. Sessions
// are passed explicitly; there is no ambient current-user lookup.
const sessionHeader = "X-Session-ID"

// Services are the lifecycle services the HTTP layer delegates to.
type Services struct {
	Registrar *accountservice.Registrar
	Verifier  *otpservice.Verifier
	Resends   *throttle.Throttle
	Sessions  *sessionservice.Manager
	Profile   *profileservice.Updater
}

// New builds the Fiber app with middleware and routes. emitter may be nil
// (telemetry disabled).
func New(cfg *config.Config, svcs Services, emitter telemetry.EventEmitter) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": errorPayload{Kind: "internal", Message: err.Error()},
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOriginsList(),
		AllowCredentials: true,
	}))
	app.Use(clientIP())
	app.Use(requestTelemetry(emitter))

	h := &handlers{svcs: svcs}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	auth := app.Group("/api/auth")
	auth.Post("/sign-up", h.signUp)
	auth.Post("/verify-otp", h.verifyOTP)
	auth.Post("/resend-otp", h.resendOTP)
	auth.Post("/sign-in", h.signIn)
	auth.Post("/sign-out", h.signOut)
	auth.Post("/forgot-password", h.forgotPassword)
	auth.Post("/reset-password", h.resetPassword)

	app.Patch("/api/profile", h.updateProfile)

	return app
}

// clientIP stores the request's client IP on the user context for the audit
// recorder.
func clientIP() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.SetUserContext(audit.ContextWithIP(c.UserContext(), c.IP()))
		return c.Next()
	}
}

// requestMetadata is the JSON shape stored in Event.Metadata for http_request events.
type requestMetadata struct {
	Method     string `json:"method"`
	Path       string `json:"path"`
	StatusCode int    `json:"status_code"`
	DurationMs int64  `json:"duration_ms"`
	ClientIP   string `json:"client_ip"`
}

// requestTelemetry emits a telemetry event after each request. Best-effort:
// failures are logged and do not fail the request. Health checks are skipped.
func requestTelemetry(emitter telemetry.EventEmitter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if emitter == nil || c.Path() == "/healthz" {
			return err
		}
		meta := requestMetadata{
			Method:     c.Method(),
			Path:       c.Path(),
			StatusCode: c.Response().StatusCode(),
			DurationMs: time.Since(start).Milliseconds(),
			ClientIP:   c.IP(),
		}
		payload, merr := json.Marshal(meta)
		if merr != nil {
			return err
		}
		telemetry.EmitAsync(emitter, c.UserContext(), &telemetry.Event{
			ID:        uuid.New().String(),
			SessionID: c.Get(sessionHeader),
			EventType: "http_request",
			Source:    "server",
			Metadata:  payload,
			CreatedAt: time.Now().UTC(),
		})
		return err
	}
}
