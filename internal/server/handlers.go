package server

import (
	"github.com/gofiber/fiber/v2"

	accountdomain "account-orchestrator/internal/account/domain"
	"account-orchestrator/internal/flow"
	profiledomain "account-orchestrator/internal/profile/domain"
)

type handlers struct {
	svcs Services
}

type signUpRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

func (h *handlers) signUp(c *fiber.Ctx) error {
	var req signUpRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	draft := &accountdomain.Draft{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	}
	outcome, err := h.svcs.Registrar.Register(c.UserContext(), draft)
	if err != nil {
		return writeError(c, err)
	}
	return writeOutcome(c, outcome)
}

type verifyRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

func (h *handlers) verifyOTP(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	sess, err := h.svcs.Verifier.Verify(c.UserContext(), req.Email, req.Token)
	if err != nil {
		return writeError(c, err)
	}
	return writeSession(c, sess, flow.StepProtected)
}

type resendRequest struct {
	Email string `json:"email"`
}

func (h *handlers) resendOTP(c *fiber.Ctx) error {
	var req resendRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	outcome, err := h.svcs.Resends.RequestResend(c.UserContext(), req.Email)
	if err != nil {
		return writeError(c, err)
	}
	return writeOutcome(c, outcome)
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handlers) signIn(c *fiber.Ctx) error {
	var req signInRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	sess, err := h.svcs.Sessions.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return writeSession(c, sess, flow.StepProtected)
}

func (h *handlers) signOut(c *fiber.Ctx) error {
	outcome, err := h.svcs.Sessions.SignOut(c.UserContext(), c.Get(sessionHeader))
	if err != nil {
		return writeError(c, err)
	}
	return writeOutcome(c, outcome)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (h *handlers) forgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	outcome, err := h.svcs.Sessions.RequestPasswordReset(c.UserContext(), req.Email)
	if err != nil {
		return writeError(c, err)
	}
	return writeOutcome(c, outcome)
}

type resetPasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (h *handlers) resetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	outcome, err := h.svcs.Sessions.CompleteReset(c.UserContext(), c.Get(sessionHeader), req.Password, req.ConfirmPassword)
	if err != nil {
		return writeError(c, err)
	}
	return writeOutcome(c, outcome)
}

func (h *handlers) updateProfile(c *fiber.Ctx) error {
	var patch profiledomain.Patch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest(c, "malformed request body")
	}
	sess, err := h.svcs.Profile.Apply(c.UserContext(), c.Get(sessionHeader), &patch)
	if err != nil {
		return writeError(c, err)
	}
	return writeSession(c, sess, flow.StepNone)
}
