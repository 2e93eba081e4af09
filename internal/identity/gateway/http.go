package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	accountdomain "account-orchestrator/internal/account/domain"
	identitydomain "account-orchestrator/internal/identity/domain"
	profiledomain "account-orchestrator/internal/profile/domain"
)

const defaultTimeout = 15 * time.Second

// HTTPGateway implements IdentityGateway against a GoTrue-style auth API
// (signup/verify/resend/token/logout/recover/user endpoints).
type HTTPGateway struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewHTTPGateway returns a gateway for the auth API at baseURL. apiKey is
// sent on every request; timeout bounds each provider call (0 means the
// default 15s).
func NewHTTPGateway(baseURL, apiKey string, timeout time.Duration) *HTTPGateway {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPGateway{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// rejection is a non-2xx provider response before taxonomy mapping.
type rejection struct {
	status int
	code   string
	msg    string
}

func (e *rejection) Error() string {
	return fmt.Sprintf("provider rejected request: status=%d %s", e.status, e.msg)
}

// expired reports whether the provider explicitly signalled code expiry.
func (e *rejection) expired() bool {
	return e.code == "otp_expired" || strings.Contains(e.code, "expired")
}

// authFailure reports whether the status is a credential-class rejection
// rather than an upstream fault.
func (e *rejection) authFailure() bool {
	return e.status == http.StatusBadRequest ||
		e.status == http.StatusUnauthorized ||
		e.status == http.StatusForbidden ||
		e.status == http.StatusUnprocessableEntity
}

// providerErrorBody is the error body shape the auth API returns. Different
// endpoints use different field names; all are tried.
type providerErrorBody struct {
	Code             string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e *providerErrorBody) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return "identity provider request failed"
}

// tokenResponse is the session payload returned by verify and sign-in.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	User        struct {
		ID               string `json:"id"`
		Email            string `json:"email"`
		EmailConfirmedAt string `json:"email_confirmed_at"`
		UserMetadata     struct {
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
			Phone     string `json:"phone"`
		} `json:"user_metadata"`
	} `json:"user"`
}

func (g *HTTPGateway) Register(ctx context.Context, draft *accountdomain.Draft) error {
	body := map[string]interface{}{
		"email":    draft.Email,
		"password": draft.Password,
		"phone":    draft.Phone,
		"data": map[string]string{
			"first_name": draft.FirstName,
			"last_name":  draft.LastName,
			"phone":      draft.Phone,
		},
	}
	_, err := g.do(ctx, http.MethodPost, "/signup", "", body)
	return asProviderError(err)
}

func (g *HTTPGateway) VerifyCode(ctx context.Context, email, code string, purpose VerifyPurpose) (*ProviderSession, error) {
	body := map[string]string{
		"type":  string(purpose),
		"email": email,
		"token": code,
	}
	raw, err := g.do(ctx, http.MethodPost, "/verify", "", body)
	if err != nil {
		var rej *rejection
		if errors.As(err, &rej) {
			if rej.expired() {
				return nil, identitydomain.ErrCodeExpired
			}
			if rej.authFailure() {
				// Wrong code and unknown email look identical on purpose.
				return nil, identitydomain.ErrInvalidCode
			}
			return nil, identitydomain.NewProviderError(rej.msg)
		}
		return nil, err
	}
	return parseSession(raw)
}

func (g *HTTPGateway) ResendCode(ctx context.Context, email string) error {
	body := map[string]string{
		"type":  string(PurposeRegistration),
		"email": email,
	}
	_, err := g.do(ctx, http.MethodPost, "/resend", "", body)
	return asProviderError(err)
}

func (g *HTTPGateway) SignIn(ctx context.Context, email, password string) (*ProviderSession, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}
	raw, err := g.do(ctx, http.MethodPost, "/token?grant_type=password", "", body)
	if err != nil {
		var rej *rejection
		if errors.As(err, &rej) {
			if rej.authFailure() {
				return nil, identitydomain.ErrInvalidCredentials
			}
			return nil, identitydomain.NewProviderError(rej.msg)
		}
		return nil, err
	}
	return parseSession(raw)
}

func (g *HTTPGateway) SignOut(ctx context.Context, token string) error {
	_, err := g.do(ctx, http.MethodPost, "/logout", token, nil)
	return asProviderError(err)
}

func (g *HTTPGateway) RequestPasswordReset(ctx context.Context, email string) error {
	_, err := g.do(ctx, http.MethodPost, "/recover", "", map[string]string{"email": email})
	return asProviderError(err)
}

func (g *HTTPGateway) CompleteReset(ctx context.Context, token, newPassword string) error {
	_, err := g.do(ctx, http.MethodPut, "/user", token, map[string]string{"password": newPassword})
	return asProviderError(err)
}

func (g *HTTPGateway) UpdateProfile(ctx context.Context, token string, patch *profiledomain.Patch) error {
	_, err := g.do(ctx, http.MethodPut, "/user", token, map[string]interface{}{"data": patch})
	return asProviderError(err)
}

// do issues one provider request and returns the response body on 2xx.
// Timeouts surface as ErrProviderTimeout; transport faults as *ProviderError;
// non-2xx responses as *rejection for the caller to map.
func (g *HTTPGateway) do(ctx context.Context, method, path, bearer string, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.BaseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.APIKey != "" {
		req.Header.Set("apikey", g.APIKey)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, identitydomain.ErrProviderTimeout
		}
		return nil, identitydomain.NewProviderError(fmt.Sprintf("identity provider unreachable: %v", err))
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, identitydomain.NewProviderError("reading identity provider response failed")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var pe providerErrorBody
		_ = json.Unmarshal(raw, &pe)
		return nil, &rejection{status: resp.StatusCode, code: pe.Code, msg: pe.text()}
	}
	return raw, nil
}

// asProviderError converts an unmapped rejection into a *ProviderError with
// the upstream message passed through verbatim. Other errors are returned
// unchanged.
func asProviderError(err error) error {
	var rej *rejection
	if errors.As(err, &rej) {
		return identitydomain.NewProviderError(rej.msg)
	}
	return err
}

func parseSession(raw []byte) (*ProviderSession, error) {
	var tr tokenResponse
	if err := json.Unmarshal(raw, &tr); err != nil {
		return nil, identitydomain.NewProviderError("malformed identity provider response")
	}
	ps := &ProviderSession{
		AccessToken: tr.AccessToken,
		UserID:      tr.User.ID,
		Email:       tr.User.Email,
		FirstName:   tr.User.UserMetadata.FirstName,
		LastName:    tr.User.UserMetadata.LastName,
		Phone:       tr.User.UserMetadata.Phone,
		IssuedAt:    time.Now().UTC(),
	}
	if tr.ExpiresIn > 0 {
		ps.ExpiresAt = ps.IssuedAt.Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	if tr.User.EmailConfirmedAt != "" {
		if t, err := time.Parse(time.RFC3339, tr.User.EmailConfirmedAt); err == nil {
			ps.EmailVerifiedAt = &t
		}
	}
	return ps, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
