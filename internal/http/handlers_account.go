package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	domainauth "github.com/wavechat/wavechat-api/internal/domain/auth"
)

// VerificationServiceInterface defines the email verification operations.
type VerificationServiceInterface interface {
	Request(ctx context.Context, email string) error
	Confirm(ctx context.Context, tokenValue string) (*domainauth.Session, error)
}

// PasswordRecoveryServiceInterface defines the password reset operations.
type PasswordRecoveryServiceInterface interface {
	Request(ctx context.Context, email string) error
	Reset(ctx context.Context, tokenValue, newPassword string) error
}

// AccountHandlers provides HTTP handlers for email verification and
// password recovery.
type AccountHandlers struct {
	Verification VerificationServiceInterface
	Recovery     PasswordRecoveryServiceInterface
	CookieDomain string
	Logger       *slog.Logger
}

type emailRequest struct {
	Email string `json:"email"`
}

// RequestVerification re-sends the verification mail for an account.
// POST /api/auth/verify/request.
func (h *AccountHandlers) RequestVerification(w http.ResponseWriter, r *http.Request) {
	var in emailRequest
	if !DecodeJSON(w, r, &in) {
		return
	}
	if in.Email == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_email",
			Err:     errors.New("email is required"),
		})
		return
	}

	if err := h.Verification.Request(r.Context(), in.Email); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]string{
		"message": "verification email sent",
	})
}

// ConfirmVerification consumes a verification token and signs the user in.
// POST /api/auth/verify.
func (h *AccountHandlers) ConfirmVerification(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Token string `json:"token"`
	}
	if !DecodeJSON(w, r, &in) {
		return
	}
	if in.Token == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_token",
			Err:     errors.New("token is required"),
		})
		return
	}

	session, err := h.Verification.Confirm(r.Context(), in.Token)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	setSessionCookie(w, r, h.CookieDomain, session)
	WriteJSON(w, http.StatusOK, sessionPayload(session))
}

// RequestPasswordReset issues and mails a reset token.
// POST /api/auth/password-reset.
func (h *AccountHandlers) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var in emailRequest
	if !DecodeJSON(w, r, &in) {
		return
	}
	if in.Email == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_email",
			Err:     errors.New("email is required"),
		})
		return
	}

	if err := h.Recovery.Request(r.Context(), in.Email); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]string{
		"message": "password reset email sent",
	})
}

// CompletePasswordReset sets a new password using a mailed reset token.
// POST /api/auth/password-reset/{token}.
func (h *AccountHandlers) CompletePasswordReset(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if token == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_token",
			Err:     errors.New("token is required"),
		})
		return
	}

	var in struct {
		Password string `json:"password"`
	}
	if !DecodeJSON(w, r, &in) {
		return
	}

	if err := h.Recovery.Reset(r.Context(), token, in.Password); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"message": "password updated, you can sign in now",
	})
}
