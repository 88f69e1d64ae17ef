package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"maroctour/internal/pkg/messages"
	"maroctour/internal/pkg/response"
	"maroctour/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

const refreshCookieName = "refresh_token"

type CookieConfig struct {
	Secure   bool
	SameSite string
	Path     string
	MaxAge   time.Duration
}

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
	cookie  CookieConfig
}

func NewHandler(service *Service, cookie CookieConfig) *Handler {
	return &Handler{service: service, cookie: cookie}
}

// SignUp registers a client, or a pending partner with as_partner.
// @Summary		Sign up
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		body	body	SignUpInput	true	"payload"
// @Success		201	{object}	SignUpResult
// @Failure		400	{object}	map[string]interface{}
// @Failure		409	{object}	map[string]interface{}
// @Router		/auth/signup [post]
func (h *Handler) SignUp(c *gin.Context) {
	var req SignUpInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", messages.ErrRequiredFields)
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", messages.ErrFormValidation, errs)
		return
	}

	result, err := h.service.SignUp(c.Request.Context(), req, clientMeta(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	if result.Session != nil {
		h.setRefreshCookie(c, result.Session.RefreshToken)
	}
	response.Success(c, http.StatusCreated, gin.H{
		"user_id":               result.UserID,
		"confirmation_required": result.ConfirmationRequired,
		"session":               result.Session,
		"message":               messages.AuthRegisterSuccess,
	})
}

// SignIn opens a password session.
// @Summary		Sign in
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		body	body	SignInRequest	true	"payload"
// @Success		200	{object}	Session
// @Failure		401	{object}	map[string]interface{}
// @Failure		423	{object}	map[string]interface{}
// @Router		/auth/signin [post]
func (h *Handler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", messages.ErrRequiredFields)
		return
	}

	session, err := h.service.SignIn(c.Request.Context(), req.Email, req.Password, clientMeta(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeSession(c, session, messages.AuthLoginSuccess)
}

// MagicLink mails a passwordless sign-in link.
// @Summary		Request magic link
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		body	body	EmailRequest	true	"payload"
// @Success		200	{object}	LinkRequestResult
// @Router		/auth/magic-link [post]
func (h *Handler) MagicLink(c *gin.Context) {
	h.linkRequest(c, h.service.RequestMagicLink)
}

// Resend re-sends the signup confirmation link.
// @Summary		Resend confirmation
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		body	body	EmailRequest	true	"payload"
// @Success		200	{object}	LinkRequestResult
// @Failure		429	{object}	map[string]interface{}
// @Router		/auth/resend [post]
func (h *Handler) Resend(c *gin.Context) {
	h.linkRequest(c, h.service.ResendConfirmation)
}

// Recover mails a password reset link.
// @Summary		Request password reset
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		body	body	EmailRequest	true	"payload"
// @Success		200	{object}	LinkRequestResult
// @Router		/auth/recover [post]
func (h *Handler) Recover(c *gin.Context) {
	h.linkRequest(c, h.service.RequestPasswordReset)
}

// Verify exchanges an emailed token for a session.
// @Summary		Verify one-time token
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		body	body	VerifyRequest	true	"payload"
// @Success		200	{object}	Session
// @Failure		400	{object}	map[string]interface{}
// @Router		/auth/verify [post]
func (h *Handler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", messages.ErrRequiredFields)
		return
	}

	session, err := h.service.VerifyOTP(c.Request.Context(), req.Token, req.Type, clientMeta(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeSession(c, session, messages.AuthLoginSuccess)
}

// ResetPassword sets a new password from a recovery token.
// @Summary		Reset password
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		body	body	ResetPasswordRequest	true	"payload"
// @Success		200	{object}	map[string]interface{}
// @Router		/auth/reset-password [post]
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", messages.ErrRequiredFields)
		return
	}
	if err := h.service.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": messages.AuthPasswordUpdated})
}

// Refresh rotates the refresh cookie and returns a new access token.
// @Summary		Refresh token
// @Tags		Auth
// @Produce		json
// @Success		200	{object}	Session
// @Failure		401	{object}	map[string]interface{}
// @Router		/auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	refreshRaw, err := c.Cookie(refreshCookieName)
	if err != nil || strings.TrimSpace(refreshRaw) == "" {
		response.CustomError(c, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", messages.ErrSessionExpired)
		return
	}

	session, err := h.service.Refresh(c.Request.Context(), refreshRaw, clientMeta(c))
	if err != nil {
		if errors.Is(err, ErrRefreshTokenReused) || errors.Is(err, ErrInvalidRefreshToken) {
			h.clearRefreshCookie(c)
		}
		h.writeError(c, err)
		return
	}
	h.writeSession(c, session, "")
}

// SignOut revokes the refresh token and clears the cookie.
// @Summary		Sign out
// @Tags		Auth
// @Success		204	"No Content"
// @Router		/auth/signout [post]
func (h *Handler) SignOut(c *gin.Context) {
	refreshRaw, err := c.Cookie(refreshCookieName)
	if err == nil && strings.TrimSpace(refreshRaw) != "" {
		if err := h.service.SignOut(c.Request.Context(), refreshRaw); err != nil {
			_ = c.Error(err)
			response.CustomError(c, http.StatusInternalServerError, "SIGNOUT_FAILED", messages.ErrDefault)
			return
		}
	}
	h.clearRefreshCookie(c)
	c.Status(http.StatusNoContent)
}

// OAuthStart returns the provider authorization URL.
// @Summary		Start OAuth sign-in
// @Tags		Auth
// @Produce		json
// @Param		provider	path	string	true	"provider"
// @Param		role		query	string	false	"client or partner"
// @Success		200	{object}	map[string]interface{}
// @Router		/auth/oauth/{provider} [get]
func (h *Handler) OAuthStart(c *gin.Context) {
	url, err := h.service.StartOAuth(c.Request.Context(), c.Param("provider"), c.Query("role"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"url": url})
}

// OAuthCallback completes the provider round trip.
// @Summary		OAuth callback
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		body	body	OAuthCallbackRequest	true	"payload"
// @Success		200	{object}	Session
// @Router		/auth/oauth/callback [post]
func (h *Handler) OAuthCallback(c *gin.Context) {
	var req OAuthCallbackRequest
	if err := c.ShouldBind(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", messages.AuthGoogleLoginError)
		return
	}

	session, err := h.service.CompleteOAuth(c.Request.Context(), req.State, req.Code, clientMeta(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeSession(c, session, messages.AuthLoginSuccess)
}

// UpdatePassword changes the caller's password.
// @Summary		Update password
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Security	BearerAuth
// @Param		body	body	UpdatePasswordRequest	true	"payload"
// @Success		200	{object}	map[string]interface{}
// @Router		/auth/password [put]
func (h *Handler) UpdatePassword(c *gin.Context) {
	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", messages.ErrRequiredFields)
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		response.CustomError(c, http.StatusBadRequest, "PASSWORD_MISMATCH", messages.AuthPasswordIncorrect)
		return
	}

	err := h.service.UpdatePassword(c.Request.Context(), c.GetString("user_id"), req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.CustomError(c, http.StatusBadRequest, "PASSWORD_INCORRECT", messages.AuthPasswordIncorrect)
			return
		}
		h.writeError(c, err)
		return
	}
	h.clearRefreshCookie(c)
	response.Success(c, http.StatusOK, gin.H{"message": messages.AuthPasswordUpdated})
}

// UpdateEmail starts an email change for the caller.
// @Summary		Update email
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Security	BearerAuth
// @Param		body	body	UpdateEmailRequest	true	"payload"
// @Success		200	{object}	map[string]interface{}
// @Router		/auth/email [put]
func (h *Handler) UpdateEmail(c *gin.Context) {
	var req UpdateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", messages.ErrRequiredFields)
		return
	}

	result, err := h.service.UpdateEmail(c.Request.Context(), c.GetString("user_id"), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.CustomError(c, http.StatusBadRequest, "PASSWORD_INCORRECT", messages.AuthPasswordIncorrect)
			return
		}
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": result.Status, "message": messages.AuthEmailChangeSent})
}

// Invite creates an account for someone else (admin).
// @Summary		Invite user
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Security	BearerAuth
// @Param		body	body	InviteInput	true	"payload"
// @Success		201	{object}	map[string]interface{}
// @Router		/auth/invite [post]
func (h *Handler) Invite(c *gin.Context) {
	var req InviteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", messages.ErrRequiredFields)
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", messages.ErrFormValidation, errs)
		return
	}

	p, err := h.service.InviteUser(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"profile": p, "message": messages.AuthInviteSent})
}

func (h *Handler) linkRequest(c *gin.Context, send func(ctx context.Context, email string) (*LinkRequestResult, error)) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", messages.ErrInvalidEmail)
		return
	}

	result, err := send(c.Request.Context(), req.Email)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": result.Status, "message": messages.AuthLinkSent})
}

func (h *Handler) writeSession(c *gin.Context, session *Session, message string) {
	h.setRefreshCookie(c, session.RefreshToken)
	body := gin.H{"session": session}
	if message != "" {
		body["message"] = message
	}
	response.Success(c, http.StatusOK, body)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		response.CustomError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", messages.AuthInvalidCredentials)
	case errors.Is(err, ErrEmailAlreadyExists):
		response.CustomError(c, http.StatusConflict, "EMAIL_EXISTS", messages.AuthEmailExists)
	case errors.Is(err, ErrWeakPassword):
		response.CustomError(c, http.StatusBadRequest, "WEAK_PASSWORD", messages.AuthWeakPassword)
	case errors.Is(err, ErrInvalidEmail):
		response.CustomError(c, http.StatusBadRequest, "INVALID_EMAIL", messages.ErrInvalidEmail)
	case errors.Is(err, ErrRateLimitExceeded):
		response.CustomError(c, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", messages.ErrTooManyRequest)
	case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrInvalidOTPType):
		response.CustomError(c, http.StatusBadRequest, "INVALID_TOKEN", messages.AuthInvalidLink)
	case errors.Is(err, ErrAccountLocked):
		response.CustomError(c, http.StatusLocked, "ACCOUNT_LOCKED", messages.AuthAccountLocked)
	case errors.Is(err, ErrEmailNotConfirmed):
		response.CustomError(c, http.StatusForbidden, "EMAIL_NOT_CONFIRMED", messages.AuthEmailNotConfirmed)
	case errors.Is(err, ErrInvalidRefreshToken):
		response.CustomError(c, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", messages.ErrSessionExpired)
	case errors.Is(err, ErrRefreshTokenReused):
		response.CustomError(c, http.StatusUnauthorized, "REFRESH_TOKEN_REUSED", messages.ErrSessionExpired)
	case errors.Is(err, ErrUserNotFound):
		response.CustomError(c, http.StatusNotFound, "USER_NOT_FOUND", messages.ErrNotFound)
	case errors.Is(err, ErrUnsupportedProvider):
		response.CustomError(c, http.StatusBadRequest, "UNSUPPORTED_PROVIDER", messages.AuthGoogleLoginError)
	case errors.Is(err, ErrOAuthExchange):
		response.CustomError(c, http.StatusBadGateway, "OAUTH_FAILED", messages.AuthGoogleLoginError)
	case errors.Is(err, ErrInvalidRole):
		response.CustomError(c, http.StatusBadRequest, "INVALID_ROLE", messages.ErrFormValidation)
	case errors.Is(err, ErrSameEmail):
		response.CustomError(c, http.StatusBadRequest, "SAME_EMAIL", messages.ErrFormValidation)
	default:
		_ = c.Error(err)
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", messages.ErrDefault)
	}
}

func (h *Handler) setRefreshCookie(c *gin.Context, raw string) {
	if raw == "" {
		return
	}
	c.SetSameSite(parseSameSite(h.cookie.SameSite))
	c.SetCookie(refreshCookieName, raw, int(h.cookie.MaxAge/time.Second), h.cookie.Path, "", h.cookie.Secure, true)
}

func (h *Handler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(parseSameSite(h.cookie.SameSite))
	c.SetCookie(refreshCookieName, "", -1, h.cookie.Path, "", h.cookie.Secure, true)
}

func parseSameSite(v string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "none":
		return http.SameSiteNoneMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteLaxMode
	}
}

func clientMeta(c *gin.Context) ClientMeta {
	return ClientMeta{UserAgent: c.Request.UserAgent(), IP: c.ClientIP()}
}
