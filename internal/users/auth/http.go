// Copyright (c) 2026 Eduvia. All rights reserved.
// Author: platform@eduvia.io

/*
HTTP delivery layer for the authentication lifecycle.

The handler acts as a thin mediation layer between the web and the domain
service:
  - Protocol: Standard RESTful JSON interface.
  - Security: Session cookie injection and expiry, enumeration masking.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes,
headers, cookies, JSON).
*/
package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eduvia/backend/internal/platform/apperr"
	"github.com/eduvia/backend/internal/platform/constants"
	"github.com/eduvia/backend/internal/platform/middleware"
	requestutil "github.com/eduvia/backend/internal/platform/request"
	"github.com/eduvia/backend/internal/platform/respond"
	"github.com/eduvia/backend/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages everything related to the account lifecycle entry
// points (Registration, Activation, Login, Refresh, Password Reset).
type Handler struct {
	authService *Service

	// secureCookies marks session cookies Secure; enabled in production.
	secureCookies bool
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service, secureCookies bool) *Handler {
	return &Handler{authService: service, secureCookies: secureCookies}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register        : Issues an activation ticket (nothing persisted).
//   - POST /activate        : Creates the account from ticket + code.
//   - POST /login           : Authenticates and sets session cookies.
//   - POST /social-auth     : Upsert-then-login for provider identities.
//   - POST /refresh         : Rotates the session token pair.
//   - POST /logout          : Revokes the session and clears cookies.
//   - POST /forgot-password : Emails a reset link.
//   - POST /reset-password  : Applies a new password from a reset ticket.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/activate", handler.activate)
	router.Post("/login", handler.login)
	router.Post("/social-auth", handler.socialAuth)
	router.Post("/refresh", handler.refresh)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type activateRequest struct {
	ActivationToken string `json:"activation_token"`
	ActivationCode  string `json:"activation_code"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type socialAuthRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// # Handlers

/*
Register issues an activation ticket for a new account.

POST /api/v1/auth/register

Description: Validates input and emails a 4-digit activation code. No
account is created yet; the pending account travels inside the returned
signed ticket.

Request:
  - Body: registerRequest (Name, Email, Password)

Response:
  - 201: ActivationToken: Signed ticket to present together with the code
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Email already registered
  - 502: DeliveryFailed: Activation email could not be sent
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		MinLen(FieldName, input.Name, MinNameLength).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, MinPasswordLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	ticket, err := handler.authService.Register(request.Context(), RegisterInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]any{
		FieldActivationToken: ticket.Token,
		FieldMessage:         "Please check your email " + input.Email + " to activate your account",
	})
}

/*
Activate creates the account from an activation ticket and its emailed code.

POST /api/v1/auth/activate

Request:
  - Body: activateRequest (ActivationToken, ActivationCode)

Response:
  - 201: Account: Created account profile
  - 401: ErrUnauthorized: Invalid ticket or wrong code
  - 409: ErrConflict: Email was activated concurrently
*/
func (handler *Handler) activate(writer http.ResponseWriter, request *http.Request) {
	var input activateRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldActivationToken, input.ActivationToken).
		Required(FieldActivationCode, input.ActivationCode).
		ActivationCode(FieldActivationCode, input.ActivationCode)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.authService.Activate(request.Context(), input.ActivationToken, input.ActivationCode)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, account)
}

/*
Login authenticates an account and establishes a session.

POST /api/v1/auth/login

Description: Verifies credentials, writes the session cache entry, and sets
both session cookies.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: Session: Access token and account profile
  - 401: ErrUnauthorized: Invalid credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookies(writer, session)

	respond.OK(writer, map[string]any{
		FieldAccessToken: session.AccessToken,
		FieldUser:        session.Account,
	})
}

/*
SocialAuth signs in (or enrolls) an identity asserted by an external provider.

POST /api/v1/auth/social-auth

Description: Idempotent upsert — unknown emails get an account with a random,
never-communicated password; known emails just get a fresh session.

Request:
  - Body: socialAuthRequest (Name, Email, AvatarURL)

Response:
  - 200: Session: Access token and account profile
*/
func (handler *Handler) socialAuth(writer http.ResponseWriter, request *http.Request) {
	var input socialAuthRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.SocialAuth(request.Context(), SocialAuthInput{
		Name:      input.Name,
		Email:     input.Email,
		AvatarURL: input.AvatarURL,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookies(writer, session)

	respond.OK(writer, map[string]any{
		FieldAccessToken: session.AccessToken,
		FieldUser:        session.Account,
	})
}

/*
Refresh rotates the session token pair using the refresh token cookie.

POST /api/v1/auth/refresh

Description: Requires both a cryptographically valid refresh token AND a
live session cache entry; issues new cookies and extends the session window.

Response:
  - 200: Session: New access token
  - 401: ErrUnauthorized: Missing/invalid token or revoked session
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing refresh token in cookies"))
		return
	}

	session, err := handler.authService.Refresh(request.Context(), cookie.Value)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookies(writer, session)

	respond.OK(writer, map[string]any{
		FieldAccessToken: session.AccessToken,
	})
}

/*
Logout revokes the session and clears both session cookies.

POST /api/v1/auth/logout

Description: Deletes the session cache entry (instant revocation) and
expires the cookies. Idempotent.

Response:
  - 204: No Content: Session terminated
  - 401: ErrUnauthorized: Not authenticated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), accountID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.clearSessionCookies(writer)

	respond.NoContent(writer)
}

/*
ForgotPassword initiates the password recovery flow.

POST /api/v1/auth/forgot-password

Description: Emails a reset link if the account exists. The response is the
same either way so the endpoint cannot be used to enumerate accounts; only a
delivery outage surfaces as an error.

Request:
  - Body: forgotPasswordRequest (Email)

Response:
  - 200: Success: Generic acknowledgement
  - 502: DeliveryFailed: Reset email could not be sent
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	_, err := handler.authService.ForgotPassword(request.Context(), input.Email)

	// Mask NotFound: an unknown email gets the same acknowledgement as a
	// known one. Every other failure (delivery outage, storage) surfaces.
	if err != nil {
		if appError := apperr.As(err); appError == nil || appError.HTTPStatus != http.StatusNotFound {
			respond.Error(writer, request, err)
			return
		}
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "If this email is registered, a reset link has been sent.",
	})
}

/*
ResetPassword completes the password recovery flow.

POST /api/v1/auth/reset-password

Request:
  - Body: resetPasswordRequest (Token, NewPassword)

Response:
  - 200: Success: Password updated
  - 401: ErrUnauthorized: Invalid, expired, revoked, or superseded token
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldToken, input.Token).
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, MinPasswordLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPassword(request.Context(), input.Token, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password updated successfully",
	})
}

// # Cookie Management

// setSessionCookies writes both session cookies with MaxAge matching each
// token's TTL.
func (handler *Handler) setSessionCookies(writer http.ResponseWriter, session *Session) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AccessTokenCookieName,
		Value:    session.AccessToken,
		Path:     constants.SessionCookiePath,
		MaxAge:   int(session.AccessTokenTTL.Seconds()),
		Secure:   handler.secureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    session.RefreshToken,
		Path:     constants.SessionCookiePath,
		MaxAge:   int(session.RefreshTokenTTL.Seconds()),
		Secure:   handler.secureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookies expires both session cookies immediately.
func (handler *Handler) clearSessionCookies(writer http.ResponseWriter) {
	for _, name := range []string{constants.AccessTokenCookieName, constants.RefreshTokenCookieName} {
		http.SetCookie(writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     constants.SessionCookiePath,
			MaxAge:   -1,
			Secure:   handler.secureCookies,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
