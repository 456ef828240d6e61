// Copyright (c) 2026 Eduvia. All rights reserved.
// Author: platform@eduvia.io

/*
HTTP delivery layer for account profile and administration endpoints.

This layer is strictly responsible for transport concerns (status codes,
payload validation, JSON). All member endpoints require authentication; the
administration block additionally requires the admin role.
*/
package account

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/eduvia/backend/internal/platform/apperr"
	"github.com/eduvia/backend/internal/platform/middleware"
	requestutil "github.com/eduvia/backend/internal/platform/request"
	"github.com/eduvia/backend/internal/platform/respond"
	"github.com/eduvia/backend/internal/platform/sec"
	"github.com/eduvia/backend/internal/platform/validate"
	"github.com/eduvia/backend/internal/users/auth"
	"github.com/eduvia/backend/pkg/pagination"
)

// MaxAvatarBytes bounds the decoded avatar payload (2 MiB).
const MaxAvatarBytes = 2 << 20

// # Definitions & Constructors

// Handler implements account-related HTTP endpoints.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with account-specific routes.
//
// # Endpoints
//   - GET  /me                 : Current account profile.
//   - PUT  /me                 : Update name/email.
//   - PUT  /me/password        : Change password.
//   - PUT  /me/avatar          : Replace the profile picture.
//   - GET  /                   : (admin) Paginated account list.
//   - PUT  /{accountID}/role   : (admin) Change an account's role.
//   - DELETE /{accountID}      : (admin) Remove an account.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Member endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.getProfile)
		r.Put("/me", handler.updateProfile)
		r.Put("/me/password", handler.changePassword)
		r.Put("/me/avatar", handler.updateAvatar)
	})

	// Administration endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(sec.RoleAdmin))
		r.Get("/", handler.listAccounts)
		r.Put("/{accountID}/role", handler.updateRole)
		r.Delete("/{accountID}", handler.deleteAccount)
	})

	return router
}

// # Request Payloads

type updateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type updateAvatarRequest struct {
	Avatar      string `json:"avatar"` // base64-encoded image bytes
	ContentType string `json:"content_type"`
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// # Member Handlers

/*
GetProfile returns the authenticated account's full profile.

GET /api/v1/users/me

Response:
  - 200: Account: Private profile data
  - 401: ErrUnauthorized: Not authenticated
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.accountService.GetProfile(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

/*
UpdateProfile applies partial changes to name and email.

PUT /api/v1/users/me

Request:
  - Body: updateProfileRequest (Name?, Email?)

Response:
  - 200: Account: Updated profile
  - 409: ErrConflict: Email already taken
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	if input.Name != nil {
		validator.Required(FieldName, *input.Name)
	}
	if input.Email != nil {
		validator.Required(FieldEmail, *input.Email).Email(FieldEmail, *input.Email)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.accountService.UpdateProfile(request.Context(), accountID, UpdateProfileInput{
		Name:  input.Name,
		Email: input.Email,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

/*
ChangePassword rotates the authenticated account's password.

PUT /api/v1/users/me/password

Request:
  - Body: changePasswordRequest (CurrentPassword, NewPassword)

Response:
  - 200: Success: Password changed
  - 401: ErrUnauthorized: Current password incorrect
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldCurrentPassword, input.CurrentPassword).
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, auth.MinPasswordLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.accountService.ChangePassword(request.Context(), accountID, input.CurrentPassword, input.NewPassword)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password changed successfully",
	})
}

/*
UpdateAvatar replaces the authenticated account's profile picture.

PUT /api/v1/users/me/avatar

Description: The image travels base64-encoded in the JSON body and is
re-hosted on the external asset store; the previous asset is removed.

Request:
  - Body: updateAvatarRequest (Avatar, ContentType)

Response:
  - 200: Account: Profile with the new avatar URL
  - 422: Unprocessable: Bad encoding or oversized image
*/
func (handler *Handler) updateAvatar(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateAvatarRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldAvatar, input.Avatar).
		Required(FieldContentType, input.ContentType).
		Custom(FieldContentType, !strings.HasPrefix(input.ContentType, "image/"), "must be an image media type")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	imageData, err := base64.StdEncoding.DecodeString(input.Avatar)
	if err != nil {
		respond.Error(writer, request, apperr.Unprocessable("Avatar payload is not valid base64"))
		return
	}

	if len(imageData) > MaxAvatarBytes {
		respond.Error(writer, request, apperr.Unprocessable("Avatar image exceeds the 2 MiB limit"))
		return
	}

	account, err := handler.accountService.UpdateAvatar(request.Context(), accountID, input.ContentType, imageData)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

// # Administration Handlers

/*
ListAccounts returns a paginated view of all accounts.

GET /api/v1/users?page=1&limit=20

Response:
  - 200: []Account + pagination meta
  - 403: ErrForbidden: Caller is not an admin
*/
func (handler *Handler) listAccounts(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	accounts, total, err := handler.accountService.ListAccounts(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, accounts, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
UpdateRole changes the role of a target account.

PUT /api/v1/users/{accountID}/role

Request:
  - Body: updateRoleRequest (Role: "user" | "admin")

Response:
  - 200: Success: Role updated
  - 422: Unprocessable: Unknown role value
*/
func (handler *Handler) updateRole(writer http.ResponseWriter, request *http.Request) {
	accountID := requestutil.Param(request, "accountID")

	var input updateRoleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldAccountID, accountID).
		UUID(FieldAccountID, accountID).
		Required(FieldRole, input.Role)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.UpdateRole(request.Context(), accountID, sec.UserRole(input.Role)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Role updated successfully",
	})
}

/*
DeleteAccount removes a target account and all its live artifacts.

DELETE /api/v1/users/{accountID}

Response:
  - 204: No Content: Account removed, session revoked, avatar cleaned up
  - 404: ErrNotFound: No such account
*/
func (handler *Handler) deleteAccount(writer http.ResponseWriter, request *http.Request) {
	accountID := requestutil.Param(request, "accountID")

	validator := &validate.Validator{}
	validator.Required(FieldAccountID, accountID).UUID(FieldAccountID, accountID)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.DeleteAccount(request.Context(), accountID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
