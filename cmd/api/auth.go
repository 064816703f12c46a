package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kiwis93160/POS-OUIOUI/internal/service"
)

var ErrInvalidPin = errors.New("invalid pin")

type LoginRequest struct {
	Pin string `json:"pin" validate:"required,min=4,max=12"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	Nom   string `json:"nom"`
}

type SaveRolesRequest struct {
	// the admin PIN is re-checked even on an authenticated session,
	// like the admin screens gate themselves
	AdminPin string              `json:"admin_pin" validate:"required"`
	Roles    []service.RoleInput `json:"roles" validate:"required,dive"`
}

// loginHandler godoc
//
//	@Summary		Authenticate with a role PIN
//	@Description	Resolves the PIN to a role, opens the session and returns a bearer token
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"PIN"
//	@Success		200		{object}	LoginResponse
//	@Failure		401		{object}	map[string]string
//	@Router			/auth/login [post]
func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	role, err := app.store.Login(r.Context(), req.Pin)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if role == nil {
		app.unauthorizedResponse(w, r, ErrInvalidPin)
		return
	}

	claims := jwt.MapClaims{
		"role": role.ID,
		"exp":  time.Now().Add(12 * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(app.config.jwtSecret))
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	resp := LoginResponse{
		Token: signed,
		Role:  role.ID,
		Nom:   role.Nom,
	}

	if err := app.jsonRespone(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.store.Logout(); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, map[string]string{"status": "logged out"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// saveRolesHandler godoc
//
//	@Summary		Replace the role set
//	@Description	Requires the admin PIN; upserts every role with PINs hashed before storage
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SaveRolesRequest	true	"Admin PIN and roles"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	map[string]string
//	@Failure		401		{object}	map[string]string
//	@Router			/auth/roles [put]
func (app *application) saveRolesHandler(w http.ResponseWriter, r *http.Request) {
	var req SaveRolesRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ok, err := app.authService.AuthenticateAdmin(r.Context(), req.AdminPin)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if !ok {
		app.unauthorizedResponse(w, r, ErrInvalidPin)
		return
	}

	err = app.store.Do(r.Context(), func(ctx context.Context) error {
		return app.authService.SaveRoles(ctx, req.Roles)
	})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, map[string]string{"status": "saved"}); err != nil {
		app.internalServerError(w, r, err)
	}
}
