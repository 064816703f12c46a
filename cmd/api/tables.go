package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/kiwis93160/POS-OUIOUI/internal/domain"
)

type TableRequest struct {
	ID       string `json:"id"`
	Nom      string `json:"nom" validate:"required"`
	Capacite int    `json:"capacite" validate:"min=0"`
}

func (app *application) listTablesHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.jsonRespone(w, http.StatusOK, app.store.Tables()); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) createTableHandler(w http.ResponseWriter, r *http.Request) {
	var req TableRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	table := &domain.Table{
		ID:       req.ID,
		Nom:      req.Nom,
		Capacite: req.Capacite,
	}

	err := app.store.Do(r.Context(), func(ctx context.Context) error {
		return app.store.Gateway().Tables.Create(ctx, table)
	})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusCreated, table); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) updateTableHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "table_id")
	if id == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	var req TableRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	table := &domain.Table{
		ID:       id,
		Nom:      req.Nom,
		Capacite: req.Capacite,
	}

	err := app.store.Do(r.Context(), func(ctx context.Context) error {
		return app.store.Gateway().Tables.Update(ctx, table)
	})
	if err != nil {
		app.transitionError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, map[string]string{"status": "updated"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) deleteTableHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "table_id")
	if id == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	err := app.store.Do(r.Context(), func(ctx context.Context) error {
		return app.store.Gateway().Tables.Delete(ctx, id)
	})
	if err != nil {
		app.transitionError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, map[string]string{"status": "deleted"}); err != nil {
		app.internalServerError(w, r, err)
	}
}
