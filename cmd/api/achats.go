package main

import (
	"context"
	"net/http"
)

type RecordAchatRequest struct {
	IngredientID string  `json:"ingredient_id" validate:"required"`
	Quantite     float64 `json:"quantite" validate:"required,gt=0"`
	PrixTotal    float64 `json:"prix_total" validate:"min=0"`
}

// recordAchatHandler godoc
//
//	@Summary		Record an ingredient purchase
//	@Description	Appends a lot to the ingredient and recomputes its stock and average unit cost
//	@Tags			inventory
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RecordAchatRequest	true	"Purchase"
//	@Success		201		{object}	map[string]string
//	@Failure		400		{object}	map[string]string
//	@Failure		404		{object}	map[string]string
//	@Router			/achats [post]
func (app *application) recordAchatHandler(w http.ResponseWriter, r *http.Request) {
	var req RecordAchatRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err := app.store.Do(r.Context(), func(ctx context.Context) error {
		return app.achatService.RecordAchat(ctx, req.IngredientID, req.Quantite, req.PrixTotal)
	})
	if err != nil {
		app.transitionError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusCreated, map[string]string{"status": "recorded"}); err != nil {
		app.internalServerError(w, r, err)
	}
}
