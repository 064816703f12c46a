package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/kiwis93160/POS-OUIOUI/internal/domain"
)

type IngredientRequest struct {
	Nom          string  `json:"nom" validate:"required"`
	Unite        string  `json:"unite" validate:"required"`
	StockMinimum float64 `json:"stock_minimum" validate:"min=0"`
}

type ProduitRequest struct {
	NomProduit  string               `json:"nom_produit" validate:"required"`
	PrixVente   float64              `json:"prix_vente" validate:"required,min=0"`
	CategoriaID string               `json:"categoria_id"`
	Estado      string               `json:"estado" validate:"omitempty,oneof=disponible no_disponible"`
	Items       []domain.RecetteItem `json:"items"`
	Image       []byte               `json:"image,omitempty"`
}

type UpdateEstadoRequest struct {
	Estado string `json:"estado" validate:"required,oneof=disponible no_disponible"`
}

type RecetteRequest struct {
	Items []domain.RecetteItem `json:"items" validate:"required"`
}

type CategorieRequest struct {
	Nom string `json:"nom" validate:"required"`
}

func (app *application) listIngredientsHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.jsonRespone(w, http.StatusOK, app.store.Ingredients()); err != nil {
		app.internalServerError(w, r, err)
	}
}

// createIngredientHandler godoc
//
//	@Summary	Create an ingredient
//	@Tags		catalog
//	@Accept		json
//	@Produce	json
//	@Param		request	body		IngredientRequest	true	"Ingredient"
//	@Success	201		{object}	domain.Ingredient
//	@Failure	400		{object}	map[string]string
//	@Router		/ingredients [post]
func (app *application) createIngredientHandler(w http.ResponseWriter, r *http.Request) {
	var req IngredientRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ingredient := &domain.Ingredient{
		Nom:          req.Nom,
		Unite:        req.Unite,
		StockMinimum: req.StockMinimum,
	}

	err := app.store.Do(r.Context(), func(ctx context.Context) error {
		return app.store.Gateway().Ingredients.Create(ctx, ingredient)
	})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusCreated, ingredient); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) updateIngredientHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "ingredient_id")
	if id == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	var req IngredientRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ingredient := &domain.Ingredient{
		ID:           id,
		Nom:          req.Nom,
		Unite:        req.Unite,
		StockMinimum: req.StockMinimum,
	}

	err := app.store.Do(r.Context(), func(ctx context.Context) error {
		return app.store.Gateway().Ingredients.Update(ctx, ingredient)
	})
	if err != nil {
		app.transitionError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, map[string]string{"status": "updated"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) deleteIngredientHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "ingredient_id")
	if id == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	err := app.store.Do(r.Context(), func(ctx context.Context) error {
		return app.store.Gateway().Ingredients.Delete(ctx, id)
	})
	if err != nil {
		app.transitionError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, map[string]string{"status": "deleted"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) listProduitsHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.jsonRespone(w, http.StatusOK, app.store.Produits()); err != nil {
		app.internalServerError(w, r, err)
	}
}

// createProduitHandler godoc
//
//	@Summary		Create a produit and its recette
//	@Description	The produit and its recette are written atomically
//	@Tags			catalog
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ProduitRequest	true	"Produit with recette items"
//	@Success		201		{object}	domain.Produit
//	@Failure		400		{object}	map[string]string
//	@Router			/products [post]
func (app *application) createProduitHandler(w http.ResponseWriter, r *http.Request) {
	var req ProduitRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	estado := req.Estado
	if estado == "" {
		estado = domain.EstadoDisponible
	}

	produit := &domain.Produit{
		NomProduit:  req.NomProduit,
		PrixVente:   req.PrixVente,
		CategoriaID: req.CategoriaID,
		Estado:      estado,
		Image:       req.Image,
	}

	err := app.store.Do(r.Context(), func(ctx context.Context) error {
		return app.store.Gateway().Produits.CreateWithRecette(ctx, produit, req.Items)
	})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusCreated, produit); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) updateProduitHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "product_id")
	if id == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	var req ProduitRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	estado := req.Estado
	if estado == "" {
		estado = domain.EstadoDisponible
	}

	produit := &domain.Produit{
		ID:          id,
		NomProduit:  req.NomProduit,
		PrixVente:   req.PrixVente,
		CategoriaID: req.CategoriaID,
		Estado:      estado,
		Image:       req.Image,
	}

	err := app.store.Do(r.Context(), func(ctx context.Context) error {
		return app.store.Gateway().Produits.Update(ctx, produit)
	})
	if err != nil {
		app.transitionError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, map[string]string{"status": "updated"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateProduitEstadoHandler godoc
//
//	@Summary	Update produit availability
//	@Tags		catalog
//	@Accept		json
//	@Produce	json
//	@Param		product_id	path		string				true	"Produit ID"
//	@Param		request		body		UpdateEstadoRequest	true	"Estado update"
//	@Success	200			{object}	map[string]string
//	@Failure	404			{object}	map[string]string
//	@Router		/products/{product_id}/status [patch]
func (app *application) updateProduitEstadoHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "product_id")
	if id == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	var req UpdateEstadoRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err := app.store.Do(r.Context(), func(ctx context.Context) error {
		return app.store.Gateway().Produits.UpdateEstado(ctx, id, req.Estado)
	})
	if err != nil {
		app.transitionError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, map[string]string{"status": "updated"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteProduitHandler godoc
//
//	@Summary		Delete a produit
//	@Description	Removes the produit and its recette atomically
//	@Tags			catalog
//	@Produce		json
//	@Param			product_id	path		string	true	"Produit ID"
//	@Success		200			{object}	map[string]string
//	@Failure		404			{object}	map[string]string
//	@Router			/products/{product_id} [delete]
func (app *application) deleteProduitHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "product_id")
	if id == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	err := app.store.Do(r.Context(), func(ctx context.Context) error {
		return app.store.Gateway().Produits.DeleteWithRecette(ctx, id)
	})
	if err != nil {
		app.transitionError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, map[string]string{"status": "deleted"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getProduitCostHandler godoc
//
//	@Summary	Cost of producing one unit of a produit
//	@Tags		catalog
//	@Produce	json
//	@Param		product_id	path		string	true	"Produit ID"
//	@Success	200			{object}	map[string]float64
//	@Router		/products/{product_id}/cost [get]
func (app *application) getProduitCostHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "product_id")
	if id == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	cost := app.store.ProduitCost(id)
	if err := app.jsonRespone(w, http.StatusOK, map[string]float64{"cost": cost}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) updateRecetteHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "product_id")
	if id == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	var req RecetteRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err := app.store.Do(r.Context(), func(ctx context.Context) error {
		return app.store.Gateway().Recettes.ReplaceItems(ctx, id, req.Items)
	})
	if err != nil {
		app.transitionError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, map[string]string{"status": "updated"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getLowStockHandler godoc
//
//	@Summary	Produits with low-stock ingredients
//	@Tags		catalog
//	@Produce	json
//	@Success	200	{object}	map[string][]string
//	@Router		/stock/low [get]
func (app *application) getLowStockHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.jsonRespone(w, http.StatusOK, app.store.LowStockInfo()); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.jsonRespone(w, http.StatusOK, app.store.Categories()); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) createCategorieHandler(w http.ResponseWriter, r *http.Request) {
	var req CategorieRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	categorie := &domain.Categorie{Nom: req.Nom}
	err := app.store.Do(r.Context(), func(ctx context.Context) error {
		return app.store.Gateway().Categories.Create(ctx, categorie)
	})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusCreated, categorie); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) deleteCategorieHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "categorie_id")
	if id == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	err := app.store.Do(r.Context(), func(ctx context.Context) error {
		return app.store.Gateway().Categories.Delete(ctx, id)
	})
	if err != nil {
		app.transitionError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, map[string]string{"status": "deleted"}); err != nil {
		app.internalServerError(w, r, err)
	}
}
