package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/kiwis93160/POS-OUIOUI/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidID = errors.New("invalid ID format")
)

type CreateCommandeRequest struct {
	TableID  string `json:"table_id" validate:"required"`
	Couverts int    `json:"couverts" validate:"required,min=1"`
}

type UpdateCommandeRequest struct {
	Items    []domain.CommandeItem `json:"items"`
	Couverts *int                  `json:"couverts" validate:"omitempty,min=1"`
}

type SubmitTakeawayRequest struct {
	Items    []domain.CommandeItem   `json:"items" validate:"required,min=1"`
	Customer domain.TakeawayCustomer `json:"customer" validate:"required"`
}

// transitionError maps lifecycle failures onto http statuses.
func (app *application) transitionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		app.notFoundError(w, r, err)
	case errors.Is(err, domain.ErrTableOccupied),
		errors.Is(err, domain.ErrCommandeNotOpen),
		errors.Is(err, domain.ErrCommandeNotEmpty),
		errors.Is(err, domain.ErrCommandeNotFinalized),
		errors.Is(err, domain.ErrKitchenStateInvalid),
		errors.Is(err, domain.ErrNotPendingValidation):
		app.conflictResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}

func commandeIDParam(r *http.Request) (primitive.ObjectID, error) {
	idStr := chi.URLParam(r, "commande_id")
	if idStr == "" {
		return primitive.NilObjectID, ErrInvalidID
	}
	return primitive.ObjectIDFromHex(idStr)
}

// createCommandeHandler godoc
//
//	@Summary		Open a commande
//	@Description	Creates a new open commande for a table
//	@Tags			commandes
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateCommandeRequest	true	"Commande request"
//	@Success		201		{object}	domain.Commande
//	@Failure		400		{object}	map[string]string
//	@Failure		409		{object}	map[string]string
//	@Failure		500		{object}	map[string]string
//	@Router			/commandes [post]
func (app *application) createCommandeHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateCommandeRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var commande *domain.Commande
	err := app.store.Do(r.Context(), func(ctx context.Context) error {
		var err error
		commande, err = app.commandeService.Create(ctx, req.TableID, req.Couverts)
		return err
	})
	if err != nil {
		app.transitionError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusCreated, commande); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getCommandeHandler godoc
//
//	@Summary		Get a commande
//	@Tags			commandes
//	@Produce		json
//	@Param			commande_id	path		string	true	"Commande ID"
//	@Success		200			{object}	domain.Commande
//	@Failure		400			{object}	map[string]string
//	@Failure		404			{object}	map[string]string
//	@Router			/commandes/{commande_id} [get]
func (app *application) getCommandeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := commandeIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	commande, err := app.commandeService.GetByID(r.Context(), id)
	if err != nil {
		app.transitionError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, commande); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateCommandeHandler godoc
//
//	@Summary		Update items or couverts
//	@Description	Replaces the item list and/or couverts wholesale; the total is recomputed server-side
//	@Tags			commandes
//	@Accept			json
//	@Produce		json
//	@Param			commande_id	path		string					true	"Commande ID"
//	@Param			request		body		UpdateCommandeRequest	true	"Update request"
//	@Success		200			{object}	map[string]string
//	@Failure		400			{object}	map[string]string
//	@Failure		404			{object}	map[string]string
//	@Failure		409			{object}	map[string]string
//	@Router			/commandes/{commande_id} [put]
func (app *application) updateCommandeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := commandeIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	var req UpdateCommandeRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.store.Do(r.Context(), func(ctx context.Context) error {
		return app.commandeService.UpdateCommande(ctx, id, req.Items, req.Couverts)
	})
	if err != nil {
		app.transitionError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, map[string]string{"status": "updated"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id primitive.ObjectID) error, status string) {
	id, err := commandeIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	err = app.store.Do(r.Context(), func(ctx context.Context) error {
		return fn(ctx, id)
	})
	if err != nil {
		app.transitionError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, map[string]string{"status": status}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// sendToKitchenHandler godoc
//
//	@Summary	Send a commande to the kitchen
//	@Tags		commandes
//	@Produce	json
//	@Param		commande_id	path		string	true	"Commande ID"
//	@Success	200			{object}	map[string]string
//	@Failure	409			{object}	map[string]string
//	@Router		/commandes/{commande_id}/send [post]
func (app *application) sendToKitchenHandler(w http.ResponseWriter, r *http.Request) {
	app.transition(w, r, app.commandeService.SendToKitchen, "recibido")
}

// markReadyHandler godoc
//
//	@Summary	Mark a commande ready
//	@Tags		commandes
//	@Produce	json
//	@Param		commande_id	path		string	true	"Commande ID"
//	@Success	200			{object}	map[string]string
//	@Failure	409			{object}	map[string]string
//	@Router		/commandes/{commande_id}/ready [post]
func (app *application) markReadyHandler(w http.ResponseWriter, r *http.Request) {
	app.transition(w, r, app.commandeService.MarkReady, "listo")
}

// acknowledgeReadyHandler godoc
//
//	@Summary	Acknowledge a ready commande
//	@Tags		commandes
//	@Produce	json
//	@Param		commande_id	path		string	true	"Commande ID"
//	@Success	200			{object}	map[string]string
//	@Failure	409			{object}	map[string]string
//	@Router		/commandes/{commande_id}/acknowledge [post]
func (app *application) acknowledgeReadyHandler(w http.ResponseWriter, r *http.Request) {
	app.transition(w, r, app.commandeService.AcknowledgeReady, "servido")
}

// finalizeCommandeHandler godoc
//
//	@Summary		Finalize a commande
//	@Description	Emits one vente per item and closes the commande, atomically
//	@Tags			commandes
//	@Produce		json
//	@Param			commande_id	path		string	true	"Commande ID"
//	@Success		200			{object}	domain.Commande
//	@Failure		404			{object}	map[string]string
//	@Failure		409			{object}	map[string]string
//	@Router			/commandes/{commande_id}/finalize [post]
func (app *application) finalizeCommandeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := commandeIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	var commande *domain.Commande
	err = app.store.Do(r.Context(), func(ctx context.Context) error {
		var err error
		commande, err = app.commandeService.Finalize(ctx, id)
		return err
	})
	if err != nil {
		app.transitionError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, commande); err != nil {
		app.internalServerError(w, r, err)
	}
}

// markPaidHandler godoc
//
//	@Summary	Mark a finalized commande as paid
//	@Tags		commandes
//	@Produce	json
//	@Param		commande_id	path		string	true	"Commande ID"
//	@Success	200			{object}	map[string]string
//	@Failure	409			{object}	map[string]string
//	@Router		/commandes/{commande_id}/pay [post]
func (app *application) markPaidHandler(w http.ResponseWriter, r *http.Request) {
	app.transition(w, r, app.commandeService.MarkPaid, "payee")
}

// cancelUnpaidHandler godoc
//
//	@Summary	Cancel a finalized, unpaid commande
//	@Tags		commandes
//	@Produce	json
//	@Param		commande_id	path		string	true	"Commande ID"
//	@Success	200			{object}	map[string]string
//	@Failure	409			{object}	map[string]string
//	@Router		/commandes/{commande_id}/cancel [post]
func (app *application) cancelUnpaidHandler(w http.ResponseWriter, r *http.Request) {
	app.transition(w, r, app.commandeService.CancelUnpaid, "annulee")
}

// cancelEmptyCommandeHandler godoc
//
//	@Summary		Cancel an empty commande
//	@Description	Hard-deletes an open commande that has no items
//	@Tags			commandes
//	@Produce		json
//	@Param			commande_id	path		string	true	"Commande ID"
//	@Success		200			{object}	map[string]string
//	@Failure		409			{object}	map[string]string
//	@Router			/commandes/{commande_id} [delete]
func (app *application) cancelEmptyCommandeHandler(w http.ResponseWriter, r *http.Request) {
	app.transition(w, r, app.commandeService.CancelEmpty, "deleted")
}

// getCommandeByTableHandler godoc
//
//	@Summary	Get the open commande for a table
//	@Tags		commandes
//	@Produce	json
//	@Param		table_id	path		string	true	"Table ID"
//	@Success	200			{object}	domain.Commande
//	@Failure	404			{object}	map[string]string
//	@Router		/tables/{table_id}/commande [get]
func (app *application) getCommandeByTableHandler(w http.ResponseWriter, r *http.Request) {
	tableID := chi.URLParam(r, "table_id")
	if tableID == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	commande := app.store.CommandeByTableID(tableID)
	if commande == nil {
		app.notFoundError(w, r, domain.ErrNotFound)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, commande); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getKitchenOrdersHandler godoc
//
//	@Summary	Kitchen display feed
//	@Tags		kitchen
//	@Produce	json
//	@Success	200	{array}	domain.Commande
//	@Router		/kitchen/orders [get]
func (app *application) getKitchenOrdersHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.jsonRespone(w, http.StatusOK, app.store.KitchenOrders()); err != nil {
		app.internalServerError(w, r, err)
	}
}

// submitTakeawayHandler godoc
//
//	@Summary		Submit a takeaway order for validation
//	@Description	Parks a raw takeaway order until staff approve it
//	@Tags			takeaway
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SubmitTakeawayRequest	true	"Takeaway submission"
//	@Success		201		{object}	domain.Commande
//	@Failure		400		{object}	map[string]string
//	@Router			/takeaway [post]
func (app *application) submitTakeawayHandler(w http.ResponseWriter, r *http.Request) {
	var req SubmitTakeawayRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var commande *domain.Commande
	err := app.store.Do(r.Context(), func(ctx context.Context) error {
		var err error
		commande, err = app.commandeService.SubmitTakeawayForValidation(ctx, req.Items, req.Customer)
		return err
	})
	if err != nil {
		app.transitionError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusCreated, commande); err != nil {
		app.internalServerError(w, r, err)
	}
}

// validateTakeawayHandler godoc
//
//	@Summary	Validate a pending takeaway order and send it to the kitchen
//	@Tags		takeaway
//	@Produce	json
//	@Param		commande_id	path		string	true	"Commande ID"
//	@Success	200			{object}	map[string]string
//	@Failure	409			{object}	map[string]string
//	@Router		/takeaway/{commande_id}/validate [post]
func (app *application) validateTakeawayHandler(w http.ResponseWriter, r *http.Request) {
	app.transition(w, r, app.commandeService.ValidateAndSendTakeaway, "en_cours")
}

// getPendingTakeawayHandler godoc
//
//	@Summary	Takeaway orders awaiting validation
//	@Tags		takeaway
//	@Produce	json
//	@Success	200	{array}	domain.Commande
//	@Router		/takeaway/pending [get]
func (app *application) getPendingTakeawayHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.jsonRespone(w, http.StatusOK, app.store.PendingTakeawayOrders()); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getReadyTakeawayHandler godoc
//
//	@Summary	Takeaway orders ready for pickup
//	@Tags		takeaway
//	@Produce	json
//	@Success	200	{array}	domain.Commande
//	@Router		/takeaway/ready [get]
func (app *application) getReadyTakeawayHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.jsonRespone(w, http.StatusOK, app.store.ReadyTakeawayOrders()); err != nil {
		app.internalServerError(w, r, err)
	}
}
