package domain

import "errors"

var (
	ErrNotFound             = errors.New("document not found")
	ErrTableOccupied        = errors.New("table already has an open commande")
	ErrCommandeNotOpen      = errors.New("commande is not open")
	ErrCommandeNotEmpty     = errors.New("commande still has items")
	ErrCommandeNotFinalized = errors.New("commande is not finalized")
	ErrKitchenStateInvalid  = errors.New("invalid kitchen state for this transition")
	ErrNotPendingValidation = errors.New("commande is not pending validation")
)
