// Package inventory derives costing and stock information from the
// catalog collections. Every function is pure: missing references
// degrade to zero or omission, never to an error.
package inventory

import "github.com/kiwis93160/POS-OUIOUI/internal/domain"

// AverageUnitCost is the unit price of an ingredient weighted by the
// remaining quantity of each lot. Ingredients with nothing left in
// stock cost 0.
func AverageUnitCost(ing domain.Ingredient) float64 {
	var totalQty, totalValue float64
	for _, lot := range ing.Lots {
		if lot.QteRestante <= 0 {
			continue
		}
		totalQty += lot.QteRestante
		totalValue += lot.QteRestante * lot.PrixUnitaire
	}
	if totalQty == 0 {
		return 0
	}
	return totalValue / totalQty
}

// IsLowStock is inclusive: stock exactly at the minimum counts as low.
func IsLowStock(ing domain.Ingredient) bool {
	return ing.StockActuel <= ing.StockMinimum
}

// ProductCost prices a recette against the current ingredient costing.
// A nil recette or an orphaned recette item contributes 0.
func ProductCost(recette *domain.Recette, ingredients []domain.Ingredient) float64 {
	if recette == nil {
		return 0
	}
	byID := make(map[string]domain.Ingredient, len(ingredients))
	for _, ing := range ingredients {
		byID[ing.ID] = ing
	}
	var cost float64
	for _, item := range recette.Items {
		ing, ok := byID[item.IngredientID]
		if !ok {
			continue
		}
		cost += AverageUnitCost(ing) * item.QteUtilisee
	}
	return cost
}

// LowStockByProduct maps each produit to the names of its recette
// ingredients currently low on stock. Products whose ingredients are
// all above minimum are omitted.
func LowStockByProduct(produits []domain.Produit, recettes []domain.Recette, ingredients []domain.Ingredient) map[string][]string {
	ingByID := make(map[string]domain.Ingredient, len(ingredients))
	for _, ing := range ingredients {
		ingByID[ing.ID] = ing
	}
	recByProduit := make(map[string]domain.Recette, len(recettes))
	for _, rec := range recettes {
		recByProduit[rec.ProduitID] = rec
	}

	result := make(map[string][]string)
	for _, produit := range produits {
		recette, ok := recByProduit[produit.ID]
		if !ok {
			continue
		}
		var low []string
		for _, item := range recette.Items {
			ing, ok := ingByID[item.IngredientID]
			if !ok {
				continue
			}
			if IsLowStock(ing) {
				low = append(low, ing.Nom)
			}
		}
		if len(low) > 0 {
			result[produit.ID] = low
		}
	}
	return result
}
