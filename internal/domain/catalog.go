package domain

import "time"

// RestaurantID scopes every document; multi-tenancy is out of scope.
const RestaurantID = "ouiouitacos_main"

const (
	EstadoDisponible   = "disponible"
	EstadoNoDisponible = "no_disponible"
)

// Lot is one purchased batch of an ingredient. Costing is a weighted
// average over lots with remaining quantity.
type Lot struct {
	QteInitiale  float64   `bson:"qte_initiale" json:"qte_initiale"`
	QteRestante  float64   `bson:"qte_restante" json:"qte_restante"`
	PrixUnitaire float64   `bson:"prix_unitaire" json:"prix_unitaire"`
	DateAchat    time.Time `bson:"date_achat" json:"date_achat"`
}

type Ingredient struct {
	ID                string  `bson:"_id,omitempty" json:"id"`
	RestaurantID      string  `bson:"restaurant_id" json:"restaurant_id"`
	Nom               string  `bson:"nom" json:"nom"`
	Unite             string  `bson:"unite" json:"unite"`
	StockMinimum      float64 `bson:"stock_minimum" json:"stock_minimum"`
	StockActuel       float64 `bson:"stock_actuel" json:"stock_actuel"`
	PrixUnitaireMoyen float64 `bson:"prix_unitaire_moyen" json:"prix_unitaire_moyen"`
	Lots              []Lot   `bson:"lots" json:"lots"`
}

type Produit struct {
	ID           string  `bson:"_id,omitempty" json:"id"`
	RestaurantID string  `bson:"restaurant_id" json:"restaurant_id"`
	NomProduit   string  `bson:"nom_produit" json:"nom_produit"`
	PrixVente    float64 `bson:"prix_vente" json:"prix_vente"`
	CategoriaID  string  `bson:"categoria_id" json:"categoria_id"`
	Estado       string  `bson:"estado" json:"estado"`
	Image        []byte  `bson:"image,omitempty" json:"image,omitempty"`
}

type RecetteItem struct {
	IngredientID string  `bson:"ingredient_id" json:"ingredient_id"`
	QteUtilisee  float64 `bson:"qte_utilisee" json:"qte_utilisee"`
}

// Recette shares its document id with its Produit. The two are created
// and deleted together.
type Recette struct {
	ProduitID    string        `bson:"_id,omitempty" json:"produit_id"`
	RestaurantID string        `bson:"restaurant_id" json:"restaurant_id"`
	Items        []RecetteItem `bson:"items" json:"items"`
}

type Categorie struct {
	ID           string `bson:"_id,omitempty" json:"id"`
	RestaurantID string `bson:"restaurant_id" json:"restaurant_id"`
	Nom          string `bson:"nom" json:"nom"`
}

type Table struct {
	ID           string `bson:"_id,omitempty" json:"id"`
	RestaurantID string `bson:"restaurant_id" json:"restaurant_id"`
	Nom          string `bson:"nom" json:"nom"`
	Capacite     int    `bson:"capacite" json:"capacite"`
}

// TableAEmporter is the pseudo-table takeaway commandes are bound to.
const TableAEmporter = "99"

type Role struct {
	ID           string   `bson:"_id,omitempty" json:"id"`
	RestaurantID string   `bson:"restaurant_id" json:"restaurant_id"`
	Nom          string   `bson:"nom" json:"nom"`
	PinHash      string   `bson:"pin_hash" json:"-"`
	Permissions  []string `bson:"permissions,omitempty" json:"permissions,omitempty"`
}
