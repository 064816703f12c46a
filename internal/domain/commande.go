package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type StatutCommande string

const (
	StatutEnCours             StatutCommande = "en_cours"
	StatutTerminee            StatutCommande = "terminee"
	StatutPayee               StatutCommande = "payee"
	StatutAnnulee             StatutCommande = "annulee"
	StatutPendienteValidacion StatutCommande = "pendiente_validacion"
)

type EstadoCocina string

const (
	CocinaNone     EstadoCocina = ""
	CocinaRecibido EstadoCocina = "recibido"
	CocinaListo    EstadoCocina = "listo"
	CocinaServido  EstadoCocina = "servido"
)

// CommandeItem captures the product at order time. A later price change
// on the live Produit must not alter a historical total.
type CommandeItem struct {
	Produit  Produit `bson:"produit" json:"produit"`
	Quantite int     `bson:"quantite" json:"quantite"`
	Note     string  `bson:"note,omitempty" json:"note,omitempty"`
}

type TakeawayCustomer struct {
	Nom       string `bson:"nom" json:"nom"`
	Telephone string `bson:"telephone,omitempty" json:"telephone,omitempty"`
	Adresse   string `bson:"adresse,omitempty" json:"adresse,omitempty"`
}

type Commande struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RestaurantID     string             `bson:"restaurant_id" json:"restaurant_id"`
	TableID          string             `bson:"table_id" json:"table_id"`
	Couverts         int                `bson:"couverts" json:"couverts"`
	Items            []CommandeItem     `bson:"items" json:"items"`
	Total            float64            `bson:"total" json:"total"`
	Statut           StatutCommande     `bson:"statut" json:"statut"`
	EstadoCocina     EstadoCocina       `bson:"estado_cocina,omitempty" json:"estado_cocina,omitempty"`
	Numero           int                `bson:"numero" json:"numero"`
	DateCreation     time.Time          `bson:"date_creation" json:"date_creation"`
	DateEnvoiCuisine *time.Time         `bson:"date_envoi_cuisine,omitempty" json:"date_envoi_cuisine,omitempty"`
	DateListoCuisine *time.Time         `bson:"date_listo_cuisine,omitempty" json:"date_listo_cuisine,omitempty"`
	Customer         *TakeawayCustomer  `bson:"customer,omitempty" json:"customer,omitempty"`
}

func (c *Commande) IsOpen() bool {
	return c.Statut == StatutEnCours
}

func (c *Commande) IsTakeaway() bool {
	return c.TableID == TableAEmporter
}

// ComputeTotal derives the commande total from the stored item
// snapshots. The total is never trusted from caller input.
func ComputeTotal(items []CommandeItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Produit.PrixVente * float64(item.Quantite)
	}
	return total
}

type Vente struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RestaurantID   string             `bson:"restaurant_id" json:"restaurant_id"`
	CommandeID     primitive.ObjectID `bson:"commande_id" json:"commande_id"`
	ProduitID      string             `bson:"produit_id" json:"produit_id"`
	Quantite       int                `bson:"quantite" json:"quantite"`
	PrixTotalVente float64            `bson:"prix_total_vente" json:"prix_total_vente"`
	DateVente      time.Time          `bson:"date_vente" json:"date_vente"`
}

type Achat struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RestaurantID string             `bson:"restaurant_id" json:"restaurant_id"`
	IngredientID string             `bson:"ingredient_id" json:"ingredient_id"`
	Quantite     float64            `bson:"quantite" json:"quantite"`
	PrixTotal    float64            `bson:"prix_total" json:"prix_total"`
	DateAchat    time.Time          `bson:"date_achat" json:"date_achat"`
}
