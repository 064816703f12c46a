// Command seed initializes an empty database with the restaurant's base
// catalog: categories, ingredients, products and their recettes, tables
// and staff roles. Collections that already hold documents are skipped,
// so the command is safe to run more than once.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kiwis93160/POS-OUIOUI/internal/domain"
	"github.com/kiwis93160/POS-OUIOUI/internal/env"
	"github.com/kiwis93160/POS-OUIOUI/internal/store/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found")
	}

	logger := zap.Must(zap.NewProduction()).Sugar()
	defer logger.Sync()

	cfg := mongo.Config{
		URI:      env.GetString("MONGO_URI", "mongodb://localhost:27017"),
		Database: env.GetString("MONGO_DATABASE", "pos_ouioui"),
		Timeout:  time.Duration(env.GetInt("MONGO_TIMEOUT_SECONDS", 10)) * time.Second,
	}

	storage, err := mongo.New(cfg)
	if err != nil {
		logger.Fatalw("failed to connect to MongoDB", "error", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		storage.Close(ctx)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := storage.CreateIndexes(ctx); err != nil {
		logger.Fatalw("failed to create indexes", "error", err)
	}

	if err := seed(ctx, storage, logger); err != nil {
		logger.Fatalw("seeding failed", "error", err)
	}

	logger.Info("base data initialized")
}

func seed(ctx context.Context, storage *mongo.Storage, logger *zap.SugaredLogger) error {
	if err := seedCollection(ctx, logger, "categories", storage, categories()); err != nil {
		return err
	}
	if err := seedCollection(ctx, logger, "ingredients", storage, ingredients()); err != nil {
		return err
	}
	if err := seedCollection(ctx, logger, "products", storage, products()); err != nil {
		return err
	}
	if err := seedCollection(ctx, logger, "recettes", storage, recettes()); err != nil {
		return err
	}
	if err := seedCollection(ctx, logger, "tables", storage, tables()); err != nil {
		return err
	}

	roles, err := roles()
	if err != nil {
		return err
	}
	return seedCollection(ctx, logger, "roles", storage, roles)
}

// seedCollection inserts docs only when the collection holds nothing
// for this restaurant.
func seedCollection(ctx context.Context, logger *zap.SugaredLogger, name string, storage *mongo.Storage, docs []interface{}) error {
	collection := storage.Database().Collection(name)

	count, err := collection.CountDocuments(ctx, bson.M{"restaurant_id": domain.RestaurantID})
	if err != nil {
		return fmt.Errorf("failed to count %s: %w", name, err)
	}
	if count > 0 {
		logger.Infow("collection already populated, skipping", "collection", name, "count", count)
		return nil
	}

	if _, err := collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to seed %s: %w", name, err)
	}

	logger.Infow("collection seeded", "collection", name, "documents", len(docs))
	return nil
}

func categories() []interface{} {
	names := map[string]string{"1": "Tacos", "2": "Accompagnements", "3": "Boissons"}
	docs := make([]interface{}, 0, len(names))
	for _, id := range []string{"1", "2", "3"} {
		docs = append(docs, domain.Categorie{ID: id, RestaurantID: domain.RestaurantID, Nom: names[id]})
	}
	return docs
}

func ingredients() []interface{} {
	base := []domain.Ingredient{
		{ID: "101", Nom: "Tortilla de maïs", Unite: "pièce", StockMinimum: 50},
		{ID: "102", Nom: "Viande de bœuf hachée", Unite: "kg", StockMinimum: 5},
		{ID: "103", Nom: "Poulet mariné", Unite: "kg", StockMinimum: 5},
		{ID: "104", Nom: "Salade iceberg", Unite: "kg", StockMinimum: 1},
		{ID: "105", Nom: "Tomate", Unite: "kg", StockMinimum: 2},
		{ID: "106", Nom: "Oignon rouge", Unite: "kg", StockMinimum: 1},
		{ID: "107", Nom: "Fromage râpé", Unite: "kg", StockMinimum: 2},
		{ID: "108", Nom: "Sauce Salsa", Unite: "L", StockMinimum: 1},
		{ID: "109", Nom: "Guacamole", Unite: "kg", StockMinimum: 1},
		{ID: "110", Nom: "Frites", Unite: "kg", StockMinimum: 10},
		{ID: "111", Nom: "Coca-Cola", Unite: "L", StockMinimum: 5},
		{ID: "112", Nom: "Jus d'orange", Unite: "L", StockMinimum: 3},
	}

	docs := make([]interface{}, 0, len(base))
	for _, ing := range base {
		ing.RestaurantID = domain.RestaurantID
		// a comfortable starting stock so the low-stock views start clean
		ing.StockActuel = ing.StockMinimum * 5
		ing.Lots = []domain.Lot{}
		docs = append(docs, ing)
	}
	return docs
}

func products() []interface{} {
	base := []domain.Produit{
		{ID: "1001", NomProduit: "Taco au Bœuf", PrixVente: 8.5, CategoriaID: "1"},
		{ID: "1002", NomProduit: "Taco au Poulet", PrixVente: 8.0, CategoriaID: "1"},
		{ID: "1003", NomProduit: "Portion de Frites", PrixVente: 3.5, CategoriaID: "2"},
		{ID: "1004", NomProduit: "Coca-Cola (33cl)", PrixVente: 2.5, CategoriaID: "3"},
		{ID: "1005", NomProduit: "Jus d'orange (25cl)", PrixVente: 3.0, CategoriaID: "3"},
	}

	docs := make([]interface{}, 0, len(base))
	for _, p := range base {
		p.RestaurantID = domain.RestaurantID
		p.Estado = domain.EstadoDisponible
		docs = append(docs, p)
	}
	return docs
}

func recettes() []interface{} {
	base := []domain.Recette{
		{ProduitID: "1001", Items: []domain.RecetteItem{
			{IngredientID: "101", QteUtilisee: 2},
			{IngredientID: "102", QteUtilisee: 0.15},
			{IngredientID: "107", QteUtilisee: 0.05},
		}},
		{ProduitID: "1002", Items: []domain.RecetteItem{
			{IngredientID: "101", QteUtilisee: 2},
			{IngredientID: "103", QteUtilisee: 0.15},
			{IngredientID: "104", QteUtilisee: 0.03},
		}},
		{ProduitID: "1003", Items: []domain.RecetteItem{
			{IngredientID: "110", QteUtilisee: 0.25},
		}},
		{ProduitID: "1004", Items: []domain.RecetteItem{
			{IngredientID: "111", QteUtilisee: 0.33},
		}},
		{ProduitID: "1005", Items: []domain.RecetteItem{
			{IngredientID: "112", QteUtilisee: 0.25},
		}},
	}

	docs := make([]interface{}, 0, len(base))
	for _, r := range base {
		r.RestaurantID = domain.RestaurantID
		docs = append(docs, r)
	}
	return docs
}

func tables() []interface{} {
	docs := make([]interface{}, 0, 11)
	for i := 1; i <= 10; i++ {
		capacite := 4
		if i%3 == 0 {
			capacite = 6
		} else if i%5 == 0 {
			capacite = 2
		}
		docs = append(docs, domain.Table{
			ID:           fmt.Sprintf("%d", i),
			RestaurantID: domain.RestaurantID,
			Nom:          fmt.Sprintf("Table %d", i),
			Capacite:     capacite,
		})
	}
	docs = append(docs, domain.Table{
		ID:           domain.TableAEmporter,
		RestaurantID: domain.RestaurantID,
		Nom:          "À emporter",
		Capacite:     99,
	})
	return docs
}

func roles() ([]interface{}, error) {
	base := []struct {
		id, nom, pin string
	}{
		{"admin", "Administrateur", "1234"},
		{"mesero", "Service en salle", "5678"},
		{"cocina", "Cuisine", "9012"},
	}

	docs := make([]interface{}, 0, len(base))
	for _, r := range base {
		hash, err := bcrypt.GenerateFromPassword([]byte(r.pin), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash pin for role %s: %w", r.id, err)
		}
		docs = append(docs, domain.Role{
			ID:           r.id,
			RestaurantID: domain.RestaurantID,
			Nom:          r.nom,
			PinHash:      string(hash),
		})
	}
	return docs, nil
}
