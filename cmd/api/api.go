package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/kiwis93160/POS-OUIOUI/docs"
	"github.com/kiwis93160/POS-OUIOUI/internal/cache"
	"github.com/kiwis93160/POS-OUIOUI/internal/queue"
	"github.com/kiwis93160/POS-OUIOUI/internal/ratelimiter"
	"github.com/kiwis93160/POS-OUIOUI/internal/service"
	"github.com/kiwis93160/POS-OUIOUI/internal/store/mongo"
	"github.com/kiwis93160/POS-OUIOUI/internal/worker"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config          config
	logger          *zap.SugaredLogger
	rateLimiter     ratelimiter.Limiter
	storage         *mongo.Storage
	broker          queue.Broker
	store           *cache.Store
	commandeService *service.CommandeService
	achatService    *service.AchatService
	authService     *service.AuthService
	reportService   *service.ReportService
	kitchenWorker   *worker.KitchenEventsWorker
}

type config struct {
	addr        string
	env         string
	apiURL      string
	jwtSecret   string
	sessionFile string
	rateLimiter ratelimiter.Config
	mongo       mongoConfig
	rabbitMQ    rabbitMQConfig
}

type mongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type rabbitMQConfig struct {
	URL           string
	MaxRetries    int
	RetryDelay    time.Duration
	PrefetchCount int
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.RateLimiterMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)

		r.Post("/auth/login", app.loginHandler)

		// customers submit takeaway orders without a staff session
		r.Post("/takeaway", app.submitTakeawayHandler)

		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.Group(func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)

			r.Post("/auth/logout", app.logoutHandler)
			r.Put("/auth/roles", app.saveRolesHandler)

			r.Post("/commandes", app.createCommandeHandler)
			r.Get("/commandes/{commande_id}", app.getCommandeHandler)
			r.Put("/commandes/{commande_id}", app.updateCommandeHandler)
			r.Delete("/commandes/{commande_id}", app.cancelEmptyCommandeHandler)
			r.Post("/commandes/{commande_id}/send", app.sendToKitchenHandler)
			r.Post("/commandes/{commande_id}/ready", app.markReadyHandler)
			r.Post("/commandes/{commande_id}/acknowledge", app.acknowledgeReadyHandler)
			r.Post("/commandes/{commande_id}/finalize", app.finalizeCommandeHandler)
			r.Post("/commandes/{commande_id}/pay", app.markPaidHandler)
			r.Post("/commandes/{commande_id}/cancel", app.cancelUnpaidHandler)
			r.Get("/tables/{table_id}/commande", app.getCommandeByTableHandler)

			r.Get("/kitchen/orders", app.getKitchenOrdersHandler)
			r.Get("/takeaway/pending", app.getPendingTakeawayHandler)
			r.Get("/takeaway/ready", app.getReadyTakeawayHandler)
			r.Post("/takeaway/{commande_id}/validate", app.validateTakeawayHandler)

			r.Get("/ingredients", app.listIngredientsHandler)
			r.Post("/ingredients", app.createIngredientHandler)
			r.Put("/ingredients/{ingredient_id}", app.updateIngredientHandler)
			r.Delete("/ingredients/{ingredient_id}", app.deleteIngredientHandler)
			r.Post("/achats", app.recordAchatHandler)

			r.Get("/products", app.listProduitsHandler)
			r.Post("/products", app.createProduitHandler)
			r.Put("/products/{product_id}", app.updateProduitHandler)
			r.Patch("/products/{product_id}/status", app.updateProduitEstadoHandler)
			r.Delete("/products/{product_id}", app.deleteProduitHandler)
			r.Get("/products/{product_id}/cost", app.getProduitCostHandler)
			r.Put("/recettes/{product_id}", app.updateRecetteHandler)
			r.Get("/stock/low", app.getLowStockHandler)

			r.Get("/categories", app.listCategoriesHandler)
			r.Post("/categories", app.createCategorieHandler)
			r.Delete("/categories/{categorie_id}", app.deleteCategorieHandler)

			r.Get("/tables", app.listTablesHandler)
			r.Post("/tables", app.createTableHandler)
			r.Put("/tables/{table_id}", app.updateTableHandler)
			r.Delete("/tables/{table_id}", app.deleteTableHandler)

			r.Post("/reports/daily", app.requestDailyReportHandler)
		})
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	// docs
	docs.SwaggerInfo.Title = "POS OuiOui"
	docs.SwaggerInfo.Description = "Point-of-sale API for OuiOui Tacos"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/api/v1"

	if app.kitchenWorker != nil {
		if err := app.kitchenWorker.Start(); err != nil {
			return fmt.Errorf("failed to start kitchen events worker: %w", err)
		}
	}

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		if app.kitchenWorker != nil {
			app.kitchenWorker.Stop()
		}

		if app.storage != nil {
			if err := app.storage.Close(ctx); err != nil {
				app.logger.Errorw("error closing MongoDB", "error", err)
			} else {
				app.logger.Info("MongoDB connection closed gracefully")
			}
		}

		if app.broker != nil {
			if err := app.broker.Close(); err != nil {
				app.logger.Errorw("error closing RabbitMQ", "error", err)
			} else {
				app.logger.Info("RabbitMQ connection closed gracefully")
			}
		}

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server have started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
