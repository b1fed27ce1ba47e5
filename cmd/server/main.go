package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/robfig/cron/v3"

	"greenpark/internal/api"
	"greenpark/internal/app"
	"greenpark/internal/config"
	"greenpark/internal/payment"
)

func main() {
	cfg := config.Load()
	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := a.Catalog.Refresh(ctx); err != nil {
		log.Printf("Initial catalog load failed, will retry on demand: %v", err)
	}

	c := cron.New()
	_, err = c.AddFunc(cfg.CatalogRefreshCron, func() {
		if err := a.Jobs.RefreshCatalog(ctx); err != nil {
			log.Printf("Error running catalog refresh job: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Invalid CATALOG_REFRESH_CRON %q: %v", cfg.CatalogRefreshCron, err)
	}
	_, err = c.AddFunc(cfg.OverdueReportCron, func() {
		if _, err := a.Jobs.ReportOverdue(ctx); err != nil {
			log.Printf("Error running overdue report job: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Invalid OVERDUE_REPORT_CRON %q: %v", cfg.OverdueReportCron, err)
	}
	c.Start()

	var checkout payment.Checkout
	if sc := payment.NewStripeCheckout(cfg.StripeSecretKey, cfg.StripeCurrency, cfg.StripeSuccessURL, cfg.StripeCancelURL); sc != nil {
		checkout = sc
	} else {
		log.Println("STRIPE_SECRET_KEY not set, reservations are created without checkout")
	}
	var stripeHandler *api.StripeWebhookHandler
	if cfg.StripeWebhookSecret != "" {
		stripeHandler = api.NewStripeWebhookHandler(cfg.StripeWebhookSecret, a.Reservations)
	}
	if cfg.JWTSecret == "" {
		log.Println("JWT_SECRET not set, staff endpoints will reject every request")
	}

	router := api.NewRouter(api.Handlers{
		User:      api.NewUserReservationHandler(a.Reservations, a.Admin, checkout),
		Admin:     api.NewAdminHandler(a.Reservations, a.Admin, a.VIP),
		AdminAuth: api.NewAdminAuthHandler(a.Auth),
		Stripe:    stripeHandler,
	}, cfg.JWTSecret, cfg.AllowedOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.LoggingHandler(os.Stdout, router),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	<-c.Stop().Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	log.Println("Server stopped")
}
