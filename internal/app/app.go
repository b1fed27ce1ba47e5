// Package app assembles the engine from configuration for the binaries.
package app

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"

	"greenpark/internal/config"
	"greenpark/internal/notify"
	"greenpark/internal/repository"
	"greenpark/internal/repository/memory"
	"greenpark/internal/service"
	"greenpark/internal/utils"
)

type App struct {
	Config       *config.Config
	DB           *sql.DB
	Catalog      *service.CatalogCache
	Reservations *service.ReservationService
	Admin        *service.AdminService
	VIP          *service.VIPService
	Auth         service.AdminAuthService
	Jobs         *service.JobService
}

type stores struct {
	catalog      repository.CatalogRepository
	reservations repository.ReservationRepository
	vip          repository.VIPRepository
	staff        repository.StaffRepository
}

// OpenDB connects to PostgreSQL and checks the connection.
func OpenDB(url string) (*sql.DB, error) {
	if url == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	return db, nil
}

// New wires repositories, the notifier and every service.
func New(cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}
	var st stores
	switch cfg.Store {
	case config.StoreMemory:
		log.Println("app: using in-memory store, data is lost on exit")
		mem := memory.NewStore(cfg.Location)
		st = stores{mem.Catalog(), mem.Reservations(), mem.VIP(), mem.Staff()}
	case config.StorePostgres:
		db, err := OpenDB(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.DB = db
		st = stores{
			catalog:      repository.NewCatalogRepository(db),
			reservations: repository.NewReservationRepository(db, cfg.Location),
			vip:          repository.NewVIPRepository(db),
			staff:        repository.NewStaffRepository(db),
		}
	default:
		return nil, fmt.Errorf("unknown STORE %q", cfg.Store)
	}

	clock := utils.RealClock{}
	a.Catalog = service.NewCatalogCache(st.catalog, clock)
	a.VIP = service.NewVIPService(st.vip, clock)
	a.Reservations = service.NewReservationService(service.ReservationDeps{
		Catalog:            a.Catalog,
		CatalogRepo:        st.catalog,
		Reservations:       st.reservations,
		VIP:                a.VIP,
		Notifier:           newNotifier(cfg),
		Clock:              clock,
		Location:           cfg.Location,
		CancellationCutoff: cfg.CancellationCutoff,
	})
	a.Admin = service.NewAdminService(st.catalog, st.reservations, a.Catalog, clock)
	a.Auth = service.NewAdminAuthService(st.staff, cfg.JWTSecret, cfg.JWTExpirationHours, clock)
	a.Jobs = service.NewJobService(a.Reservations, a.Catalog)
	return a, nil
}

func newNotifier(cfg *config.Config) notify.Notifier {
	var mailer notify.Mailer
	if m := notify.NewSendGridMailer(cfg.SendGridAPIKey, cfg.SendGridFromEmail, cfg.SendGridFromName); m != nil {
		mailer = m
	}
	var texter notify.Texter
	if t := notify.NewTwilioTexter(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber); t != nil {
		texter = t
	}
	if mailer == nil && texter == nil {
		log.Println("app: no e-mail or SMS credentials, notifications disabled")
		return notify.Nop{}
	}
	return notify.NewReservationNotifier(mailer, texter, cfg.Location)
}

func (a *App) Close() {
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			log.Printf("app: closing DB: %v", err)
		}
	}
}
