package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"conges/internal/domain/audit"
	"conges/internal/domain/calendar"
	"conges/internal/domain/cet"
	"conges/internal/domain/employee"
	"conges/internal/domain/leave"
	"conges/internal/domain/notifications"
	"conges/internal/domain/reports"
	"conges/internal/platform/config"
	"conges/internal/platform/db"
	"conges/internal/platform/dispatch"
	"conges/internal/platform/email"
	"conges/internal/platform/metrics"
	audithandler "conges/internal/transport/http/handlers/audit"
	authhandler "conges/internal/transport/http/handlers/auth"
	cethandler "conges/internal/transport/http/handlers/cet"
	employeehandler "conges/internal/transport/http/handlers/employees"
	holidayhandler "conges/internal/transport/http/handlers/holidays"
	leavehandler "conges/internal/transport/http/handlers/leave"
	notificationhandler "conges/internal/transport/http/handlers/notifications"
	reporthandler "conges/internal/transport/http/handlers/reports"
	"conges/internal/transport/http/middleware"
)

const maxBodyBytes = 1 << 20

func main() {
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	collector := metrics.New()

	queue := dispatch.New(cfg.DispatchQueueSize)
	queue.Start(ctx)

	employees := employee.NewStore(pool)
	holidays := calendar.NewStore(pool)
	leaveStore := leave.NewStore(pool)
	cetStore := cet.NewStore(pool)
	notificationStore := notifications.NewStore(pool)
	auditStore := audit.NewStore(pool)
	reportStore := reports.NewStore(pool)

	mailer := email.New(cfg)
	notify := notifications.NewService(notificationStore, employees, mailer, queue, cfg.EmailFrom)

	leaveService := leave.NewService(leaveStore, employees, holidays, cfg.MinAdvanceDays)
	cetService := cet.NewService(cetStore, employees)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(maxBodyBytes))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics(collector))
	}
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.With(middleware.RequireAuth, middleware.RequireFinalizer).
			Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				if err := json.NewEncoder(w).Encode(collector.Snapshot()); err != nil {
					slog.Warn("metrics encode failed", "err", err)
				}
			})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(employees, cfg).RegisterRoutes(r)
		employeehandler.NewHandler(employees, auditStore).RegisterRoutes(r)
		holidayhandler.NewHandler(holidays, auditStore).RegisterRoutes(r)
		leavehandler.NewHandler(leaveService, leaveStore, employees, notify, auditStore).RegisterRoutes(r)
		cethandler.NewHandler(cetService, cetStore, notify, auditStore).RegisterRoutes(r)
		notificationhandler.NewHandler(notificationStore).RegisterRoutes(r)
		reporthandler.NewHandler(reportStore, auditStore).RegisterRoutes(r)
		audithandler.NewHandler(auditStore).RegisterRoutes(r)
	})

	slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
