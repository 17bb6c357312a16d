package main

import (
	"fmt"
	"log"
	"net/http"

	"event-registration-platform/internal/config"
	"event-registration-platform/internal/database"
	"event-registration-platform/internal/handlers"
	"event-registration-platform/internal/middleware"
	"event-registration-platform/internal/repositories"
	"event-registration-platform/internal/services"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize database connection
	db, err := database.NewConnection(database.Config{
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()
	log.Println("Database connection established successfully")

	if err := db.RunMigrations(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Create session store for caller identity
	sessionStore := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30, // 30 days
		HttpOnly: true,
		Secure:   cfg.Server.Env == "production",
		SameSite: http.SameSiteLaxMode,
	}

	// Initialize repositories
	eventRepo := repositories.NewEventRepository(db.DB)
	ticketRepo := repositories.NewTicketRepository(db.DB)
	questionRepo := repositories.NewQuestionRepository(db.DB)
	participantRepo := repositories.NewParticipantRepository(db.DB)
	registrationRepo := repositories.NewRegistrationRepository(db.DB, ticketRepo, participantRepo)

	// Initialize services
	registrationService := services.NewRegistrationService(registrationRepo, eventRepo, ticketRepo, questionRepo)

	// Initialize handlers
	registrationHandler := handlers.NewRegistrationHandler(registrationService)

	identity := middleware.NewIdentityMiddleware(sessionStore)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.LoggingMiddleware)
	r.Use(identity.Load)

	r.Route("/api", func(r chi.Router) {
		r.Route("/registrations", func(r chi.Router) {
			r.Post("/", registrationHandler.Create)
			r.With(middleware.RequireIdentity).Get("/", registrationHandler.List)
			r.Get("/{id}", registrationHandler.Get)
			r.Post("/{id}/cancel", registrationHandler.Cancel)
			r.Patch("/{id}/status", registrationHandler.UpdateStatus)
		})

		r.Get("/events/{eventID}/registrations", registrationHandler.ListForEvent)
		r.With(middleware.RequireIdentity).Get("/admin/registrations", registrationHandler.ListAll)

		r.Post("/payments/callback", registrationHandler.PaymentCallback)
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal("Server failed:", err)
	}
}
