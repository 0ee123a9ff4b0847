package api

import (
	"net/http"

	"github.com/dom/reader/internal/api/handlers"
	"github.com/dom/reader/internal/api/middleware"
	"github.com/dom/reader/internal/config"
	"github.com/dom/reader/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

func NewRouter(services *service.Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS(cfg.CORSAllowedOrigin))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	authHandler := handlers.NewAuthHandler(services.Auth)
	userHandler := handlers.NewUserHandler(services.User)
	readBookHandler := handlers.NewReadBookHandler(services.ReadBook)
	bookHandler := handlers.NewBookHandler(services.BookSearch)

	r.Route("/api", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/ForgotPassword", authHandler.ForgotPassword)
			r.Post("/ResendEmailConfirmation", authHandler.ResendEmailConfirmation)
			r.Post("/ResetPassword", authHandler.ResetPassword)
			r.Post("/ConfirmEmail", authHandler.ConfirmEmail)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", userHandler.Me)
				r.Put("/ChangePassword", userHandler.ChangePassword)
				r.Put("/preferences", userHandler.UpdatePreferences)
			})

			r.Route("/readbooks", func(r chi.Router) {
				r.Get("/", readBookHandler.List)
				r.Post("/Create", readBookHandler.Create)
				r.Put("/Update", readBookHandler.Update)
				r.Get("/{id}", readBookHandler.Get)
				r.Delete("/{id}", readBookHandler.Delete)
			})

			r.Get("/books/search", bookHandler.Search)
		})
	})

	return r
}
