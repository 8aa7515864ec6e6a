package api

import (
	"github.com/gorilla/mux"

	"github.com/garnizeh/staffdir/internal/assets"
	"github.com/garnizeh/staffdir/internal/auth"
	"github.com/garnizeh/staffdir/internal/config"
	"github.com/garnizeh/staffdir/internal/directory"
)

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Directory *directory.Service
	Auth      *auth.Provider
	Assets    assets.Store
}

func SetupRoutes(cfg *config.Config, version, buildTime string, deps Deps) *mux.Router {
	r := mux.NewRouter()
	metrics := NewMetrics()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)
	r.Use(metrics.Middleware)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(deps.Auth)
	employeesHandler := NewEmployeesHandler(deps.Directory, deps.Assets, cfg.Assets.MaxUploadBytes)
	uploadsHandler := NewUploadsHandler(deps.Assets)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")
	r.HandleFunc("/uploads/{key}", uploadsHandler.Serve).Methods("GET")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddleware(deps.Auth))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")

	// Employees endpoints
	apiV1.HandleFunc("/employees", employeesHandler.List).Methods("GET")
	apiV1.HandleFunc("/employees", employeesHandler.Create).Methods("POST")
	apiV1.HandleFunc("/employees/export", employeesHandler.Export).Methods("GET")
	apiV1.HandleFunc("/employees/{id}", employeesHandler.Get).Methods("GET")
	apiV1.HandleFunc("/employees/{id}", employeesHandler.Update).Methods("PUT")
	apiV1.HandleFunc("/employees/{id}/active", employeesHandler.ToggleActive).Methods("PUT")
	apiV1.HandleFunc("/employees/{id}", employeesHandler.Delete).Methods("DELETE")

	return r
}
