package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lingkod/internal/db"
	"lingkod/internal/models"
)

// Routes constructs the chi router containing all API endpoints.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	allowed := a.config.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))
	r.Use(httprate.Limit(a.config.RateLimit, a.config.RateLimitWindow))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", a.handleReady)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/register", a.handleRegister)
		r.Post("/auth/login", a.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(a.requireSession)

			r.Post("/auth/logout", a.handleLogout)
			r.Get("/auth/me", a.handleMe)

			r.Get("/projects", a.handleListProjects)
			r.Post("/projects", a.handleCreateProject)
			r.Get("/projects/pending", a.handlePendingProjects)
			r.Get("/projects/{id}", a.handleGetProject)
			r.Patch("/projects/{id}", a.handleUpdateProject)
			r.Post("/projects/{id}/submit", a.handleSubmitProject)
			r.Post("/projects/{id}/approve", a.handleApproveProject)

			r.Get("/projects/{id}/tasks", a.handleListTasks)
			r.Post("/projects/{id}/tasks", a.handleCreateTask)
			r.Patch("/tasks/{id}", a.handleUpdateTask)

			r.Post("/documents", a.handleRegisterDocument)
			r.Get("/documents/pending", a.handlePendingDocuments)
			r.Post("/documents/{id}/review", a.handleReviewDocument)
			r.Get("/documents/{id}/download", a.handleDownloadDocument)

			r.Get("/events", a.handleListEvents)
			r.Post("/events", a.handleCreateEvent)
			r.Patch("/events/{id}", a.handleUpdateEvent)

			r.Get("/announcements", a.handleListAnnouncements)
			r.Post("/announcements", a.handlePublishAnnouncement)

			r.Get("/activity", a.handleListActivity)

			r.Group(func(r chi.Router) {
				r.Use(a.requireRole(models.RoleAdmin))
				r.Get("/users", a.handleListUsers)
				r.Get("/activity/export", a.handleExportActivity)
			})
			r.Get("/users/{id}", a.handleGetUser)
		})
	})

	return r
}

func (a *API) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := db.Ping(r.Context(), a.store.Pool); err != nil {
		respondError(w, http.StatusServiceUnavailable, kindInternal, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
