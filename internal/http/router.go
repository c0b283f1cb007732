package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"docvault/internal/handlers"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Documents handlers.DocumentService
	Prober    handlers.AvailabilityProber
	UploadDir string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// Add chi middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(CORS)
	r.Use(LoggerMiddleware)

	r.Route("/files", func(r chi.Router) {
		r.Method(http.MethodPost, "/upload", handlers.NewUploadHandler(deps.Documents))
		r.Method(http.MethodGet, "/", handlers.NewListFilesHandler(deps.Documents))
		r.Method(http.MethodGet, "/search", handlers.NewSearchHandler(deps.Documents))
		r.Method(http.MethodPost, "/context-search", handlers.NewContextSearchHandler(deps.Documents))
		r.Method(http.MethodGet, "/{id}", handlers.NewGetFileHandler(deps.Documents))
		r.Method(http.MethodDelete, "/{id}", handlers.NewDeleteFileHandler(deps.Documents))
	})

	r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(deps.Prober))

	// Stored files are served read-only, forced to inline disposition so
	// browsers render rather than download them
	fileServer := http.FileServer(http.Dir(deps.UploadDir))
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", inlineDisposition(fileServer)))

	return r
}

func inlineDisposition(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", "inline")
		next.ServeHTTP(w, r)
	})
}
