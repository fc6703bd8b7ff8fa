package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/magicphoto-api/internal/api"
	"github.com/phrazzld/magicphoto-api/internal/api/middleware"
	"github.com/phrazzld/magicphoto-api/internal/api/shared"
	"github.com/phrazzld/magicphoto-api/internal/platform/filestore"
	"github.com/phrazzld/magicphoto-api/internal/platform/logger"
)

// setupRouter creates and configures the application router
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(app.requestLogger)
	r.Use(middleware.TraceMiddleware)
	r.Use(chimiddleware.Recoverer)

	authMiddleware := middleware.NewAuthMiddleware(app.jwtService)
	userHandler := api.NewUserHandler(app.userService)
	photoHandler := api.NewPhotoHandler(app.photoService, app.images, app.config.Storage.MaxUploadBytes)
	galleryHandler := api.NewGalleryHandler(app.galleryService)

	r.Route("/api", func(r chi.Router) {
		r.Post("/user/login", userHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/user/points", userHandler.GetPoints)

			r.Post("/photo/upload", photoHandler.Upload)
			r.Post("/photo/generate", photoHandler.Generate)
			r.Get("/photo/status", photoHandler.GetStatus)
			r.Get("/photo/result", photoHandler.GetResult)

			r.Get("/gallery/list", galleryHandler.List)
			r.Get("/gallery/detail", galleryHandler.Detail)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	files := http.FileServer(http.Dir(app.images.Dir()))
	r.Handle(filestore.PublicPrefix+"*", http.StripPrefix(filestore.PublicPrefix, files))

	return r
}

// requestLogger attaches the application logger to each request context
// and logs the completed request.
func (app *application) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		ctx := logger.WithLogger(r.Context(), app.logger.With(
			"request_id", chimiddleware.GetReqID(r.Context()),
		))
		next.ServeHTTP(ww, r.WithContext(ctx))

		app.logger.Debug("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}
