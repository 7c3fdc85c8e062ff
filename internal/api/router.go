package api

import (
	"net/http"

	"github.com/St1cky1/demanda-service/internal/api/handlers"
	"github.com/St1cky1/demanda-service/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Потолок размера тела запроса - 10 МБ.
const maxRequestBody = 10 << 20

func NewRouter(demandaService *usecase.DemandaService, staticDir string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestSize(maxRequestBody))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	demandaHandler := handlers.NewDemandaHandler(demandaService)

	r.Route("/api", func(r chi.Router) {
		r.NotFound(handlers.NotFound)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", demandaHandler.ListDemandas)
			r.Post("/", demandaHandler.CreateDemanda)
			r.Put("/{id}", demandaHandler.UpdateDemanda)
			r.Delete("/{id}", demandaHandler.DeleteDemanda)
			r.Get("/employee/{employeeId}", demandaHandler.ListByEmployee)
			r.Get("/status/{status}", demandaHandler.ListByStatus)
		})

		r.Get("/stats", demandaHandler.Stats)
	})

	r.Get("/health", demandaHandler.Health)

	// Статика фронтенда
	r.Handle("/*", http.FileServer(http.Dir(staticDir)))

	return r
}
