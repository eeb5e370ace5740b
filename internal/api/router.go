package api

import (
	_ "fxcache/docs"
	"fxcache/internal/rate/handler"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	swagger "github.com/swaggo/http-swagger"
)

func NewRouter(rateHandler *handler.Handler) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/healthz"))

	// Swagger UI
	router.Get("/swagger/*", swagger.WrapHandler)

	router.Get("/api/v1/currencies", rateHandler.GetCurrencies)
	router.Get("/api/v1/rates/{base:[A-Za-z]{3}}", rateHandler.GetRates)
	router.Get("/api/v1/rates/{base:[A-Za-z]{3}}/compare", rateHandler.Compare)
	router.Get("/api/v1/rates/{base:[A-Za-z]{3}}/above", rateHandler.ListAbove)
	return router
}
