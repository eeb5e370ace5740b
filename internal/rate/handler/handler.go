package handler

import (
	"context"
	"encoding/json"
	"fxcache/internal/domain"
	"fxcache/internal/rate"
	"net/http"
)

type RateService interface {
	GetRates(ctx context.Context, base string) ([]domain.ExchangeRate, error)
	Compare(ctx context.Context, base string, targets []string) ([]rate.Comparison, error)
	ListAbove(ctx context.Context, base string, threshold float64) ([]domain.ExchangeRate, error)
	Currencies(ctx context.Context) ([]string, error)
}

type Handler struct {
	service RateService
}

func NewRateHandler(service RateService) *Handler {
	return &Handler{service: service}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, statusCode int, errorMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error: errorMsg,
	})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(payload)
}
